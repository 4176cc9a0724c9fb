// Package submit handles the "Create Project" action. No backend exists for
// it yet: LogSubmitter records the snapshot in the diagnostic log and
// confirms to the user without contacting any server.
package submit

import (
	"context"
	"log/slog"
	"time"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/models"
)

// Submitter accepts a finished draft.
type Submitter interface {
	Submit(ctx context.Context, d models.Draft) (Receipt, error)
}

// Notifier shows the confirmation to the user.
type Notifier interface {
	Success(format string, a ...any)
}

// Receipt is what the user is told after submitting.
type Receipt struct {
	ProjectName string
	SubmittedAt time.Time
	Message     string
}

// LogSubmitter is the stub submitter.
type LogSubmitter struct {
	Notifier Notifier
	Logger   *slog.Logger
	// Strict rejects drafts with validation issues instead of accepting them.
	Strict bool
}

// NewLogSubmitter creates a stub submitter. A nil logger uses slog.Default.
func NewLogSubmitter(n Notifier, logger *slog.Logger, strict bool) *LogSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubmitter{Notifier: n, Logger: logger, Strict: strict}
}

// Submit logs a copy of d and reports success.
func (s *LogSubmitter) Submit(ctx context.Context, d models.Draft) (Receipt, error) {
	snap := draft.Clone(d)
	if s.Strict {
		if err := draft.Check(snap); err != nil {
			return Receipt{}, err
		}
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "project created",
		"project_name", snap.ProjectName,
		"description", snap.Description,
		"funding_goal", snap.FundingGoal,
		"funding_milestones", snap.FundingMilestones,
		"release_milestones", snap.ReleaseMilestones,
		"project_members", snap.ProjectMembers,
	)

	r := Receipt{
		ProjectName: snap.ProjectName,
		SubmittedAt: time.Now().UTC(),
		Message:     "Project Created Successfully!",
	}
	if s.Notifier != nil {
		s.Notifier.Success("%s", r.Message)
	}
	return r, nil
}
