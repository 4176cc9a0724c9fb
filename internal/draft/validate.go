package draft

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joescharf/crowdfund/internal/models"
)

// Issue describes one problem found in a draft.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// ValidationError is returned when a draft is rejected in strict mode.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

// Validate reports the required-field and funding-goal problems of d.
// The form itself never blocks on these; callers decide.
func Validate(d models.Draft) []Issue {
	var issues []Issue
	if strings.TrimSpace(d.ProjectName) == "" {
		issues = append(issues, Issue{Field: string(models.FieldProjectName), Message: "is required"})
	}
	if strings.TrimSpace(d.Description) == "" {
		issues = append(issues, Issue{Field: string(models.FieldDescription), Message: "is required"})
	}

	goal := strings.TrimSpace(d.FundingGoal)
	if goal == "" {
		issues = append(issues, Issue{Field: string(models.FieldFundingGoal), Message: "is required"})
	} else if v, err := strconv.ParseFloat(goal, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		issues = append(issues, Issue{Field: string(models.FieldFundingGoal), Message: fmt.Sprintf("%q is not a number", d.FundingGoal)})
	} else if v < 0 {
		issues = append(issues, Issue{Field: string(models.FieldFundingGoal), Message: "must not be negative"})
	}
	return issues
}

// Check returns a *ValidationError when d has any issues.
func Check(d models.Draft) error {
	if issues := Validate(d); len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
