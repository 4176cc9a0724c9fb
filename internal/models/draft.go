package models

// Draft is the in-memory project record edited by the form.
// Each repeatable list always holds at least one entry.
type Draft struct {
	ProjectName       string   `json:"projectName" yaml:"projectName"`
	Description       string   `json:"description" yaml:"description"`
	FundingGoal       string   `json:"fundingGoal" yaml:"fundingGoal"`
	FundingMilestones []string `json:"fundingMilestones" yaml:"fundingMilestones"`
	ReleaseMilestones []string `json:"releaseMilestones" yaml:"releaseMilestones"`
	ProjectMembers    []string `json:"projectMembers" yaml:"projectMembers"`
}

// ScalarField names a single-valued draft attribute.
type ScalarField string

const (
	FieldProjectName ScalarField = "projectName"
	FieldDescription ScalarField = "description"
	FieldFundingGoal ScalarField = "fundingGoal"
)

// ScalarFields lists the scalar fields in form order.
var ScalarFields = []ScalarField{FieldProjectName, FieldDescription, FieldFundingGoal}

// ListField names a repeatable draft attribute.
type ListField string

const (
	FieldFundingMilestones ListField = "fundingMilestones"
	FieldReleaseMilestones ListField = "releaseMilestones"
	FieldProjectMembers    ListField = "projectMembers"
)

// ListFields lists the repeatable fields in form order.
var ListFields = []ListField{FieldFundingMilestones, FieldReleaseMilestones, FieldProjectMembers}

// Label returns the human-readable field title.
func (f ScalarField) Label() string {
	switch f {
	case FieldProjectName:
		return "Project Name"
	case FieldDescription:
		return "Description"
	case FieldFundingGoal:
		return "Funding Goal (USD)"
	default:
		return string(f)
	}
}

// Label returns the section title for the list.
func (f ListField) Label() string {
	switch f {
	case FieldFundingMilestones:
		return "Funding Milestones"
	case FieldReleaseMilestones:
		return "Release Milestones"
	case FieldProjectMembers:
		return "Project Members"
	default:
		return string(f)
	}
}

// ItemLabel returns the per-entry label prefix, e.g. "Milestone".
func (f ListField) ItemLabel() string {
	switch f {
	case FieldFundingMilestones:
		return "Milestone"
	case FieldReleaseMilestones:
		return "Release Milestone"
	case FieldProjectMembers:
		return "Member"
	default:
		return string(f)
	}
}
