// Package draft holds the project draft edited by the create form and the
// copy-on-write mutators that produce each new version of it.
package draft

import (
	"errors"
	"fmt"

	"github.com/joescharf/crowdfund/internal/models"
)

var (
	// ErrUnknownField is returned for a field name that is not part of the draft.
	ErrUnknownField = errors.New("unknown field")
	// ErrIndexOutOfRange is returned when a list index does not address an entry.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// New returns an empty draft with one blank slot in each list.
func New() models.Draft {
	return models.Draft{
		FundingMilestones: []string{""},
		ReleaseMilestones: []string{""},
		ProjectMembers:    []string{""},
	}
}

// Clone returns a deep copy of d. Empty lists come back as a single blank slot.
func Clone(d models.Draft) models.Draft {
	d.FundingMilestones = copyItems(d.FundingMilestones)
	d.ReleaseMilestones = copyItems(d.ReleaseMilestones)
	d.ProjectMembers = copyItems(d.ProjectMembers)
	return d
}

// ParseScalarField resolves a scalar field by its JSON key.
func ParseScalarField(name string) (models.ScalarField, error) {
	for _, f := range models.ScalarFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ParseListField resolves a repeatable field by its JSON key.
func ParseListField(name string) (models.ListField, error) {
	for _, f := range models.ListFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func scalarRef(d *models.Draft, name models.ScalarField) (*string, error) {
	switch name {
	case models.FieldProjectName:
		return &d.ProjectName, nil
	case models.FieldDescription:
		return &d.Description, nil
	case models.FieldFundingGoal:
		return &d.FundingGoal, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func listRef(d *models.Draft, field models.ListField) (*[]string, error) {
	switch field {
	case models.FieldFundingMilestones:
		return &d.FundingMilestones, nil
	case models.FieldReleaseMilestones:
		return &d.ReleaseMilestones, nil
	case models.FieldProjectMembers:
		return &d.ProjectMembers, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Scalar returns the value of a scalar field.
func Scalar(d models.Draft, name models.ScalarField) (string, error) {
	ref, err := scalarRef(&d, name)
	if err != nil {
		return "", err
	}
	return *ref, nil
}

// List returns a copy of a repeatable field's entries.
func List(d models.Draft, field models.ListField) ([]string, error) {
	ref, err := listRef(&d, field)
	if err != nil {
		return nil, err
	}
	return copyItems(*ref), nil
}

// SetScalar returns a new draft with one scalar field replaced.
func SetScalar(d models.Draft, name models.ScalarField, value string) (models.Draft, error) {
	out := Clone(d)
	ref, err := scalarRef(&out, name)
	if err != nil {
		return d, err
	}
	*ref = value
	return out, nil
}

// SetListItem returns a new draft with the entry at index replaced.
// Other entries and the list length are unchanged.
func SetListItem(d models.Draft, field models.ListField, index int, value string) (models.Draft, error) {
	out := Clone(d)
	ref, err := listRef(&out, field)
	if err != nil {
		return d, err
	}
	items, err := setItem(*ref, index, value)
	if err != nil {
		return d, fmt.Errorf("%s: %w", field, err)
	}
	*ref = items
	return out, nil
}

// AppendListItem returns a new draft with one blank entry added to the list.
func AppendListItem(d models.Draft, field models.ListField) (models.Draft, error) {
	out := Clone(d)
	ref, err := listRef(&out, field)
	if err != nil {
		return d, err
	}
	*ref = appendItem(*ref)
	return out, nil
}

// AppendListItemValue returns a new draft with value appended to the list.
func AppendListItemValue(d models.Draft, field models.ListField, value string) (models.Draft, error) {
	out := Clone(d)
	ref, err := listRef(&out, field)
	if err != nil {
		return d, err
	}
	items := appendItem(*ref)
	items[len(items)-1] = value
	*ref = items
	return out, nil
}

// RemoveListItem returns a new draft without the entry at index. Removing the
// only entry leaves a single blank slot.
func RemoveListItem(d models.Draft, field models.ListField, index int) (models.Draft, error) {
	out := Clone(d)
	ref, err := listRef(&out, field)
	if err != nil {
		return d, err
	}
	items, err := removeItem(*ref, index)
	if err != nil {
		return d, fmt.Errorf("%s: %w", field, err)
	}
	*ref = items
	return out, nil
}
