package draft

import (
	"sync"

	"github.com/joescharf/crowdfund/internal/models"
)

// Holder owns the current draft. Every edit swaps in a new value produced by
// the package mutators, so snapshots taken earlier are never affected.
type Holder struct {
	mu  sync.RWMutex
	cur models.Draft
}

// NewHolder creates a holder seeded with d.
func NewHolder(d models.Draft) *Holder {
	return &Holder{cur: Clone(d)}
}

// Snapshot returns a deep copy of the current draft.
func (h *Holder) Snapshot() models.Draft {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Clone(h.cur)
}

// Replace swaps the current draft for a copy of d.
func (h *Holder) Replace(d models.Draft) {
	h.mu.Lock()
	h.cur = Clone(d)
	h.mu.Unlock()
}

func (h *Holder) apply(fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next, err := fn(h.cur)
	if err != nil {
		return Clone(h.cur), err
	}
	h.cur = next
	return Clone(next), nil
}

// SetScalar replaces a scalar field and returns the new draft.
func (h *Holder) SetScalar(name models.ScalarField, value string) (models.Draft, error) {
	return h.apply(func(d models.Draft) (models.Draft, error) {
		return SetScalar(d, name, value)
	})
}

// SetListItem replaces one list entry and returns the new draft.
func (h *Holder) SetListItem(field models.ListField, index int, value string) (models.Draft, error) {
	return h.apply(func(d models.Draft) (models.Draft, error) {
		return SetListItem(d, field, index, value)
	})
}

// AppendListItem adds a blank entry and returns the new draft.
func (h *Holder) AppendListItem(field models.ListField) (models.Draft, error) {
	return h.apply(func(d models.Draft) (models.Draft, error) {
		return AppendListItem(d, field)
	})
}

// AppendListItemValue adds an entry holding value in a single edit.
func (h *Holder) AppendListItemValue(field models.ListField, value string) (models.Draft, error) {
	return h.apply(func(d models.Draft) (models.Draft, error) {
		return AppendListItemValue(d, field, value)
	})
}

// RemoveListItem drops one entry and returns the new draft.
func (h *Holder) RemoveListItem(field models.ListField, index int) (models.Draft, error) {
	return h.apply(func(d models.Draft) (models.Draft, error) {
		return RemoveListItem(d, field, index)
	})
}
