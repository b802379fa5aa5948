package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
)

// Change request status constants.
const (
	ChangeStatusPending          = "pending_approval"
	ChangeStatusApproved         = "approved"
	ChangeStatusRejected         = "rejected"
	ChangeStatusEmergencyApplied = "emergency_applied"
)

// MenuChangeRequest is one proposed edit to a meal's content. It references
// the daily menu by id and snapshots the first component's dish name at
// proposal time; it never owns the meal data itself.
type MenuChangeRequest struct {
	ID               uuid.UUID  `json:"id"`
	DailyMenuID      uuid.UUID  `json:"daily_menu_id"`
	DayDate          time.Time  `json:"day_date"`
	MealType         string     `json:"meal_type"`
	OldValue         string     `json:"old_value"`
	NewValue         string     `json:"new_value"`
	Reason           string     `json:"reason"`
	Status           string     `json:"status"`
	RequestedBy      uuid.UUID  `json:"requested_by"`
	DecidedBy        *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	NotesFromDecider *string    `json:"notes_from_decider,omitempty"`
	BatchID          *uuid.UUID `json:"batch_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the request has reached an immutable state.
func (r *MenuChangeRequest) IsTerminal() bool {
	return r.Status != ChangeStatusPending
}

// Approve transitions pending_approval -> approved.
func (r *MenuChangeRequest) Approve(deciderID uuid.UUID, notes *string) error {
	if r.Status != ChangeStatusPending {
		return fmt.Errorf("cannot approve change in status %q: %w", r.Status, apperrors.ErrInvalidState)
	}
	now := time.Now().UTC()
	r.Status = ChangeStatusApproved
	r.DecidedBy = &deciderID
	r.DecidedAt = &now
	r.NotesFromDecider = notes
	return nil
}

// Reject transitions pending_approval -> rejected. No menu data is touched.
func (r *MenuChangeRequest) Reject(deciderID uuid.UUID, notes *string) error {
	if r.Status != ChangeStatusPending {
		return fmt.Errorf("cannot reject change in status %q: %w", r.Status, apperrors.ErrInvalidState)
	}
	now := time.Now().UTC()
	r.Status = ChangeStatusRejected
	r.DecidedBy = &deciderID
	r.DecidedAt = &now
	r.NotesFromDecider = notes
	return nil
}

// MarkEmergencyApplied transitions pending_approval -> emergency_applied.
// Only valid at creation time, before the request was ever persisted as pending.
func (r *MenuChangeRequest) MarkEmergencyApplied() error {
	if r.Status != ChangeStatusPending {
		return fmt.Errorf("cannot emergency-apply change in status %q: %w", r.Status, apperrors.ErrInvalidState)
	}
	r.Status = ChangeStatusEmergencyApplied
	return nil
}
