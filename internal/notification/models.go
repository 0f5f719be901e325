// Package notification computes recurring-event and renewal notifications
// for a member population. The computation is a pure function of its inputs
// plus the supplied "today": it is cheap enough to re-run wholesale on every
// population change, and its output ids are stable so downstream consumers
// can diff runs for "what's new".
package notification

import (
	"fmt"
	"time"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
)

// Type tags a notification variant.
type Type string

const (
	TypeBirthday        Type = "Birthday"
	TypeAnniversary     Type = "Anniversary"
	TypeSpecialOccasion Type = "Special Occasion"
	TypePolicyRenewal   Type = "Policy Renewal"
	TypeCustom          Type = "Custom"
	TypeTaskAssignment  Type = "Task Assignment"
)

// idPrefix keeps notification ids short and grep-able.
func (t Type) idPrefix() string {
	switch t {
	case TypeBirthday:
		return "bday"
	case TypeAnniversary:
		return "anniv"
	case TypeSpecialOccasion:
		return "occ"
	case TypePolicyRenewal:
		return "renewal"
	case TypeCustom:
		return "custom"
	case TypeTaskAssignment:
		return "task"
	default:
		return "unknown"
	}
}

// Notification is derived and ephemeral; it is recomputed, never persisted
// as a source of truth.
type Notification struct {
	// ID is deterministic: {typePrefix}-{sourceId}-{seq}. Re-running the
	// computation over unchanged input yields byte-identical ids.
	ID   string    `json:"id"`
	Type Type      `json:"type"`
	Date time.Time `json:"date"`

	Message string `json:"message"`

	// Originating member reference.
	MemberRecordID id.RecordID `json:"memberRecordId,omitempty"`
	MemberID       id.MemberID `json:"memberId,omitempty"`
	MemberName     string      `json:"memberName,omitempty"`
	MemberMobile   string      `json:"memberMobile,omitempty"`

	// Policy is present on renewals so the consumer can offer "mark renewed".
	Policy *models.Policy `json:"policy,omitempty"`
}

// CustomMessage is a one-off message scheduled by an advisor, emitted only on
// its exact calendar day.
type CustomMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// NewTaskAssignment builds the notification shown when an action item inside
// a voice note is converted to a task.
func NewTaskAssignment(taskID string, assignee id.AdvisorID, description string, due time.Time) Notification {
	return Notification{
		ID:      fmt.Sprintf("%s-%s-%d", TypeTaskAssignment.idPrefix(), taskID, 1),
		Type:    TypeTaskAssignment,
		Date:    due,
		Message: fmt.Sprintf("Task assigned to %s: %s", assignee, description),
	}
}

// ToastSink receives user-visible outcomes. The UI layer implements it.
type ToastSink interface {
	AddToast(message, severity string)
}
