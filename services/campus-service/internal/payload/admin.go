package payload

import (
	"time"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

type ApproveVerificationRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

type RejectVerificationRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Reason    string `json:"reason"     validate:"required"`
}

type SetAccountRoleRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Role      string `json:"role"       validate:"required"`
}

type SetAccountStatusRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Status    string `json:"status"     validate:"required,oneof=active suspended banned"`
	Reason    string `json:"reason,omitempty"`
}

type AuditEntryResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAuditEntryResponse converts an audit entry to its API shape.
func NewAuditEntryResponse(entry *model.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID.Hex(),
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Note:      entry.Note,
		CreatedAt: entry.CreatedAt,
	}
}
