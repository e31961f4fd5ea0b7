package payload

import (
	"time"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

type SendVerificationEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmVerificationRequest struct {
	Token string `json:"token" validate:"required"`
}

type SubmitVerificationRequest struct {
	Role      string         `json:"role"       validate:"required,oneof=alumni recruiter"`
	ProofData map[string]any `json:"proof_data" validate:"required"`
}

type SubmitVerificationResponse struct {
	RequestID string `json:"request_id"`
}

type VerificationRequestResponse struct {
	ID              string         `json:"id"`
	AccountID       string         `json:"account_id"`
	RequestedRole   string         `json:"requested_role"`
	Status          string         `json:"status"`
	SubmittedData   map[string]any `json:"submitted_data,omitempty"`
	ReviewerID      *string        `json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewVerificationRequestResponse converts the request record to its API shape.
func NewVerificationRequestResponse(request *model.VerificationRequest) VerificationRequestResponse {
	return VerificationRequestResponse{
		ID:              request.ID.Hex(),
		AccountID:       request.AccountID.Hex(),
		RequestedRole:   string(request.RequestedRole),
		Status:          string(request.Status),
		SubmittedData:   request.SubmittedData,
		ReviewerID:      request.ReviewerID,
		ReviewedAt:      request.ReviewedAt,
		RejectionReason: request.RejectionReason,
		CreatedAt:       request.CreatedAt,
	}
}
