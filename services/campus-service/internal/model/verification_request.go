package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RequestStatus is the review state of a manual verification request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	// RequestSuperseded marks a rejected request that was replaced by a
	// fresh submission. Superseded requests are kept for history and no
	// longer block resubmission.
	RequestSuperseded RequestStatus = "superseded"
)

// VerificationRequest is one manual verification attempt for a non-student
// role. Requests are never deleted; a rejected request is archived as
// superseded when the user resubmits.
type VerificationRequest struct {
	ID              bson.ObjectID  `bson:"_id,omitempty"`
	AccountID       bson.ObjectID  `bson:"account_id"`
	RequestedRole   Role           `bson:"requested_role"`
	Status          RequestStatus  `bson:"status"`
	SubmittedData   map[string]any `bson:"submitted_data"`
	ReviewerID      *string        `bson:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time     `bson:"reviewed_at,omitempty"`
	RejectionReason *string        `bson:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `bson:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at"`
}
