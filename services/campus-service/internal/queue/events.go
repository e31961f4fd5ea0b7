package queue

// AnswerCreatedEvent is published when an answer is stored and consumed by
// the engagement counters. AnswerID doubles as the idempotency key.
type AnswerCreatedEvent struct {
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
	AuthorID   string `json:"author_id"`
}

// VerificationRequestedEvent notifies admin reviewers that a manual
// verification request is waiting.
type VerificationRequestedEvent struct {
	RequestID     string `json:"request_id"`
	AccountID     string `json:"account_id"`
	RequestedRole string `json:"requested_role"`
}

// VerificationDecidedEvent announces a review decision. EventID is generated
// at publish time since the decision itself has no record of its own.
type VerificationDecidedEvent struct {
	EventID   string `json:"event_id"`
	RequestID string `json:"request_id"`
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}
