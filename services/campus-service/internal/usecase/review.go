package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/queue"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// ReviewUsecase is the manual verification workflow for roles without an
// automatic proof: submission, admin approval and rejection.
type ReviewUsecase interface {
	// SubmitRequest files a verification request. A pending or approved
	// request blocks resubmission; a rejected one is archived and replaced.
	SubmitRequest(ctx context.Context, callerID string, role model.Role, proofData map[string]any) (string, error)

	// GetRequest returns the caller's current request, if any.
	GetRequest(ctx context.Context, callerID string) (*model.VerificationRequest, error)

	// Approve verifies the target account. Account, request and audit
	// entry commit in one transaction.
	Approve(ctx context.Context, adminID, targetAccountID string) error

	// Reject closes the request with a reason. The target account's
	// verification status is left untouched.
	Reject(ctx context.Context, adminID, targetAccountID, reason string) error

	// ListPending pages through requests awaiting review.
	ListPending(ctx context.Context, adminID string, limit, offset uint64) ([]*model.VerificationRequest, error)
}

// Producer is the event queue boundary.
type Producer interface {
	PublishMessage(key, value []byte) error
}

var (
	ErrInvalidRequestRole   = errors.New("role is not eligible for manual verification")
	ErrRequestAlreadyExists = errors.New("verification request already submitted")
	ErrRequestNotFound      = errors.New("verification request not found")
	ErrNotAdmin             = errors.New("caller is not an admin")
)

// reviewableRoles are the roles users may file a manual request for.
// Faculty and moderators are verified by admin assignment instead.
var reviewableRoles = map[model.Role]bool{
	model.RoleAlumni:    true,
	model.RoleRecruiter: true,
}

type reviewUsecase struct {
	accountRepo repository.AccountRepository
	requestRepo repository.VerificationRequestRepository
	auditRepo   repository.AuditLogRepository
	transactor  repository.Transactor
	notifier    Notifier
	producer    Producer
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewReviewUsecase creates a new instance of ReviewUsecase.
func NewReviewUsecase(
	accountRepo repository.AccountRepository,
	requestRepo repository.VerificationRequestRepository,
	auditRepo repository.AuditLogRepository,
	transactor repository.Transactor,
	notifier Notifier,
	producer Producer,
	logger *zerolog.Logger,
) ReviewUsecase {
	return &reviewUsecase{
		accountRepo: accountRepo,
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		transactor:  transactor,
		notifier:    notifier,
		producer:    producer,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *reviewUsecase) SubmitRequest(
	ctx context.Context,
	callerID string,
	role model.Role,
	proofData map[string]any,
) (string, error) {
	if !reviewableRoles[role] {
		return "", ErrInvalidRequestRole
	}

	account, err := u.accountRepo.GetAccount(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	if err := ensureActive(account); err != nil {
		return "", err
	}

	existing, err := u.requestRepo.GetActiveRequestByAccount(ctx, callerID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	newRequest := &model.VerificationRequest{
		AccountID:     account.ID,
		RequestedRole: role,
		Status:        model.RequestPending,
		SubmittedData: proofData,
	}

	var created *model.VerificationRequest
	switch {
	case existing == nil:
		created, err = u.requestRepo.CreateRequest(ctx, newRequest)
		if err != nil {
			return "", err
		}
	case existing.Status == model.RequestRejected:
		// A rejected request does not block forever: archive it and file a
		// fresh one in the same transaction.
		err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
			superseded := model.RequestSuperseded
			if _, err := u.requestRepo.UpdateRequest(ctx, existing.ID.Hex(), repository.UpdateRequestParams{
				Status: &superseded,
			}); err != nil {
				return err
			}

			created, err = u.requestRepo.CreateRequest(ctx, newRequest)
			return err
		})
		if err != nil {
			return "", err
		}
	default:
		return "", ErrRequestAlreadyExists
	}

	u.notifyReviewers(created)

	return created.ID.Hex(), nil
}

func (u *reviewUsecase) GetRequest(ctx context.Context, callerID string) (*model.VerificationRequest, error) {
	request, err := u.requestRepo.GetActiveRequestByAccount(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return request, nil
}

func (u *reviewUsecase) Approve(ctx context.Context, adminID, targetAccountID string) error {
	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return err
	}

	request, err := u.requestRepo.GetActiveRequestByAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRequestNotFound
		}
		return err
	}

	target, err := u.accountRepo.GetAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAccountNotFound
		}
		return err
	}

	verified := model.VerificationVerified
	method := model.VerificationMethodManual
	approved := model.RequestApproved
	reviewedAt := u.now()

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.accountRepo.UpdateAccount(ctx, targetAccountID, repository.UpdateAccountParams{
			VerificationStatus: &verified,
			VerificationMethod: &method,
			VerifiedAt:         &reviewedAt,
			VerifiedBy:         &adminID,
		}); err != nil {
			return err
		}

		if _, err := u.requestRepo.UpdateRequest(ctx, request.ID.Hex(), repository.UpdateRequestParams{
			Status:     &approved,
			ReviewerID: &adminID,
			ReviewedAt: &reviewedAt,
		}); err != nil {
			return err
		}

		_, err := u.auditRepo.AppendEntry(ctx, &model.AuditEntry{
			ActorID:  adminID,
			Action:   "approve_verification",
			Entity:   "account",
			EntityID: targetAccountID,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.notifyDecision(target, "Verification approved",
		"Your verification request has been approved. You now have full access once your profile is complete.")
	u.publishDecision(request, model.RequestApproved, "")

	return nil
}

func (u *reviewUsecase) Reject(ctx context.Context, adminID, targetAccountID, reason string) error {
	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return err
	}

	request, err := u.requestRepo.GetActiveRequestByAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRequestNotFound
		}
		return err
	}

	target, err := u.accountRepo.GetAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAccountNotFound
		}
		return err
	}

	rejected := model.RequestRejected
	reviewedAt := u.now()

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.requestRepo.UpdateRequest(ctx, request.ID.Hex(), repository.UpdateRequestParams{
			Status:          &rejected,
			ReviewerID:      &adminID,
			ReviewedAt:      &reviewedAt,
			RejectionReason: &reason,
		}); err != nil {
			return err
		}

		_, err := u.auditRepo.AppendEntry(ctx, &model.AuditEntry{
			ActorID:  adminID,
			Action:   "reject_verification",
			Entity:   "account",
			EntityID: targetAccountID,
			Note:     &reason,
		})
		return err
	})
	if err != nil {
		return err
	}

	u.notifyDecision(target, "Verification rejected",
		fmt.Sprintf("Your verification request was rejected: %s. You may submit a new request.", reason))
	u.publishDecision(request, model.RequestRejected, reason)

	return nil
}

func (u *reviewUsecase) ListPending(
	ctx context.Context,
	adminID string,
	limit, offset uint64,
) ([]*model.VerificationRequest, error) {
	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	return u.requestRepo.ListPendingRequests(ctx, limit, offset)
}

func (u *reviewUsecase) ensureAdmin(ctx context.Context, adminID string) error {
	account, err := u.accountRepo.GetAccount(ctx, adminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAccountNotFound
		}
		return err
	}

	if account.Role != model.RoleAdmin {
		return ErrNotAdmin
	}

	return ensureActive(account)
}

// notifyReviewers fans the new request out to the admin notification topic.
// A queue failure is logged, not surfaced: the request is already durable
// and shows up on the pending list regardless.
func (u *reviewUsecase) notifyReviewers(request *model.VerificationRequest) {
	payload, err := json.Marshal(queue.VerificationRequestedEvent{
		RequestID:     request.ID.Hex(),
		AccountID:     request.AccountID.Hex(),
		RequestedRole: string(request.RequestedRole),
	})
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to encode verification request event")
		return
	}

	if err := u.producer.PublishMessage([]byte(request.AccountID.Hex()), payload); err != nil {
		u.logger.Error().Err(err).Str("request_id", request.ID.Hex()).Msg("failed to publish verification request event")
	}
}

func (u *reviewUsecase) publishDecision(
	request *model.VerificationRequest,
	status model.RequestStatus,
	reason string,
) {
	payload, err := json.Marshal(queue.VerificationDecidedEvent{
		EventID:   uuid.NewString(),
		RequestID: request.ID.Hex(),
		AccountID: request.AccountID.Hex(),
		Status:    string(status),
		Reason:    reason,
	})
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to encode verification decision event")
		return
	}

	if err := u.producer.PublishMessage([]byte(request.AccountID.Hex()), payload); err != nil {
		u.logger.Error().Err(err).Str("request_id", request.ID.Hex()).Msg("failed to publish verification decision event")
	}
}

func (u *reviewUsecase) notifyDecision(target *model.Account, subject, body string) {
	if err := u.notifier.SendHTML(
		[]string{target.PersonalEmail},
		subject,
		fmt.Sprintf("<p>%s</p>", body),
		body,
	); err != nil {
		u.logger.Error().Err(err).Str("account_id", target.ID.Hex()).Msg("failed to send decision email")
	}
}
