package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// AdminUsecase covers privileged account mutations. Every mutation writes an
// audit entry in the same transaction.
type AdminUsecase interface {
	// SetRole overrides the target's role. Assigning faculty counts as the
	// verification proof and marks the account verified.
	SetRole(ctx context.Context, adminID, targetAccountID string, role model.Role) (*model.Account, error)

	// SetAccountStatus suspends, bans or reactivates the target account.
	SetAccountStatus(ctx context.Context, adminID, targetAccountID string, status model.AccountStatus, reason string) (*model.Account, error)

	// ListAuditTrail returns the audit entries written for an account.
	ListAuditTrail(ctx context.Context, adminID, targetAccountID string) ([]*model.AuditEntry, error)
}

var (
	ErrUnknownRole          = errors.New("unknown role")
	ErrUnknownAccountStatus = errors.New("unknown account status")
)

var assignableRoles = map[model.Role]bool{
	model.RoleStudent:   true,
	model.RoleAlumni:    true,
	model.RoleFaculty:   true,
	model.RoleRecruiter: true,
	model.RoleModerator: true,
	model.RoleAdmin:     true,
}

// adminVerifiedRoles are verified by the assignment itself rather than by a
// token or a filed request.
var adminVerifiedRoles = map[model.Role]bool{
	model.RoleFaculty:   true,
	model.RoleModerator: true,
	model.RoleAdmin:     true,
}

type adminUsecase struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	transactor  repository.Transactor
	now         func() time.Time
}

// NewAdminUsecase creates a new instance of AdminUsecase.
func NewAdminUsecase(
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	transactor repository.Transactor,
) AdminUsecase {
	return &adminUsecase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		transactor:  transactor,
		now:         time.Now,
	}
}

func (u *adminUsecase) SetRole(
	ctx context.Context,
	adminID, targetAccountID string,
	role model.Role,
) (*model.Account, error) {
	if !assignableRoles[role] {
		return nil, ErrUnknownRole
	}

	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	if _, err := u.loadTarget(ctx, targetAccountID); err != nil {
		return nil, err
	}

	update := repository.UpdateAccountParams{Role: &role}
	if adminVerifiedRoles[role] {
		verified := model.VerificationVerified
		method := model.VerificationMethodManual
		verifiedAt := u.now()
		update.VerificationStatus = &verified
		update.VerificationMethod = &method
		update.VerifiedAt = &verifiedAt
		update.VerifiedBy = &adminID
	}

	var updated *model.Account
	err := u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = u.accountRepo.UpdateAccount(ctx, targetAccountID, update)
		if err != nil {
			return err
		}

		note := string(role)
		_, err = u.auditRepo.AppendEntry(ctx, &model.AuditEntry{
			ActorID:  adminID,
			Action:   "assign_role",
			Entity:   "account",
			EntityID: targetAccountID,
			Note:     &note,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (u *adminUsecase) SetAccountStatus(
	ctx context.Context,
	adminID, targetAccountID string,
	status model.AccountStatus,
	reason string,
) (*model.Account, error) {
	switch status {
	case model.AccountActive, model.AccountSuspended, model.AccountBanned:
	default:
		return nil, ErrUnknownAccountStatus
	}

	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	if _, err := u.loadTarget(ctx, targetAccountID); err != nil {
		return nil, err
	}

	var updated *model.Account
	err := u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = u.accountRepo.UpdateAccount(ctx, targetAccountID, repository.UpdateAccountParams{
			AccountStatus: &status,
		})
		if err != nil {
			return err
		}

		note := string(status)
		if reason != "" {
			note = note + ": " + reason
		}
		_, err = u.auditRepo.AppendEntry(ctx, &model.AuditEntry{
			ActorID:  adminID,
			Action:   "set_account_status",
			Entity:   "account",
			EntityID: targetAccountID,
			Note:     &note,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (u *adminUsecase) ListAuditTrail(
	ctx context.Context,
	adminID, targetAccountID string,
) ([]*model.AuditEntry, error) {
	if err := u.ensureAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	return u.auditRepo.ListEntriesByEntity(ctx, "account", targetAccountID)
}

func (u *adminUsecase) ensureAdmin(ctx context.Context, adminID string) error {
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

func (u *adminUsecase) loadTarget(ctx context.Context, targetAccountID string) (*model.Account, error) {
	account, err := u.accountRepo.GetAccount(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return account, nil
}
