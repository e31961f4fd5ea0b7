package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/config"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
	"github.com/campusconnect/campus-qa-api/services/campus-service/pkg/types"
	"github.com/campusconnect/campus-qa-api/shared/auth"
	"github.com/campusconnect/campus-qa-api/shared/provider"
	"github.com/campusconnect/campus-qa-api/shared/security"
)

// AccountUsecase defines the account lifecycle: sign-up, sign-in, role
// selection and profile completion.
type AccountUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*types.Tokens, error)
	Login(ctx context.Context, params LoginParams) (*types.Tokens, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*types.Tokens, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	SelectRole(ctx context.Context, callerID string, role model.Role) (*model.Account, error)
	CompleteProfile(ctx context.Context, callerID string, params CompleteProfileParams) (*model.Account, error)
}

// RegisterParams defines the parameters for local registration.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginParams defines the parameters for local login.
type LoginParams struct {
	Email    string
	Password string
}

// CompleteProfileParams carries exactly one role profile, which must match
// the account's role.
type CompleteProfileParams struct {
	Student   *model.StudentProfile
	Alumni    *model.AlumniProfile
	Faculty   *model.FacultyProfile
	Recruiter *model.RecruiterProfile
}

// IdentityProvider validates an external credential and resolves it to a
// stable identity.
type IdentityProvider interface {
	ValidateIDToken(ctx context.Context, idToken string) (*provider.Identity, error)
}

var (
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account is suspended or banned")
	ErrInvalidRole          = errors.New("role is not selectable")
	ErrRoleAlreadySet       = errors.New("role has already been set")
	ErrNotVerified          = errors.New("account is not verified")
	ErrProfileRoleMismatch  = errors.New("profile does not match account role")
)

type accountUsecase struct {
	accountRepo  repository.AccountRepository
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
	idProvider   IdentityProvider
	jwtAuth      auth.JWTAuthenticator
	cfg          *config.Config
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	accountRepo repository.AccountRepository,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	idProvider IdentityProvider,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
) AccountUsecase {
	return &accountUsecase{
		accountRepo:  accountRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		idProvider:   idProvider,
		jwtAuth:      jwtAuth,
		cfg:          cfg,
	}
}

func (u *accountUsecase) Register(ctx context.Context, params RegisterParams) (*types.Tokens, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.CreateAccount(ctx, &model.Account{
		PersonalEmail:      params.Email,
		DisplayName:        params.DisplayName,
		PasswordHash:       passwordHash,
		VerificationStatus: model.VerificationUnverified,
		AccountStatus:      model.AccountActive,
		VerificationMethod: model.VerificationMethodNone,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountAlreadyExists
		}

		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		AccountID:  account.ID.Hex(),
		Provider:   "email",
		ProviderID: params.Email,
		Email:      params.Email,
	}); err != nil {
		return nil, err
	}

	return u.createAuthSession(ctx, account)
}

func (u *accountUsecase) Login(ctx context.Context, params LoginParams) (*types.Tokens, error) {
	account, err := u.accountRepo.GetAccountByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, account.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := ensureActive(account); err != nil {
		return nil, err
	}

	if err := u.identityRepo.UpdateLastLogin(ctx, account.ID.Hex()); err != nil {
		return nil, err
	}

	return u.createAuthSession(ctx, account)
}

// LoginWithGoogle signs a user in with a Google ID token. The first sign-in
// creates the account record; a replayed creation event collides on the
// unique identity index and falls back to the existing account, so one
// identity never yields two records.
func (u *accountUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*types.Tokens, error) {
	identity, err := u.idProvider.ValidateIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	existing, err := u.identityRepo.GetIdentityByProvider(ctx, identity.Provider, identity.ProviderID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	var account *model.Account
	if existing != nil {
		account, err = u.accountRepo.GetAccount(ctx, existing.AccountID)
		if err != nil {
			return nil, err
		}
	} else {
		account, err = u.createGoogleAccount(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	if err := ensureActive(account); err != nil {
		return nil, err
	}

	if err := u.identityRepo.UpdateLastLogin(ctx, account.ID.Hex()); err != nil {
		return nil, err
	}

	return u.createAuthSession(ctx, account)
}

func (u *accountUsecase) createGoogleAccount(
	ctx context.Context,
	identity *provider.Identity,
) (*model.Account, error) {
	displayName := identity.DisplayName
	if displayName == "" {
		displayName = "New User"
	}

	account, err := u.accountRepo.CreateAccount(ctx, &model.Account{
		PersonalEmail:      identity.Email,
		DisplayName:        displayName,
		VerificationStatus: model.VerificationUnverified,
		AccountStatus:      model.AccountActive,
		VerificationMethod: model.VerificationMethodNone,
	})
	if err != nil {
		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		AccountID:  account.ID.Hex(),
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
		Email:      identity.Email,
	}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent sign-in won the race; use its account.
			winner, lookupErr := u.identityRepo.GetIdentityByProvider(ctx, identity.Provider, identity.ProviderID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return u.accountRepo.GetAccount(ctx, winner.AccountID)
		}

		return nil, err
	}

	return account, nil
}

func (u *accountUsecase) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := u.accountRepo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// SelectRole sets the account role. It is settable once while unset; any
// later change is an admin operation.
func (u *accountUsecase) SelectRole(ctx context.Context, callerID string, role model.Role) (*model.Account, error) {
	if !model.SelectableRoles[role] {
		return nil, ErrInvalidRole
	}

	account, err := u.GetAccount(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if err := ensureActive(account); err != nil {
		return nil, err
	}

	if account.Role != "" {
		return nil, ErrRoleAlreadySet
	}

	return u.accountRepo.UpdateAccount(ctx, callerID, repository.UpdateAccountParams{
		Role: &role,
	})
}

// CompleteProfile writes the role profile sub-record and marks the profile
// completed. Requires a verified account and a profile matching its role.
func (u *accountUsecase) CompleteProfile(
	ctx context.Context,
	callerID string,
	params CompleteProfileParams,
) (*model.Account, error) {
	account, err := u.GetAccount(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if err := ensureActive(account); err != nil {
		return nil, err
	}

	if account.VerificationStatus != model.VerificationVerified {
		return nil, ErrNotVerified
	}

	update := repository.UpdateAccountParams{}
	switch account.Role {
	case model.RoleStudent:
		if params.Student == nil {
			return nil, ErrProfileRoleMismatch
		}
		update.StudentProfile = params.Student
	case model.RoleAlumni:
		if params.Alumni == nil {
			return nil, ErrProfileRoleMismatch
		}
		update.AlumniProfile = params.Alumni
	case model.RoleFaculty:
		if params.Faculty == nil {
			return nil, ErrProfileRoleMismatch
		}
		update.FacultyProfile = params.Faculty
	case model.RoleRecruiter:
		if params.Recruiter == nil {
			return nil, ErrProfileRoleMismatch
		}
		update.RecruiterProfile = params.Recruiter
	default:
		return nil, ErrProfileRoleMismatch
	}

	completed := true
	update.ProfileCompleted = &completed

	return u.accountRepo.UpdateAccount(ctx, callerID, update)
}

func (u *accountUsecase) createAuthSession(ctx context.Context, account *model.Account) (*types.Tokens, error) {
	session, err := u.sessionRepo.CreateSession(ctx, &model.Session{AccountID: account.ID.Hex()})
	if err != nil {
		return nil, err
	}

	accessToken, err := u.generateToken(
		account,
		session.ID.Hex(),
		u.cfg.Token.AccessTokenSecret,
		u.cfg.Token.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateToken(
		account,
		session.ID.Hex(),
		u.cfg.Token.RefreshTokenSecret,
		u.cfg.Token.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := u.sessionRepo.UpdateTokens(ctx, session.ID.Hex(), repository.UpdateTokensParams{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(u.cfg.Token.AccessTokenExpiresIn),
		RefreshTokenExpiresAt: now.Add(u.cfg.Token.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, err
	}

	return &types.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *accountUsecase) generateToken(
	account *model.Account,
	sessionID, secret string,
	expiresIn time.Duration,
) (string, error) {
	now := time.Now()
	claims := types.AuthClaims{
		SessionID: sessionID,
		Role:      string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
		},
	}

	return u.jwtAuth.GenerateToken(claims, secret)
}

// ensureActive rejects writes from suspended or banned accounts.
func ensureActive(account *model.Account) error {
	if account.AccountStatus != model.AccountActive {
		return ErrAccountInactive
	}
	return nil
}
