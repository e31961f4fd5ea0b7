package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/config"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// VerificationUsecase is the token-based email verification engine: it
// issues single-use tokens against the institutional domain, rate-limits
// sends, and flips accounts to verified when a token is redeemed.
type VerificationUsecase interface {
	// SendVerificationEmail issues a token and mails the verification link.
	SendVerificationEmail(ctx context.Context, callerID, email string) (string, error)

	// VerifyEmailToken redeems a token. Tokens are single-use: a second
	// call with the same token fails even though the account stays verified.
	VerifyEmailToken(ctx context.Context, callerID, token string) error
}

// Notifier is the outbound email boundary. A send failure never rolls back
// the token that was issued.
type Notifier interface {
	SendHTML(to []string, subject, htmlBody, textBody string) error
}

var (
	ErrInvalidEmailDomain = errors.New("email does not match the institutional domain")
	ErrNotStudent         = errors.New("email verification is only available for students")
	ErrRateLimited        = errors.New("too many verification emails sent")
	ErrNotifierFailed     = errors.New("failed to send verification email")

	// ErrTokenNotFound and ErrTokenInvalid are distinguished internally and
	// in logs, but handlers render both as the same generic message so a
	// caller cannot tell which check failed.
	ErrTokenNotFound = errors.New("verification token not found")
	ErrTokenInvalid  = errors.New("verification token is invalid or expired")
)

type verificationUsecase struct {
	accountRepo repository.AccountRepository
	tokenRepo   repository.VerificationTokenRepository
	transactor  repository.Transactor
	notifier    Notifier
	logger      *zerolog.Logger
	cfg         *config.Config
	now         func() time.Time
}

// NewVerificationUsecase creates a new instance of VerificationUsecase.
func NewVerificationUsecase(
	accountRepo repository.AccountRepository,
	tokenRepo repository.VerificationTokenRepository,
	transactor repository.Transactor,
	notifier Notifier,
	logger *zerolog.Logger,
	cfg *config.Config,
) VerificationUsecase {
	return &verificationUsecase{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		transactor:  transactor,
		notifier:    notifier,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (u *verificationUsecase) SendVerificationEmail(ctx context.Context, callerID, email string) (string, error) {
	// Exact, case-sensitive suffix match against the configured domain.
	if !strings.HasSuffix(email, u.cfg.InstitutionalEmailDomain) {
		return "", ErrInvalidEmailDomain
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

	// Auto-verification is the student path; every other role goes through
	// manual review, and a non-student account must never end up with
	// verification_method=auto.
	if account.Role != model.RoleStudent {
		return "", ErrNotStudent
	}

	now := u.now()
	recent, err := u.tokenRepo.CountTokensSince(ctx, callerID, now.Add(-u.cfg.VerificationRateWindow))
	if err != nil {
		return "", err
	}
	if recent >= u.cfg.VerificationRateLimit {
		return "", ErrRateLimited
	}

	tokenStr, err := generateVerificationToken()
	if err != nil {
		return "", err
	}

	if _, err := u.tokenRepo.CreateToken(ctx, &model.VerificationToken{
		Token:       tokenStr,
		AccountID:   account.ID,
		TargetEmail: email,
		ExpiresAt:   now.Add(u.cfg.VerificationTokenTTL),
	}); err != nil {
		return "", err
	}

	// Record the address provisionally; verification_method stays unset
	// until the token is redeemed.
	if _, err := u.accountRepo.UpdateAccount(ctx, callerID, repository.UpdateAccountParams{
		InstitutionalEmail: &email,
	}); err != nil {
		return "", err
	}

	verifyLink := fmt.Sprintf("%s?token=%s", u.cfg.AppVerificationURL, tokenStr)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Please confirm your institutional email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>If you did not request this, you can safely ignore this email.</p>
	`, verifyLink, verifyLink, u.cfg.VerificationTokenTTL)
	textBody := fmt.Sprintf("Confirm your institutional email: %s (expires in %s)", verifyLink, u.cfg.VerificationTokenTTL)

	if err := u.notifier.SendHTML([]string{email}, "Verify your institutional email", htmlBody, textBody); err != nil {
		// The token stays valid so the email can be resent or recovered
		// through support without restarting verification.
		u.logger.Error().Err(err).Str("account_id", callerID).Msg("verification email send failed; token remains valid")
		return tokenStr, ErrNotifierFailed
	}

	return tokenStr, nil
}

func (u *verificationUsecase) VerifyEmailToken(ctx context.Context, callerID, token string) error {
	record, err := u.tokenRepo.GetToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			u.logger.Warn().Str("account_id", callerID).Msg("verification failed: token not found")
			return ErrTokenNotFound
		}
		return err
	}

	switch {
	case record.Used:
		u.logger.Warn().Str("account_id", callerID).Msg("verification failed: token already used")
		return ErrTokenInvalid
	case record.AccountID.Hex() != callerID:
		u.logger.Warn().Str("account_id", callerID).Msg("verification failed: token owner mismatch")
		return ErrTokenInvalid
	case u.now().After(record.ExpiresAt):
		u.logger.Warn().Str("account_id", callerID).Msg("verification failed: token expired")
		return ErrTokenInvalid
	}

	// Consuming the token and flipping the account must commit together.
	verified := model.VerificationVerified
	method := model.VerificationMethodAuto
	verifiedAt := u.now()

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		// The consume matches only an unused token, so of two concurrent
		// redemptions exactly one commits.
		if err := u.tokenRepo.MarkTokenAsUsed(ctx, token); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrTokenInvalid
			}
			return err
		}

		_, err := u.accountRepo.UpdateAccount(ctx, callerID, repository.UpdateAccountParams{
			VerificationStatus: &verified,
			VerificationMethod: &method,
			InstitutionalEmail: &record.TargetEmail,
			VerifiedAt:         &verifiedAt,
		})
		return err
	})
	if errors.Is(err, ErrTokenInvalid) {
		u.logger.Warn().Str("account_id", callerID).Msg("verification failed: token consumed concurrently")
	}

	return err
}

// generateVerificationToken returns a 256-bit random token in hex.
func generateVerificationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
