// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "backoffice/internal/delivery/context"
	"backoffice/internal/domain/entity"
	domainerrors "backoffice/internal/domain/errors"
	"backoffice/internal/domain/repository"
	"backoffice/internal/domain/service"
	"backoffice/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const minimumRegistrationAge = 18

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	credentialRepo repository.CredentialRepository
	hasher         service.PasswordHasher
	codes          service.OneTimeCodeService
	sender         service.CodeSender
	limiter        service.AttemptLimiter
	audit          service.AuditTrail
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	CredentialRepo repository.CredentialRepository
	Hasher         service.PasswordHasher
	Codes          service.OneTimeCodeService
	Sender         service.CodeSender
	Limiter        service.AttemptLimiter
	Audit          service.AuditTrail
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		credentialRepo: params.CredentialRepo,
		hasher:         params.Hasher,
		codes:          params.Codes,
		sender:         params.Sender,
		limiter:        params.Limiter,
		audit:          params.Audit,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login orchestrates the first authentication stage: identity plus secret.
// A passing result leaves the caller in the pending-MFA stage; no access is
// granted here.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	credential, err := srv.loadLoginCredential(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			srv.recordAudit(ctx, service.AuditLoginFailure, service.AuditIdentityUnknown, input.Email, false, "unknown identity")

			return nil, errors.Wrap(err, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load login credential from primary")
	}

	// Check the secret outside the transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))
		srv.recordAudit(ctx, service.AuditLoginFailure, credential.UserID.String(), input.Email, false, "secret mismatch")

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if srv.hasher.IsLegacy(credential.PasswordHash) {
		srv.recordAudit(ctx, service.AuditLegacySecret, credential.UserID.String(), input.Email, true, "legacy secret accepted, rehashing")
		srv.rehashLegacyCredential(ctx, credential, input.Password)
	}

	loggedInUser, err := srv.loadLoginUser(ctx, credential.UserID)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load login user from primary")
	}

	srv.recordAudit(ctx, service.AuditLoginSuccess, loggedInUser.ID.String(), input.Email, true, "")
	srv.log(ctx).Debug("Credential stage passed", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{User: loggedInUser}, nil
}

func (srv *authService) loadLoginCredential(ctx context.Context, email string) (*entity.Credential, error) {
	var credential *entity.Credential

	// Load the credential from primary in a short transaction to avoid stale reads on replicas.
	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credRepo := repoFactory.CredentialRepo()

		var findErr error
		credential, findErr = credRepo.FindCredentialByEmail(ctx, email)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrCredentialNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
			}

			return errors.Wrap(findErr, "failed to find credential")
		}

		return nil
	}); err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			return nil, err
		}

		return nil, errors.Wrap(err, "failed to execute login credential transaction")
	}

	return credential, nil
}

func (srv *authService) loadLoginUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var loggedInUser *entity.User

	if err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		var findErr error
		loggedInUser, findErr = userRepo.FindByID(ctx, userID)
		if findErr != nil {
			return errors.Wrap(findErr, "failed to find user by id")
		}

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to execute login user transaction")
	}

	return loggedInUser, nil
}

// rehashLegacyCredential upgrades a legacy plaintext row to bcrypt after the
// secret was verified. Best-effort: a failure keeps the legacy value in place
// and the next login retries.
func (srv *authService) rehashLegacyCredential(ctx context.Context, credential *entity.Credential, password string) {
	hashed, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to rehash legacy credential", slog.Any("userID", credential.UserID), slog.Any("error", err))

		return
	}

	updated := *credential
	updated.PasswordHash = hashed
	if err := srv.credentialRepo.UpdateCredential(ctx, &updated); err != nil {
		srv.log(ctx).Error("Failed to persist rehashed credential", slog.Any("userID", credential.UserID), slog.Any("error", err))

		return
	}

	srv.log(ctx).Info("Legacy credential rehashed", slog.Any("userID", credential.UserID))
}

// Register creates a new customer account.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if age(input.BirthDate, time.Now()) < minimumRegistrationAge {
		return nil, errors.Wrap(domainerrors.ErrUnderage, "registration rejected")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordStrength, "password does not meet security requirements")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		credRepo := repoFactory.CredentialRepo()

		_, findErr := credRepo.FindCredentialByEmail(ctx, input.Email)
		if findErr == nil {
			return errors.Wrap(domainerrors.ErrUserAlreadyExists, "identity already registered")
		}
		if !errors.Is(findErr, repository.ErrCredentialNotFound) {
			return errors.Wrap(findErr, "failed to check existing credential")
		}

		newUser := &entity.User{
			Name:      input.Name,
			Email:     input.Email,
			BirthDate: input.BirthDate,
			Role:      entity.RoleCustomer,
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		newCredential := &entity.Credential{
			UserID:       newUser.ID,
			Email:        input.Email,
			PasswordHash: hashedPassword,
		}
		if err := credRepo.CreateCredential(ctx, newCredential); err != nil {
			return errors.Wrap(err, "failed to create credential during registration")
		}

		registeredUser = newUser

		return nil
	})

	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// age computes full years between birth date and now.
func age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}

	return years
}

// IssueChallenge generates a fresh one-time code and delivers it.
func (srv *authService) IssueChallenge(ctx context.Context, input *usecase.IssueChallengeInput) (*usecase.ChallengeOutput, error) {
	challenge, err := srv.codes.Generate(time.Now())
	if err != nil {
		srv.log(ctx).Error("Failed to generate one-time code", slog.Any("userID", input.PrincipalID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate one-time code")
	}

	if err := srv.sender.SendCode(ctx, input.Identity, input.DisplayName, challenge.Code); err != nil {
		srv.log(ctx).Error("Failed to deliver one-time code", slog.Any("userID", input.PrincipalID), slog.Any("error", err))
		srv.recordAudit(ctx, service.AuditCodeSendFailed, input.PrincipalID.String(), input.Identity, false, "delivery failed")

		return nil, errors.Wrap(domainerrors.ErrDeliveryFailure, "failed to deliver one-time code")
	}

	srv.recordAudit(ctx, service.AuditCodeSent, input.PrincipalID.String(), input.Identity, true, "")
	srv.log(ctx).Debug("One-time code delivered", slog.Any("userID", input.PrincipalID), slog.Time("expiresAt", challenge.ExpiresAt))

	return &usecase.ChallengeOutput{
		Code:      challenge.Code,
		ExpiresAt: challenge.ExpiresAt,
	}, nil
}

// VerifyCode judges one code submission against the outstanding challenge.
// Every call consumes attempt budget before the code is even inspected, so
// probing with garbage submissions costs the same as real guesses.
func (srv *authService) VerifyCode(ctx context.Context, input *usecase.VerifyCodeInput) error {
	decision := srv.limiter.CheckAndRecord(input.PrincipalID.String())
	if !decision.Allowed {
		srv.log(ctx).Warn("Verification attempt rate limited", slog.Any("userID", input.PrincipalID))
		srv.recordAudit(ctx, service.AuditRateLimited, input.PrincipalID.String(), input.Identity, false, "attempt budget exhausted")

		return domainerrors.NewRateLimitError(decision.RetryAfter)
	}

	switch srv.codes.Validate(input.Submitted, input.Expected, input.ExpiresAt, time.Now()) {
	case service.CodeValid:
		srv.limiter.Clear(input.PrincipalID.String())
		srv.recordAudit(ctx, service.AuditVerifySuccess, input.PrincipalID.String(), input.Identity, true, "")

		return nil
	case service.CodeMalformed:
		srv.recordAudit(ctx, service.AuditVerifyFailure, input.PrincipalID.String(), input.Identity, false, "malformed code")

		return errors.Wrap(domainerrors.ErrMalformedCode, "verification failed")
	case service.CodeExpired:
		srv.recordAudit(ctx, service.AuditVerifyFailure, input.PrincipalID.String(), input.Identity, false, "expired code")

		return errors.Wrap(domainerrors.ErrExpiredCode, "verification failed")
	default:
		srv.recordAudit(ctx, service.AuditVerifyFailure, input.PrincipalID.String(), input.Identity, false, "code mismatch")

		return errors.Wrap(domainerrors.ErrMismatchedCode, "verification failed")
	}
}

// RecordLogout writes the audit record for a voluntary session end.
func (srv *authService) RecordLogout(ctx context.Context, principalID uuid.UUID, identity string) {
	srv.recordAudit(ctx, service.AuditLogout, principalID.String(), identity, true, "")
}

func (srv *authService) recordAudit(ctx context.Context, eventType, principalID, identity string, success bool, detail string) {
	srv.audit.Record(ctx, service.AuditEvent{
		Time:        time.Now(),
		Type:        eventType,
		PrincipalID: principalID,
		Identity:    identity,
		Success:     success,
		Detail:      detail,
	})
}
