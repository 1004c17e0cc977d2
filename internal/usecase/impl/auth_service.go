// Package impl implements the use cases on top of the domain repositories and services.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"
	"fintracker/internal/usecase"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

type authService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	eventPublisher service.EventPublisher
	logger         *slog.Logger
	now            func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	EventPublisher service.EventPublisher
	Logger         *slog.Logger
}

func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		userRepo:       params.UserRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		eventPublisher: params.EventPublisher,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates the user, seeds the default categories and opens the first
// session in one transaction.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.TokenPair, error) {
	email := strings.TrimSpace(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("invalid email format")
	}
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	// hashing is CPU bound, keep it out of the transaction
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, findErr := userRepo.FindByEmail(ctx, email)
		switch {
		case findErr == nil:
			return errors.Wrap(domainerrors.ErrDuplicateEmail, "email already registered")
		case !errors.Is(findErr, repository.ErrUserNotFound):
			return errors.Wrap(findErr, "failed to check email")
		}

		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		if err := repoFactory.CategoryRepo().CreateBatch(ctx, defaultCategories(user.ID)); err != nil {
			return errors.Wrap(err, "failed to seed default categories")
		}

		var genErr error
		pair, genErr = srv.generateTokens(ctx, repoFactory.RefreshTokenRepo(), user, input.Client)

		return genErr
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateEmail) {
			srv.log(ctx).Warn("Registration rejected", slog.String("email", email), slog.Any("error", err))
		} else {
			srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", email), slog.Any("error", err))
		}

		return nil, err
	}

	srv.log(ctx).Info("User registered", slog.Any("user_id", user.ID))
	publishLedgerEvent(ctx, srv.eventPublisher, srv.log(ctx), &service.LedgerEvent{
		Type:     service.EventUserRegistered,
		UserID:   user.ID.String(),
		EntityID: user.ID.String(),
	})

	return pair, nil
}

// Login answers unknown emails and wrong passwords with the same error. A
// successful login ends every other session of the user.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*entity.TokenPair, error) {
	email := strings.TrimSpace(input.Email)
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "unknown email"))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	if !srv.hasher.Verify(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	var pair *entity.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		revoked, err := refreshRepo.RevokeRefreshTokensByUserID(ctx, user.ID, srv.now())
		if err != nil {
			return errors.Wrap(err, "failed to revoke previous sessions")
		}
		if revoked > 0 {
			srv.log(ctx).Debug("Revoked previous sessions", slog.Any("user_id", user.ID), slog.Int64("count", revoked))
		}

		pair, err = srv.generateTokens(ctx, refreshRepo, user, input.Client)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute login transaction", slog.Any("user_id", user.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("user_id", user.ID))

	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the same user.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*entity.TokenPair, error) {
	var (
		pair         *entity.TokenPair
		tokenInvalid bool
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()
		now := srv.now()

		stored, err := refreshRepo.FindRefreshTokenByToken(ctx, input.RefreshToken)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrTokenNotFound, "refresh failed")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		switch {
		case stored.Revoked:
			return errors.Wrap(domainerrors.ErrTokenRevoked, "refresh failed")
		case stored.IsExpired(now):
			return errors.Wrap(domainerrors.ErrTokenExpired, "refresh failed")
		}

		changed, err := refreshRepo.RevokeRefreshToken(ctx, stored.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to revoke refresh token")
		}
		if !changed {
			// a concurrent refresh won the race for this token
			return errors.Wrap(domainerrors.ErrTokenRevoked, "refresh failed")
		}

		if !srv.accessTokenMatches(ctx, input.AccessToken, stored.UserID) {
			// commit the revocation, report the failure after the transaction
			tokenInvalid = true

			return nil
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, stored.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load token owner")
		}

		pair, err = srv.generateTokens(ctx, refreshRepo, user, input.Client)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Token refresh failed", slog.Any("error", err))

		return nil, err
	}
	if tokenInvalid {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "access token does not match refresh token")
	}

	return pair, nil
}

// accessTokenMatches accepts an absent access token. A present one must be
// genuine (expiry ignored) and belong to the refresh token owner.
func (srv *authService) accessTokenMatches(ctx context.Context, accessToken string, owner uuid.UUID) bool {
	if accessToken == "" {
		return true
	}

	claims, err := srv.tokenService.ValidateExpiredToken(accessToken)
	if err != nil {
		srv.log(ctx).Warn("Access token presented on refresh is invalid", slog.Any("error", err))

		return false
	}

	subject, err := claims.UserID()
	if err != nil || subject != owner {
		srv.log(ctx).Warn("Access token presented on refresh belongs to another user", slog.Any("owner", owner))

		return false
	}

	return true
}

func (srv *authService) Revoke(ctx context.Context, refreshToken string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		stored, err := refreshRepo.FindRefreshTokenByToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find refresh token")
		}
		if stored.Revoked {
			return nil
		}

		if _, err := refreshRepo.RevokeRefreshToken(ctx, stored.ID, srv.now()); err != nil {
			return errors.Wrap(err, "failed to revoke refresh token")
		}
		srv.log(ctx).Info("Refresh token revoked", slog.Any("user_id", stored.UserID), slog.Any("session_id", stored.ID))

		return nil
	})
}

// generateTokens issues an access token and persists a fresh refresh token.
func (srv *authService) generateTokens(
	ctx context.Context,
	refreshRepo repository.RefreshTokenRepository,
	user *entity.User,
	client entity.ClientInfo,
) (*entity.TokenPair, error) {
	accessToken, accessExpires, err := srv.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	refreshToken, err := srv.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	now := srv.now()
	stored := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(srv.tokenService.RefreshTokenDuration()),
		CreatedAt: now,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := refreshRepo.CreateRefreshToken(ctx, stored); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &entity.TokenPair{
		AccessToken:         accessToken,
		RefreshToken:        refreshToken,
		AccessTokenExpires:  accessExpires,
		RefreshTokenExpires: stored.ExpiresAt,
	}, nil
}

func defaultCategories(userID uuid.UUID) []*entity.Category {
	categories := make([]*entity.Category, 0, len(entity.DefaultCategoryNames))
	for _, name := range entity.DefaultCategoryNames {
		categories = append(categories, &entity.Category{ID: uuid.New(), UserID: userID, Name: name})
	}

	return categories
}
