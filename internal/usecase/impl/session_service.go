package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/errors"
	"fintracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type sessionService struct {
	txManager        repository.TransactionManager
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
	now              func() time.Time
}

type SessionServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	RefreshTokenRepo repository.RefreshTokenRepository
	Logger           *slog.Logger
}

func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager:        params.TxManager,
		refreshTokenRepo: params.RefreshTokenRepo,
		logger:           params.Logger,
		now:              time.Now,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *sessionService) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	sessions, err := srv.refreshTokenRepo.FindActiveRefreshTokensByUserID(ctx, userID, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active sessions")
	}

	return sessions, nil
}

func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		session, err := refreshRepo.FindRefreshTokenByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrSessionNotFound, "revoke session")
			}

			return errors.Wrap(err, "failed to find session")
		}
		// another user's session is reported exactly like a missing one
		if session.UserID != userID {
			return errors.Wrap(domainerrors.ErrSessionNotFound, "revoke session")
		}
		if session.Revoked {
			return nil
		}

		if _, err := refreshRepo.RevokeRefreshToken(ctx, sessionID, srv.now()); err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}
		srv.log(ctx).Info("Session revoked", slog.Any("user_id", userID), slog.Any("session_id", sessionID))

		return nil
	})
}

func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var revoked int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		revoked, err = repoFactory.RefreshTokenRepo().RevokeRefreshTokensByUserID(ctx, userID, srv.now())

		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to revoke sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("user_id", userID), slog.Int64("count", revoked))

	return revoked, nil
}
