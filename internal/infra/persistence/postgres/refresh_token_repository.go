package postgres

import (
	"context"
	"time"

	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/errors"
	"fintracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (repo *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	tokenM := fromRefreshTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("refresh token for unknown user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindRefreshTokenByToken returns revoked and expired tokens too; callers decide.
func (repo *refreshTokenRepository) FindRefreshTokenByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	return repo.findOne(ctx, "token = ?", token)
}

func (repo *refreshTokenRepository) FindRefreshTokenByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	return repo.findOne(ctx, "id = ?", id)
}

func (repo *refreshTokenRepository) FindActiveRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error) {
	var rows []*model.RefreshTokenModel
	if err := repo.active(ctx, userID, now).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list refresh tokens")
	}

	tokens := make([]*entity.RefreshToken, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, toRefreshTokenDomain(row))
	}

	return tokens, nil
}

func (repo *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]any{"revoked": true, "revoked_at": at})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke refresh token")
	}

	return result.RowsAffected > 0, nil
}

func (repo *refreshTokenRepository) RevokeRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := repo.active(ctx, userID, at).
		Model(&model.RefreshTokenModel{}).
		Updates(map[string]any{"revoked": true, "revoked_at": at})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke refresh tokens")
	}

	return result.RowsAffected, nil
}

func (repo *refreshTokenRepository) active(ctx context.Context, userID uuid.UUID, now time.Time) *gorm.DB {
	return repo.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, now)
}

func (repo *refreshTokenRepository) findOne(ctx context.Context, query string, arg any) (*entity.RefreshToken, error) {
	var row model.RefreshTokenModel
	if err := repo.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find refresh token")
	}

	return toRefreshTokenDomain(&row), nil
}

func toRefreshTokenDomain(m *model.RefreshTokenModel) *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		Revoked:   m.Revoked,
		RevokedAt: m.RevokedAt,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
	}
}

func fromRefreshTokenDomain(t *entity.RefreshToken) *model.RefreshTokenModel {
	return &model.RefreshTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
		Revoked:   t.Revoked,
		RevokedAt: t.RevokedAt,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
	}
}
