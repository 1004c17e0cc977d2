package handler

import (
	"time"

	"fintracker/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest may carry the access token the refresh token was issued with.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	AccessToken  string `json:"accessToken"`
}

type RevokeRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenPairResponse struct {
	AccessToken         string    `json:"accessToken"`
	RefreshToken        string    `json:"refreshToken"`
	AccessTokenExpires  time.Time `json:"accessTokenExpires"`
	RefreshTokenExpires time.Time `json:"refreshTokenExpires"`
}

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

type LogoutResponse struct {
	Revoked int64 `json:"revoked"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateCategoryRequest struct {
	ID   uuid.UUID `json:"id" validate:"required"`
	Name string    `json:"name" validate:"required,max=100"`
}

// IDRequest is the body of the DELETE endpoints.
type IDRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateTransactionRequest has no date; the server stamps the creation time.
type CreateTransactionRequest struct {
	Description string           `json:"description" validate:"max=500"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	CategoryID  uuid.UUID        `json:"categoryId" validate:"required"`
}

type UpdateTransactionRequest struct {
	ID          uuid.UUID        `json:"id" validate:"required"`
	Description string           `json:"description" validate:"max=500"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Date        time.Time        `json:"date" validate:"required"`
	CategoryID  uuid.UUID        `json:"categoryId" validate:"required"`
}

// TransactionResponse renders the amount as a fixed two-decimal string.
type TransactionResponse struct {
	ID           uuid.UUID `json:"id"`
	Description  string    `json:"description"`
	Amount       string    `json:"amount"`
	Date         time.Time `json:"date"`
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
}

func toTokenPairResponse(pair *entity.TokenPair) *TokenPairResponse {
	return &TokenPairResponse{
		AccessToken:         pair.AccessToken,
		RefreshToken:        pair.RefreshToken,
		AccessTokenExpires:  pair.AccessTokenExpires.UTC(),
		RefreshTokenExpires: pair.RefreshTokenExpires.UTC(),
	}
}

func toSessionResponses(tokens []*entity.RefreshToken) []*SessionResponse {
	sessions := make([]*SessionResponse, 0, len(tokens))
	for _, token := range tokens {
		sessions = append(sessions, &SessionResponse{
			ID:        token.ID,
			CreatedAt: token.CreatedAt.UTC(),
			ExpiresAt: token.ExpiresAt.UTC(),
			UserAgent: token.UserAgent,
			IPAddress: token.IPAddress,
		})
	}

	return sessions
}

func toCategoryResponse(category *entity.Category) *CategoryResponse {
	return &CategoryResponse{ID: category.ID, Name: category.Name}
}

func toCategoryResponses(categories []*entity.Category) []*CategoryResponse {
	out := make([]*CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryResponse(category))
	}

	return out
}

func toTransactionResponse(detail *entity.TransactionDetail) *TransactionResponse {
	return &TransactionResponse{
		ID:           detail.ID,
		Description:  detail.Description,
		Amount:       detail.Amount.StringFixed(2),
		Date:         detail.Date.UTC(),
		CategoryID:   detail.CategoryID,
		CategoryName: detail.CategoryName,
	}
}

func toTransactionResponses(details []*entity.TransactionDetail) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(details))
	for _, detail := range details {
		out = append(out, toTransactionResponse(detail))
	}

	return out
}
