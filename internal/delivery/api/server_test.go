package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintracker/config"
	apimiddleware "fintracker/internal/delivery/api/middleware"
	"fintracker/internal/delivery/api/router"
	"fintracker/internal/delivery/api/router/handler"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"
	"fintracker/internal/infra/auth"
	mockuc "fintracker/internal/mocks/usecase"
	"fintracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	e           *echo.Echo
	tokens      service.TokenService
	authUC      *mockuc.MockAuthUsecase
	sessionUC   *mockuc.MockSessionUsecase
	categoryUC  *mockuc.MockCategoryUsecase
	transUC     *mockuc.MockTransactionUsecase
	userID      uuid.UUID
	accessToken string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"requestId"`
	} `json:"meta"`
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Access: "api-test-secret-with-enough-bytes"},
		Auth: &config.AuthConfig{
			Issuer:          "fintracker",
			Audience:        "fintracker-api",
			AccessTokenTTL:  5 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	f := &apiFixture{
		e:          newEcho(cfg, logger),
		tokens:     tokens,
		authUC:     mockuc.NewMockAuthUsecase(t),
		sessionUC:  mockuc.NewMockSessionUsecase(t),
		categoryUC: mockuc.NewMockCategoryUsecase(t),
		transUC:    mockuc.NewMockTransactionUsecase(t),
		userID:     uuid.New(),
	}

	router.NewRouter(router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{
			AuthUC: f.authUC, SessionUC: f.sessionUC, Logger: logger,
		}),
		CategoryHandler: handler.NewCategoryHandler(handler.CategoryHandlerParams{
			CategoryUC: f.categoryUC, Logger: logger,
		}),
		TransactionHandler: handler.NewTransactionHandler(handler.TransactionHandlerParams{
			TransactionUC: f.transUC, Logger: logger,
		}),
		HealthHandler:  &handler.HealthHandler{},
		AuthMiddleware: apimiddleware.NewAuthMiddleware(tokens),
	}).RegisterRoutes(f.e)

	f.accessToken, _, err = tokens.GenerateAccessToken(&entity.User{ID: f.userID, Email: "ada@example.com"})
	require.NoError(t, err)

	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string, authorized bool) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authorized {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+f.accessToken)
	}

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	if rec.Code == http.StatusNoContent {
		return rec, nil
	}

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec, &env
}

func testPair() *entity.TokenPair {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	return &entity.TokenPair{
		AccessToken:         "access",
		RefreshToken:        "refresh",
		AccessTokenExpires:  now.Add(5 * time.Minute),
		RefreshTokenExpires: now.Add(720 * time.Hour),
	}
}

func TestAPI_Register(t *testing.T) {
	f := newAPIFixture(t)
	f.authUC.On("Register", mock.Anything, mock.MatchedBy(func(in *usecase.RegisterInput) bool {
		return in.Email == "ada@example.com" && in.FirstName == "Ada" && in.Client.IPAddress != ""
	})).Return(testPair(), nil).Once()

	rec, env := f.do(t, http.MethodPost, "/api/auth/register",
		`{"email":"ada@example.com","password":"secret1","firstName":"Ada","lastName":"Lovelace"}`, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get(echo.HeaderXRequestID))

	var pair handler.TokenPairResponse
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
	assert.Contains(t, string(env.Data), `"refreshTokenExpires":"2026-02-01T03:04:05Z"`)
}

func TestAPI_Register_Errors(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		f := newAPIFixture(t)
		f.authUC.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.Wrap(domainerrors.ErrDuplicateEmail, "register")).Once()

		rec, env := f.do(t, http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"secret1"}`, false)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "DUPLICATE_EMAIL", env.Error.Code)
	})

	t.Run("validation", func(t *testing.T) {
		f := newAPIFixture(t)

		rec, env := f.do(t, http.MethodPost, "/api/auth/register", `{"email":"not-an-email"}`, false)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
		assert.Contains(t, env.Error.Details, "password is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newAPIFixture(t)

		rec, env := f.do(t, http.MethodPost, "/api/auth/register", `{"email":`, false)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})
}

func TestAPI_Login_InvalidCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.authUC.On("Login", mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")).Once()

	rec, env := f.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"nope"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	assert.Nil(t, env.Error.Details)
}

func TestAPI_RefreshAndRevoke(t *testing.T) {
	f := newAPIFixture(t)
	f.authUC.On("Refresh", mock.Anything, mock.MatchedBy(func(in *usecase.RefreshInput) bool {
		return in.RefreshToken == "refresh" && in.AccessToken == "old-access"
	})).Return(testPair(), nil).Once()
	f.authUC.On("Refresh", mock.Anything, mock.MatchedBy(func(in *usecase.RefreshInput) bool {
		return in.RefreshToken == "stale"
	})).Return(nil, errors.Wrap(domainerrors.ErrTokenRevoked, "refresh failed")).Once()
	f.authUC.On("Revoke", mock.Anything, "refresh").Return(nil).Once()

	rec, _ := f.do(t, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"refresh","accessToken":"old-access"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"stale"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", env.Error.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/auth/revoke", `{"refreshToken":"refresh"}`, false)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/categories", "/api/transactions", "/api/auth/sessions"} {
		rec, env := f.do(t, http.MethodGet, path, "", false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Categories(t *testing.T) {
	f := newAPIFixture(t)
	food := &entity.Category{ID: uuid.New(), UserID: f.userID, Name: "Food"}

	f.categoryUC.On("CreateCategory", mock.Anything, f.userID, "Food").Return(food, nil).Once()
	f.categoryUC.On("CreateCategory", mock.Anything, f.userID, "food").
		Return(nil, errors.Wrap(domainerrors.ErrDuplicateCategoryName, "food")).Once()
	f.categoryUC.On("ListCategories", mock.Anything, f.userID).Return([]*entity.Category{food}, nil).Once()
	f.categoryUC.On("GetCategory", mock.Anything, f.userID, food.ID).Return(food, nil).Once()
	f.categoryUC.On("UpdateCategory", mock.Anything, f.userID, food.ID, "Groceries").
		Return(&entity.Category{ID: food.ID, UserID: f.userID, Name: "Groceries"}, nil).Once()
	f.categoryUC.On("DeleteCategory", mock.Anything, f.userID, food.ID).Return(food, nil).Once()

	rec, env := f.do(t, http.MethodPost, "/api/categories", `{"name":"Food"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"`+food.ID.String()+`","name":"Food"}`, string(env.Data))

	rec, env = f.do(t, http.MethodPost, "/api/categories", `{"name":"food"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_CATEGORY_NAME", env.Error.Code)

	rec, env = f.do(t, http.MethodGet, "/api/categories", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"`+food.ID.String()+`","name":"Food"}]`, string(env.Data))

	rec, _ = f.do(t, http.MethodGet, "/api/categories/"+food.ID.String(), "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = f.do(t, http.MethodPut, "/api/categories", `{"id":"`+food.ID.String()+`","name":"Groceries"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Groceries")

	rec, _ = f.do(t, http.MethodDelete, "/api/categories", `{"id":"`+food.ID.String()+`"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = f.do(t, http.MethodGet, "/api/categories/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestAPI_Categories_NotFoundAndInternal(t *testing.T) {
	f := newAPIFixture(t)
	missing := uuid.New()

	f.categoryUC.On("GetCategory", mock.Anything, f.userID, missing).
		Return(nil, errors.Wrap(domainerrors.ErrCategoryNotFound, "lookup")).Once()
	f.categoryUC.On("ListCategories", mock.Anything, f.userID).
		Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "list")).Once()

	rec, env := f.do(t, http.MethodGet, "/api/categories/"+missing.String(), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", env.Error.Code)

	rec, env = f.do(t, http.MethodGet, "/api/categories", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestAPI_Transactions(t *testing.T) {
	f := newAPIFixture(t)
	categoryID := uuid.New()
	detail := &entity.TransactionDetail{
		Transaction: entity.Transaction{
			ID:          uuid.New(),
			UserID:      f.userID,
			CategoryID:  categoryID,
			Description: "Lunch",
			Amount:      decimal.RequireFromString("-12.5"),
			Date:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		CategoryName: "Food",
	}

	f.transUC.On("CreateTransaction", mock.Anything, f.userID, mock.MatchedBy(func(in *usecase.CreateTransactionInput) bool {
		return in.CategoryID == categoryID && in.Amount.Equal(decimal.RequireFromString("-12.5"))
	})).Return(detail, nil).Once()

	rec, env := f.do(t, http.MethodPost, "/api/transactions",
		`{"description":"Lunch","amount":"-12.5","categoryId":"`+categoryID.String()+`","date":"1999-01-01T00:00:00Z"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body handler.TransactionResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "-12.50", body.Amount)
	assert.Equal(t, "Food", body.CategoryName)
	assert.True(t, detail.Date.Equal(body.Date))
}

func TestAPI_Transactions_Errors(t *testing.T) {
	f := newAPIFixture(t)
	categoryID := uuid.New()

	f.transUC.On("CreateTransaction", mock.Anything, f.userID, mock.Anything).
		Return(nil, errors.Wrap(domainerrors.ErrCategoryNotFound.WithHTTPCode(http.StatusBadRequest), "missing")).Once()

	rec, env := f.do(t, http.MethodPost, "/api/transactions",
		`{"description":"x","amount":5,"categoryId":"`+categoryID.String()+`"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", env.Error.Code)

	rec, env = f.do(t, http.MethodPost, "/api/transactions", `{"description":"x","categoryId":"`+categoryID.String()+`"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "amount is required")

	rec, env = f.do(t, http.MethodPut, "/api/transactions",
		`{"id":"`+uuid.NewString()+`","amount":1,"categoryId":"`+categoryID.String()+`"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "date is required")
}

func TestAPI_Sessions(t *testing.T) {
	f := newAPIFixture(t)
	sessionID := uuid.New()
	created := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	f.sessionUC.On("ListActiveSessions", mock.Anything, f.userID).Return([]*entity.RefreshToken{
		{ID: sessionID, UserID: f.userID, CreatedAt: created, ExpiresAt: created.Add(time.Hour), UserAgent: "curl"},
	}, nil).Once()
	f.sessionUC.On("RevokeSession", mock.Anything, f.userID, sessionID).Return(nil).Once()
	f.sessionUC.On("RevokeAllSessions", mock.Anything, f.userID).Return(int64(3), nil).Once()

	rec, env := f.do(t, http.MethodGet, "/api/auth/sessions", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), sessionID.String())
	assert.NotContains(t, string(env.Data), "token")

	rec, _ = f.do(t, http.MethodDelete, "/api/auth/sessions/"+sessionID.String(), "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = f.do(t, http.MethodPost, "/api/auth/logout", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":3}`, string(env.Data))
}
