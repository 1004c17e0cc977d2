// Package usecase provides testify mocks of the use case interfaces.
package usecase

import (
	"context"

	"fintracker/internal/domain/entity"
	"fintracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func argOrNil[T any](args mock.Arguments, index int) T {
	var zero T
	if v := args.Get(index); v != nil {
		return v.(T)
	}

	return zero
}

// MockAuthUsecase is a mock of usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

var _ usecase.AuthUsecase = (*MockAuthUsecase)(nil)

func NewMockAuthUsecase(t testingT) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.TokenPair, error) {
	args := m.Called(ctx, input)

	return argOrNil[*entity.TokenPair](args, 0), args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*entity.TokenPair, error) {
	args := m.Called(ctx, input)

	return argOrNil[*entity.TokenPair](args, 0), args.Error(1)
}

func (m *MockAuthUsecase) Refresh(ctx context.Context, input *usecase.RefreshInput) (*entity.TokenPair, error) {
	args := m.Called(ctx, input)

	return argOrNil[*entity.TokenPair](args, 0), args.Error(1)
}

func (m *MockAuthUsecase) Revoke(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

// MockSessionUsecase is a mock of usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

var _ usecase.SessionUsecase = (*MockSessionUsecase)(nil)

func NewMockSessionUsecase(t testingT) *MockSessionUsecase {
	m := &MockSessionUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionUsecase) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	args := m.Called(ctx, userID)

	return argOrNil[[]*entity.RefreshToken](args, 0), args.Error(1)
}

func (m *MockSessionUsecase) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *MockSessionUsecase) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)

	return argOrNil[int64](args, 0), args.Error(1)
}

// MockCategoryUsecase is a mock of usecase.CategoryUsecase.
type MockCategoryUsecase struct {
	mock.Mock
}

var _ usecase.CategoryUsecase = (*MockCategoryUsecase)(nil)

func NewMockCategoryUsecase(t testingT) *MockCategoryUsecase {
	m := &MockCategoryUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCategoryUsecase) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	args := m.Called(ctx, userID, name)

	return argOrNil[*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryUsecase) UpdateCategory(ctx context.Context, userID, id uuid.UUID, name string) (*entity.Category, error) {
	args := m.Called(ctx, userID, id, name)

	return argOrNil[*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryUsecase) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, userID, id)

	return argOrNil[*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryUsecase) ListCategories(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	args := m.Called(ctx, userID)

	return argOrNil[[]*entity.Category](args, 0), args.Error(1)
}

func (m *MockCategoryUsecase) GetCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, userID, id)

	return argOrNil[*entity.Category](args, 0), args.Error(1)
}

// MockTransactionUsecase is a mock of usecase.TransactionUsecase.
type MockTransactionUsecase struct {
	mock.Mock
}

var _ usecase.TransactionUsecase = (*MockTransactionUsecase)(nil)

func NewMockTransactionUsecase(t testingT) *MockTransactionUsecase {
	m := &MockTransactionUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTransactionUsecase) CreateTransaction(ctx context.Context, userID uuid.UUID, input *usecase.CreateTransactionInput) (*entity.TransactionDetail, error) {
	args := m.Called(ctx, userID, input)

	return argOrNil[*entity.TransactionDetail](args, 0), args.Error(1)
}

func (m *MockTransactionUsecase) UpdateTransaction(ctx context.Context, userID uuid.UUID, input *usecase.UpdateTransactionInput) (*entity.TransactionDetail, error) {
	args := m.Called(ctx, userID, input)

	return argOrNil[*entity.TransactionDetail](args, 0), args.Error(1)
}

func (m *MockTransactionUsecase) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	args := m.Called(ctx, userID, id)

	return argOrNil[*entity.TransactionDetail](args, 0), args.Error(1)
}

func (m *MockTransactionUsecase) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error) {
	args := m.Called(ctx, userID)

	return argOrNil[[]*entity.TransactionDetail](args, 0), args.Error(1)
}

func (m *MockTransactionUsecase) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	args := m.Called(ctx, userID, id)

	return argOrNil[*entity.TransactionDetail](args, 0), args.Error(1)
}
