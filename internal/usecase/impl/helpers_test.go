package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"fintracker/config"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"
	"fintracker/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey: config.SecretKeyConfig{Access: "test-access-secret-with-enough-bytes"},
		Auth: &config.AuthConfig{
			Issuer:           "fintracker-test",
			Audience:         "fintracker-test-api",
			AccessTokenTTL:   5 * time.Minute,
			RefreshTokenTTL:  30 * 24 * time.Hour,
			PBKDF2Iterations: 1000,
		},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength: 6,
			MaxLength: 100,
		},
	}
}

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()

	tokens, err := auth.NewJWTService(newTestConfig())
	require.NoError(t, err)

	return tokens
}

// memStore is an in-memory stand-in for the database. Execute snapshots the
// tables and restores them when the unit of work fails.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]entity.User
	categories   map[uuid.UUID]entity.Category
	transactions map[uuid.UUID]entity.Transaction
	tokens       map[uuid.UUID]entity.RefreshToken

	executeCalls int
	failOn       string
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]entity.User),
		categories:   make(map[uuid.UUID]entity.Category),
		transactions: make(map[uuid.UUID]entity.Transaction),
		tokens:       make(map[uuid.UUID]entity.RefreshToken),
	}
}

var errInjected = errors.New("injected failure")

func (s *memStore) fail(op string) error {
	if s.failOn == op {
		return domainerrors.NewDatabaseExecuteError(errInjected, op)
	}

	return nil
}

func (s *memStore) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	s.mu.Lock()
	s.executeCalls++
	users := cloneMap(s.users)
	categories := cloneMap(s.categories)
	transactions := cloneMap(s.transactions)
	tokens := cloneMap(s.tokens)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users, s.categories, s.transactions, s.tokens = users, categories, transactions, tokens
		s.mu.Unlock()

		return err
	}

	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func (s *memStore) UserRepo() repository.UserRepository { return &memUserRepo{s} }

func (s *memStore) CategoryRepo() repository.CategoryRepository { return &memCategoryRepo{s} }

func (s *memStore) TransactionRepo() repository.TransactionRepository { return &memTransactionRepo{s} }

func (s *memStore) RefreshTokenRepo() repository.RefreshTokenRepository { return &memRefreshTokenRepo{s} }

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("user.find_by_email"); err != nil {
		return nil, err
	}
	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return domainerrors.ErrDuplicateEmail.WrapMessage("create user")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user

	return nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return r.CreateBatch(ctx, []*entity.Category{category})
}

func (r *memCategoryRepo) CreateBatch(_ context.Context, categories []*entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("category.create"); err != nil {
		return err
	}
	for _, category := range categories {
		for _, existing := range r.s.categories {
			if existing.UserID == category.UserID && strings.EqualFold(existing.Name, category.Name) {
				return domainerrors.ErrDuplicateCategoryName.WrapMessage("create category")
			}
		}
		category.CreatedAt = time.Now()
		category.UpdatedAt = category.CreatedAt
		r.s.categories[category.ID] = *category
	}

	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return repository.ErrCategoryNotFound
	}
	existing.Name = category.Name
	existing.UpdatedAt = time.Now()
	r.s.categories[category.ID] = existing

	return nil
}

// Delete cascades to the transactions of the category.
func (r *memCategoryRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[id]
	if !ok || existing.UserID != userID {
		return repository.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	for txnID, txn := range r.s.transactions {
		if txn.CategoryID == id {
			delete(r.s.transactions, txnID)
		}
	}

	return nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrCategoryNotFound
	}

	return &existing, nil
}

func (r *memCategoryRepo) FindByName(_ context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.UserID == userID && strings.EqualFold(existing.Name, name) {
			return &existing, nil
		}
	}

	return nil, repository.ErrCategoryNotFound
}

func (r *memCategoryRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("category.list"); err != nil {
		return nil, err
	}
	var out []*entity.Category
	for _, existing := range r.s.categories {
		if existing.UserID == userID {
			category := existing
			out = append(out, &category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Create(_ context.Context, txn *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	r.s.transactions[txn.ID] = *txn

	return nil
}

func (r *memTransactionRepo) Update(_ context.Context, txn *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[txn.ID]
	if !ok || existing.UserID != txn.UserID {
		return repository.ErrTransactionNotFound
	}
	txn.UpdatedAt = time.Now()
	r.s.transactions[txn.ID] = *txn

	return nil
}

func (r *memTransactionRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[id]
	if !ok || existing.UserID != userID {
		return repository.ErrTransactionNotFound
	}
	delete(r.s.transactions, id)

	return nil
}

func (r *memTransactionRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}

	return r.s.detail(existing), nil
}

func (r *memTransactionRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.TransactionDetail
	for _, existing := range r.s.transactions {
		if existing.UserID == userID {
			out = append(out, r.s.detail(existing))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

	return out, nil
}

func (s *memStore) detail(txn entity.Transaction) *entity.TransactionDetail {
	return &entity.TransactionDetail{Transaction: txn, CategoryName: s.categories[txn.CategoryID].Name}
}

type memRefreshTokenRepo struct{ s *memStore }

func (r *memRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("token.create"); err != nil {
		return err
	}
	r.s.tokens[token.ID] = *token

	return nil
}

func (r *memRefreshTokenRepo) FindRefreshTokenByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tokens {
		if existing.Token == token {
			return &existing, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *memRefreshTokenRepo) FindRefreshTokenByID(_ context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tokens[id]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return &existing, nil
}

func (r *memRefreshTokenRepo) FindActiveRefreshTokensByUserID(_ context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.RefreshToken
	for _, existing := range r.s.tokens {
		if existing.UserID == userID && existing.IsActive(now) {
			token := existing
			out = append(out, &token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (r *memRefreshTokenRepo) RevokeRefreshToken(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tokens[id]
	if !ok || existing.Revoked {
		return false, nil
	}
	existing.Revoke(at)
	r.s.tokens[id] = existing

	return true, nil
}

func (r *memRefreshTokenRepo) RevokeRefreshTokensByUserID(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for id, existing := range r.s.tokens {
		if existing.UserID == userID && existing.IsActive(at) {
			existing.Revoke(at)
			r.s.tokens[id] = existing
			count++
		}
	}

	return count, nil
}

// recordingPublisher keeps published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, event *service.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}

	return out
}
