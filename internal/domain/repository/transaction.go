package repository

import "context"

// TransactionManager runs a unit of work inside one database transaction.
// The use case layer depends on it instead of on gorm.
type TransactionManager interface {
	// Execute runs fn in a transaction. A returned error or a panic rolls back,
	// otherwise the transaction is committed.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the current transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	CategoryRepo() CategoryRepository
	TransactionRepo() TransactionRepository
	RefreshTokenRepo() RefreshTokenRepository
}
