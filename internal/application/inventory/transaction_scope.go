package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/inventory"
)

// TransactionScope runs stock movements atomically.
// The variant row update and its transaction record commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one database transaction
type TransactionalRepositories interface {
	// LockVariant loads a variant and holds its row lock until the transaction ends
	LockVariant(ctx context.Context, id uuid.UUID) (*catalog.Variant, error)
	VariantRepo() catalog.VariantRepository
	TransactionRepo() inventory.TransactionRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction
type NoOpTransactionScope struct {
	variantRepo     catalog.VariantRepository
	transactionRepo inventory.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(variantRepo catalog.VariantRepository, transactionRepo inventory.TransactionRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{variantRepo: variantRepo, transactionRepo: transactionRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LockVariant loads the variant without locking
func (s *NoOpTransactionScope) LockVariant(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	return s.variantRepo.FindByID(ctx, id)
}

// VariantRepo returns the variant repository
func (s *NoOpTransactionScope) VariantRepo() catalog.VariantRepository {
	return s.variantRepo
}

// TransactionRepo returns the transaction repository
func (s *NoOpTransactionScope) TransactionRepo() inventory.TransactionRepository {
	return s.transactionRepo
}
