// Package storage defines the persistence interfaces the services rely on.
// Backends (PostgreSQL, in-memory) live in sub-packages.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import "context"

// AllStorage groups every domain-specific storage capability.
type AllStorage interface {
	ProductStorage
	UserStorage
	FamilyStorage
	OrderStorage
	JobStorage
}

// TxStorage is a storage handle bound to a transaction. It becomes unusable after
// Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage is a non-transactional storage handle able to start transactions.
type Storage interface {
	AllStorage

	// Close releases the resources held by the backend.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside a transaction, committing when cb returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
