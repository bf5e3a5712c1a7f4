// Package shop holds the business rules of the store: catalog, accounts,
// families and orders. It talks to persistence only through storage.Storage.
package shop

import (
	"shoptogether/internal/config"
	"shoptogether/pkg/storage"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Options tune the services. They are typically derived from the app config.
type Options struct {
	// ConfirmDelay is how long a new order stays cancellable before the worker
	// confirms it.
	ConfirmDelay time.Duration
	// ConfirmMaxAttempts bounds retries of the confirmation job.
	ConfirmMaxAttempts int
	// BcryptCost is the password hashing cost.
	BcryptCost int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ConfirmDelay:       cfg.Orders.ConfirmDelay,
		ConfirmMaxAttempts: cfg.Orders.ConfirmMaxAttempts,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// NumberGenerator hands out order numbers.
type NumberGenerator interface {
	Next() int64
}

// Service implements Catalog, Accounts, Families and Orders.
type Service struct {
	options Options
	storage storage.Storage
	numbers NumberGenerator
	// dummyHash keeps login timing the same for unknown emails.
	dummyHash []byte
}

var (
	_ Catalog  = (*Service)(nil)
	_ Accounts = (*Service)(nil)
	_ Families = (*Service)(nil)
	_ Orders   = (*Service)(nil)
)

// New creates the services on top of st.
func New(st storage.Storage, numbers NumberGenerator, options Options) *Service {
	if options.BcryptCost == 0 {
		options.BcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), options.BcryptCost)

	return &Service{
		options:   options,
		storage:   st,
		numbers:   numbers,
		dummyHash: dummy,
	}
}
