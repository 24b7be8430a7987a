package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Store bundles the repos over one database. Reads outside a transaction go
// through the embedded repos; anything that writes more than one row uses
// WithTx.
type Store struct {
	db *sqlx.DB

	Cars      *CarRepo
	Customers *CustomerRepo
	Employees *EmployeeRepo
	Sales     *SaleRepo
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:        db,
		Cars:      NewCarRepo(db),
		Customers: NewCustomerRepo(db),
		Employees: NewEmployeeRepo(db),
		Sales:     NewSaleRepo(db),
	}
}

func (s *Store) DB() *sqlx.DB { return s.db }

// Tx is the same set of repos bound to one open transaction.
type Tx struct {
	Cars      *CarRepo
	Customers *CustomerRepo
	Employees *EmployeeRepo
	Sales     *SaleRepo
}

// WithTx runs fn inside a transaction and commits when fn returns nil.
// fn must only use the repos on the Tx it is handed; the pool holds a single
// connection, so reaching for Store from inside fn would block.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{
		Cars:      NewCarRepo(tx),
		Customers: NewCustomerRepo(tx),
		Employees: NewEmployeeRepo(tx),
		Sales:     NewSaleRepo(tx),
	}); err != nil {
		return err
	}
	return tx.Commit()
}
