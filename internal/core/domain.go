package core

import (
	"errors"
	"strings"
	"time"
)

// TransactionKind distinguishes the two ledger tables.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

type (
	// Customer is a ledger account holder. IDs are assigned by the store
	// and strictly increasing.
	Customer struct {
		ID   int64
		Name string
	}

	// Transaction is one append-only income or expense row.
	Transaction struct {
		ID          int64
		CustomerID  int64
		Kind        TransactionKind
		Amount      float64
		Description string
		RecordedAt  time.Time
	}

	// SummaryRow is the derived per-customer aggregate. It is recomputed on
	// every read; nothing caches it.
	SummaryRow struct {
		CustomerID   int64
		Name         string
		TotalIncome  float64
		TotalExpense float64
		Balance      float64
	}
)

var (
	ErrEmptyName         = errors.New("customer name cannot be empty")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCustomerID = errors.New("invalid customer id")
	ErrCustomerNotFound  = errors.New("customer not found")
)

// Validate checks the fields a caller controls. The id is store-assigned and
// therefore not inspected here.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.CustomerID <= 0 {
		return ErrInvalidCustomerID
	}
	if t.Kind != KindIncome && t.Kind != KindExpense {
		return errors.New("invalid transaction kind")
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
