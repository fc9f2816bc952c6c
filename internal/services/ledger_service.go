// Package services orchestrates ledger writes across the repository and the
// optional event stream.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niyodushima/finance-dashboard/internal/amqp"
	"github.com/niyodushima/finance-dashboard/internal/core"
)

// LedgerStore is the repository surface the service writes through.
type LedgerStore interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
	InsertCustomer(ctx context.Context, name string) (core.Customer, error)
	InsertIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
	InsertExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
}

// EventPublisher pushes transaction events to downstream consumers.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
}

// LedgerService performs the write path: referential check, append, and a
// best-effort event publish. The store write is authoritative; publish
// failures are logged and never fail the request.
type LedgerService struct {
	store     LedgerStore
	publisher EventPublisher
}

// NewLedgerService builds a service. publisher may be nil when AMQP is not
// configured.
func NewLedgerService(store LedgerStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// CreateCustomer records a new customer.
func (s *LedgerService) CreateCustomer(ctx context.Context, name string) (core.Customer, error) {
	return s.store.InsertCustomer(ctx, name)
}

// RecordIncome appends an income row for an existing customer.
func (s *LedgerService) RecordIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return s.record(ctx, core.KindIncome, customerID, amount, description)
}

// RecordExpense appends an expense row for an existing customer.
func (s *LedgerService) RecordExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return s.record(ctx, core.KindExpense, customerID, amount, description)
}

func (s *LedgerService) record(ctx context.Context, kind core.TransactionKind, customerID int64, amount float64, description string) (core.Transaction, error) {
	exists, err := s.store.CustomerExists(ctx, customerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return core.Transaction{}, core.ErrCustomerNotFound
	}

	var tx core.Transaction
	switch kind {
	case core.KindIncome:
		tx, err = s.store.InsertIncome(ctx, customerID, amount, description)
	default:
		tx, err = s.store.InsertExpense(ctx, customerID, amount, description)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record %s: %w", kind, err)
	}

	s.publish(ctx, tx)
	return tx, nil
}

func (s *LedgerService) publish(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, amqp.NewTransactionRecorded(tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err,
			"kind", tx.Kind,
			"id", tx.ID)
	}
}
