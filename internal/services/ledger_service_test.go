package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niyodushima/finance-dashboard/internal/amqp"
	"github.com/niyodushima/finance-dashboard/internal/core"
)

type fakeStore struct {
	exists    bool
	existsErr error
	insertErr error
	lastKind  core.TransactionKind
	inserted  int
}

func (f *fakeStore) CustomerExists(ctx context.Context, id int64) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) InsertCustomer(ctx context.Context, name string) (core.Customer, error) {
	return core.Customer{ID: 1, Name: name}, nil
}

func (f *fakeStore) InsertIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return f.insert(core.KindIncome, customerID, amount, description)
}

func (f *fakeStore) InsertExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return f.insert(core.KindExpense, customerID, amount, description)
}

func (f *fakeStore) insert(kind core.TransactionKind, customerID int64, amount float64, description string) (core.Transaction, error) {
	if f.insertErr != nil {
		return core.Transaction{}, f.insertErr
	}
	f.inserted++
	f.lastKind = kind
	return core.Transaction{ID: int64(f.inserted), CustomerID: customerID, Kind: kind, Amount: amount, Description: description}, nil
}

type fakePublisher struct {
	published []*amqp.TransactionRecordedMessage
	err       error
}

func (f *fakePublisher) PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func TestRecordIncomePublishesEvent(t *testing.T) {
	store := &fakeStore{exists: true}
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub)

	tx, err := svc.RecordIncome(context.Background(), 1, 1000, "salary")
	require.NoError(t, err)
	assert.Equal(t, core.KindIncome, tx.Kind)

	require.Len(t, pub.published, 1)
	assert.Equal(t, int64(1), pub.published[0].CustomerID)
	assert.Equal(t, 1000.0, pub.published[0].Amount)
}

func TestRecordExpenseUnknownCustomer(t *testing.T) {
	store := &fakeStore{exists: false}
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub)

	_, err := svc.RecordExpense(context.Background(), 999, 50, "")
	assert.ErrorIs(t, err, core.ErrCustomerNotFound)
	// Fail-fast: no insert, no event.
	assert.Zero(t, store.inserted)
	assert.Empty(t, pub.published)
}

func TestRecordSurvivesPublishFailure(t *testing.T) {
	store := &fakeStore{exists: true}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(store, pub)

	tx, err := svc.RecordExpense(context.Background(), 1, 200, "rent")
	require.NoError(t, err, "publish failure must not fail the write")
	assert.Equal(t, core.KindExpense, tx.Kind)
	assert.Equal(t, 1, store.inserted)
}

func TestRecordWithoutPublisher(t *testing.T) {
	store := &fakeStore{exists: true}
	svc := NewLedgerService(store, nil)

	_, err := svc.RecordIncome(context.Background(), 1, 10, "")
	require.NoError(t, err)
}

func TestRecordStoreFault(t *testing.T) {
	store := &fakeStore{exists: true, insertErr: errors.New("disk full")}
	svc := NewLedgerService(store, &fakePublisher{})

	_, err := svc.RecordIncome(context.Background(), 1, 10, "")
	assert.Error(t, err)

	store = &fakeStore{existsErr: errors.New("store unreachable")}
	svc = NewLedgerService(store, &fakePublisher{})
	_, err = svc.RecordExpense(context.Background(), 1, 10, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrCustomerNotFound)
}
