package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "finance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "finance.db")

	repo, err := Open(dbPath)
	require.NoError(t, err)
	_, err = repo.InsertCustomer(context.Background(), "Alice")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening must not error and must keep existing rows.
	repo, err = Open(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	customers, err := repo.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Alice", customers[0].Name)
}

func TestInsertAndListCustomers(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	alice, err := repo.InsertCustomer(ctx, "Alice")
	require.NoError(t, err)
	bob, err := repo.InsertCustomer(ctx, "Bob")
	require.NoError(t, err)

	// Store-assigned ids are strictly increasing.
	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, int64(2), bob.ID)

	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, alice, customers[0])
	assert.Equal(t, bob, customers[1])

	exists, err := repo.CustomerExists(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CustomerExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertCustomerRejectsBlankName(t *testing.T) {
	repo := openTestRepo(t)
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := repo.InsertCustomer(context.Background(), name)
		assert.ErrorIs(t, err, core.ErrEmptyName, "name %q", name)
	}

	customers, err := repo.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestInsertTransactionValidation(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.InsertIncome(ctx, 1, 0, "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = repo.InsertExpense(ctx, 1, -5, "")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = repo.InsertIncome(ctx, 0, 10, "")
	assert.ErrorIs(t, err, core.ErrInvalidCustomerID)

	n, err := repo.CountTransactions(ctx, core.KindIncome)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSummarizeZeroTransactions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c, err := repo.InsertCustomer(ctx, "Carol")
	require.NoError(t, err)

	summary, err := repo.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, core.SummaryRow{CustomerID: c.ID, Name: "Carol"}, summary[0])
}

func TestSummarizeBalances(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	alice, err := repo.InsertCustomer(ctx, "Alice")
	require.NoError(t, err)
	bob, err := repo.InsertCustomer(ctx, "Bob")
	require.NoError(t, err)

	// Several rows per table: the sums must stay independent even when a
	// customer has both income and expenses (the join-inflation trap).
	for _, amount := range []float64{1000, 250.5} {
		_, err = repo.InsertIncome(ctx, alice.ID, amount, "salary")
		require.NoError(t, err)
	}
	for _, amount := range []float64{200, 99.5} {
		_, err = repo.InsertExpense(ctx, alice.ID, amount, "rent")
		require.NoError(t, err)
	}
	_, err = repo.InsertExpense(ctx, bob.ID, 40, "")
	require.NoError(t, err)

	summary, err := repo.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	// Ordered by ascending name.
	assert.Equal(t, "Alice", summary[0].Name)
	assert.Equal(t, "Bob", summary[1].Name)

	assert.Equal(t, 1250.5, summary[0].TotalIncome)
	assert.Equal(t, 299.5, summary[0].TotalExpense)
	assert.Equal(t, 951.0, summary[0].Balance)

	assert.Equal(t, 0.0, summary[1].TotalIncome)
	assert.Equal(t, 40.0, summary[1].TotalExpense)
	assert.Equal(t, -40.0, summary[1].Balance)
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	c, err := repo.InsertCustomer(ctx, "Dave")
	require.NoError(t, err)

	tx, err := repo.InsertExpense(ctx, c.ID, 12.34, "groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, core.KindExpense, tx.Kind)
	assert.Equal(t, 12.34, tx.Amount)
	assert.Equal(t, "groceries", tx.Description)
	assert.False(t, tx.RecordedAt.IsZero())

	n, err := repo.CountTransactions(ctx, core.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCredentials(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	n, err := repo.CredentialCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, found, err := repo.CredentialHash(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.InsertCredential(ctx, "admin", "digest"))

	hash, found, err := repo.CredentialHash(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "digest", hash)

	// Username is unique.
	err = repo.InsertCredential(ctx, "admin", "other")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrEmptyName))
}
