package dashboard

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niyodushima/finance-dashboard/internal/auth"
	"github.com/niyodushima/finance-dashboard/internal/services"
	"github.com/niyodushima/finance-dashboard/internal/storage"
)

func newTestDashboard(t *testing.T, input string) (*Dashboard, *bytes.Buffer) {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	verifier := auth.NewVerifier(repo)
	require.NoError(t, verifier.Seed(context.Background()))

	ledger := services.NewLedgerService(repo, nil)

	var out bytes.Buffer
	return New(strings.NewReader(input), &out, ledger, repo, verifier), &out
}

func TestDashboardSession(t *testing.T) {
	input := strings.Join([]string{
		"admin",
		"Admin@123",
		"1", "Alice",
		"2", "1", "1000", "salary",
		"3", "1", "200", "groceries",
		"4",
		"5",
		"0",
	}, "\n") + "\n"

	d, out := newTestDashboard(t, input)
	err := d.Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Login successful.")
	assert.Contains(t, text, "Created customer #1 Alice")
	assert.Contains(t, text, "Recorded income #1 of 1000 for customer #1")
	assert.Contains(t, text, "Recorded expense #1 of 200 for customer #1")
	assert.Contains(t, text, "Alice")
	assert.Contains(t, text, "800")
	assert.Contains(t, text, "Bye.")
}

func TestDashboardRejectsBadCredentials(t *testing.T) {
	input := strings.Repeat("admin\nwrong\n", 3)

	d, out := newTestDashboard(t, input)
	err := d.Run(context.Background())

	assert.EqualError(t, err, "too many failed login attempts")
	assert.Contains(t, out.String(), "Invalid username or password.")
}

func TestDashboardValidatesMenuInput(t *testing.T) {
	input := strings.Join([]string{
		"admin",
		"Admin@123",
		"9",                // unknown option
		"2", "x",           // bad customer id aborts the prompt
		"2", "1", "-5",     // negative amount aborts before the description prompt
		"3", "7", "10", "", // valid input but unknown customer
		"0",
	}, "\n") + "\n"

	d, out := newTestDashboard(t, input)
	err := d.Run(context.Background())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Unknown option.")
	assert.Contains(t, text, "Invalid customer id.")
	assert.Contains(t, text, "Invalid amount.")
	assert.Contains(t, text, "Customer not found.")
}
