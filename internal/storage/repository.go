package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/niyodushima/finance-dashboard/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the single store-facing component: customers, the two
// append-only transaction tables, credentials, and the summary aggregation.
//
// It holds one long-lived *sql.DB; database/sql checks a connection out of
// the pool for exactly the duration of each operation and returns it on every
// exit path, so no caller ever manages a connection by hand.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath and runs the
// schema migrations.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertCustomer creates a customer and returns it with its assigned id.
// A blank name is rejected before touching the store.
func (r *Repository) InsertCustomer(ctx context.Context, name string) (core.Customer, error) {
	name = strings.TrimSpace(name)
	c := core.Customer{Name: name}
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO customers (name) VALUES (?)`, name)
	if err != nil {
		return core.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Customer{}, fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id

	slog.InfoContext(ctx, "Customer recorded", "customer_id", c.ID, "name", c.Name)
	return c, nil
}

// CustomerExists reports whether a customer row with the given id exists.
// The schema declares the foreign key but SQLite does not enforce it by
// default, so this check is load-bearing for referential validity.
func (r *Repository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count customers: %w", err)
	}
	return n > 0, nil
}

// ListCustomers returns all customers ordered by ascending id.
func (r *Repository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM customers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// InsertIncome appends one income row. The caller must already have verified
// that the customer exists and the amount is positive.
func (r *Repository) InsertIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return r.insertTransaction(ctx, core.KindIncome, customerID, amount, description)
}

// InsertExpense appends one expense row under the same contract as InsertIncome.
func (r *Repository) InsertExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error) {
	return r.insertTransaction(ctx, core.KindExpense, customerID, amount, description)
}

func (r *Repository) insertTransaction(ctx context.Context, kind core.TransactionKind, customerID int64, amount float64, description string) (core.Transaction, error) {
	tx := core.Transaction{
		CustomerID:  customerID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	table, err := transactionTable(kind)
	if err != nil {
		return core.Transaction{}, err
	}

	desc := sql.NullString{String: description, Valid: description != ""}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (customer_id, amount, description) VALUES (?, ?, ?)`,
		customerID, amount, desc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	tx.ID = id

	var recordedAt string
	err = r.db.QueryRowContext(ctx,
		`SELECT recorded_at FROM `+table+` WHERE id = ?`, id).Scan(&recordedAt)
	if err != nil {
		// The row is committed; a failed read-back only loses the timestamp.
		slog.WarnContext(ctx, "Failed to read back recorded_at", "kind", kind, "id", id, "error", err)
	} else if ts, perr := time.Parse("2006-01-02 15:04:05", recordedAt); perr == nil {
		tx.RecordedAt = ts.UTC()
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"kind", kind,
		"id", tx.ID,
		"customer_id", customerID,
		"amount", amount)
	return tx, nil
}

func transactionTable(kind core.TransactionKind) (string, error) {
	switch kind {
	case core.KindIncome:
		return "income", nil
	case core.KindExpense:
		return "expenses", nil
	default:
		return "", errors.New("unknown transaction kind")
	}
}

// Summarize computes total income, total expense, and balance for every
// customer, ordered by ascending name. Customers without transactions yield
// zero sums rather than being absent, which is why the sums come from
// correlated subqueries: a double LEFT JOIN would both drop no-transaction
// semantics and inflate sums by the cross product of matching rows.
func (r *Repository) Summarize(ctx context.Context) ([]core.SummaryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       IFNULL((SELECT SUM(amount) FROM income   WHERE customer_id = c.id), 0) AS total_income,
		       IFNULL((SELECT SUM(amount) FROM expenses WHERE customer_id = c.id), 0) AS total_expense
		FROM customers c
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	var summary []core.SummaryRow
	for rows.Next() {
		var row core.SummaryRow
		if err := rows.Scan(&row.CustomerID, &row.Name, &row.TotalIncome, &row.TotalExpense); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		row.Balance = row.TotalIncome - row.TotalExpense
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

// CredentialCount returns the number of stored credential pairs.
func (r *Repository) CredentialCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}

// CredentialHash returns the stored password digest for a username. A missing
// user is reported as found=false, not as an error.
func (r *Repository) CredentialHash(ctx context.Context, username string) (hash string, found bool, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM credentials WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get credential: %w", err)
	}
	return hash, true, nil
}

// InsertCredential stores a username with an already-hashed password.
func (r *Repository) InsertCredential(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// CountTransactions returns the number of rows of the given kind, used by
// tests and the export worker's startup log.
func (r *Repository) CountTransactions(ctx context.Context, kind core.TransactionKind) (int64, error) {
	table, err := transactionTable(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}
