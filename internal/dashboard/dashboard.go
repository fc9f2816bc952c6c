// Package dashboard implements the interactive console front end to the
// ledger: a login prompt followed by a numbered menu.
package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

// LedgerWriter mirrors the write operations exposed in the menu.
type LedgerWriter interface {
	CreateCustomer(ctx context.Context, name string) (core.Customer, error)
	RecordIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
	RecordExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
}

// LedgerReader mirrors the read operations exposed in the menu.
type LedgerReader interface {
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	Summarize(ctx context.Context) ([]core.SummaryRow, error)
}

// CredentialVerifier gates the menu behind a login prompt.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

const maxLoginAttempts = 3

// Dashboard drives a line-oriented session over in/out.
type Dashboard struct {
	in  *bufio.Reader
	out io.Writer

	writer   LedgerWriter
	reader   LedgerReader
	verifier CredentialVerifier

	// readPassword is a test seam for term.ReadPassword. When in is not a
	// terminal the password is read as a plain line instead.
	readPassword func() ([]byte, error)
}

func New(in io.Reader, out io.Writer, writer LedgerWriter, reader LedgerReader, verifier CredentialVerifier) *Dashboard {
	d := &Dashboard{
		in:       bufio.NewReader(in),
		out:      out,
		writer:   writer,
		reader:   reader,
		verifier: verifier,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		d.readPassword = func() ([]byte, error) {
			defer fmt.Fprintln(out)
			return term.ReadPassword(fd)
		}
	} else {
		d.readPassword = func() ([]byte, error) {
			line, err := d.readLine()
			return []byte(line), err
		}
	}
	return d
}

// Run prompts for credentials and then serves the menu until the user
// exits or input ends.
func (d *Dashboard) Run(ctx context.Context) error {
	if err := d.login(ctx); err != nil {
		return err
	}
	return d.menu(ctx)
}

func (d *Dashboard) login(ctx context.Context) error {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		fmt.Fprint(d.out, "Username: ")
		username, err := d.readLine()
		if err != nil {
			return err
		}

		fmt.Fprint(d.out, "Password: ")
		password, err := d.readPassword()
		if err != nil {
			return err
		}

		ok, err := d.verifier.Verify(ctx, strings.TrimSpace(username), string(password))
		if err != nil {
			return fmt.Errorf("verify credentials: %w", err)
		}
		if ok {
			fmt.Fprintln(d.out, "Login successful.")
			return nil
		}
		fmt.Fprintln(d.out, "Invalid username or password.")
	}
	return errors.New("too many failed login attempts")
}

func (d *Dashboard) menu(ctx context.Context) error {
	for {
		fmt.Fprint(d.out, "\n1) Add customer\n2) Record income\n3) Record expense\n4) List customers\n5) Summary\n0) Exit\n> ")

		choice, err := d.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = d.addCustomer(ctx)
		case "2":
			err = d.recordTransaction(ctx, core.KindIncome)
		case "3":
			err = d.recordTransaction(ctx, core.KindExpense)
		case "4":
			err = d.listCustomers(ctx)
		case "5":
			err = d.showSummary(ctx)
		case "0":
			fmt.Fprintln(d.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(d.out, "Unknown option.")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (d *Dashboard) addCustomer(ctx context.Context) error {
	fmt.Fprint(d.out, "Customer name: ")
	name, err := d.readLine()
	if err != nil {
		return err
	}

	customer, err := d.writer.CreateCustomer(ctx, name)
	if err != nil {
		if errors.Is(err, core.ErrEmptyName) {
			fmt.Fprintln(d.out, "Name is required.")
			return nil
		}
		return err
	}
	fmt.Fprintf(d.out, "Created customer #%d %s\n", customer.ID, customer.Name)
	return nil
}

func (d *Dashboard) recordTransaction(ctx context.Context, kind core.TransactionKind) error {
	fmt.Fprint(d.out, "Customer id: ")
	rawID, err := d.readLine()
	if err != nil {
		return err
	}
	customerID, err := core.ParseCustomerID(strings.TrimSpace(rawID))
	if err != nil {
		fmt.Fprintln(d.out, "Invalid customer id.")
		return nil
	}

	fmt.Fprint(d.out, "Amount: ")
	rawAmount, err := d.readLine()
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		fmt.Fprintln(d.out, "Invalid amount.")
		return nil
	}

	fmt.Fprint(d.out, "Description (optional): ")
	description, err := d.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	var tx core.Transaction
	switch kind {
	case core.KindIncome:
		tx, err = d.writer.RecordIncome(ctx, customerID, amount, strings.TrimSpace(description))
	default:
		tx, err = d.writer.RecordExpense(ctx, customerID, amount, strings.TrimSpace(description))
	}
	if err != nil {
		if errors.Is(err, core.ErrCustomerNotFound) {
			fmt.Fprintln(d.out, "Customer not found.")
			return nil
		}
		return err
	}
	fmt.Fprintf(d.out, "Recorded %s #%d of %s for customer #%d\n",
		tx.Kind, tx.ID, core.FormatAmount(tx.Amount), tx.CustomerID)
	return nil
}

func (d *Dashboard) listCustomers(ctx context.Context) error {
	customers, err := d.reader.ListCustomers(ctx)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		fmt.Fprintln(d.out, "No customers yet.")
		return nil
	}
	for _, c := range customers {
		fmt.Fprintf(d.out, "%4d  %s\n", c.ID, c.Name)
	}
	return nil
}

func (d *Dashboard) showSummary(ctx context.Context) error {
	summary, err := d.reader.Summarize(ctx)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		fmt.Fprintln(d.out, "No customers yet.")
		return nil
	}
	fmt.Fprintf(d.out, "%-4s  %-20s  %12s  %12s  %12s\n", "ID", "Name", "Income", "Expense", "Balance")
	for _, row := range summary {
		fmt.Fprintf(d.out, "%-4d  %-20s  %12s  %12s  %12s\n",
			row.CustomerID, row.Name,
			core.FormatAmount(row.TotalIncome),
			core.FormatAmount(row.TotalExpense),
			core.FormatAmount(row.Balance))
	}
	return nil
}

// readLine reads one line, trimming the trailing newline. A partial line
// followed by EOF is returned without error.
func (d *Dashboard) readLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
