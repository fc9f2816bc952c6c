package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/niyodushima/finance-dashboard/internal/codec"
	"github.com/niyodushima/finance-dashboard/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB is far beyond any legitimate form body

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, codec.Object(codec.M("status", codec.String("ok"))))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if !form.Has("username") || !form.Has("password") {
		writeJSON(w, http.StatusBadRequest, errorBody("username and password are required"))
		return
	}

	ok, err := s.verifier.Verify(r.Context(), form.Get("username"), form.Get("password"))
	if err != nil {
		s.internalError(w, r, "verify credential", err)
		return
	}

	// A bad pair is a normal result, not an error.
	writeJSON(w, http.StatusOK, codec.Object(codec.M("success", codec.Bool(ok))))
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.reader.ListCustomers(r.Context())
	if err != nil {
		s.internalError(w, r, "list customers", err)
		return
	}

	elems := make([]string, len(customers))
	for i, c := range customers {
		elems[i] = customerJSON(c)
	}
	writeJSON(w, http.StatusOK, s.envelope("customers", codec.Array(elems...)))
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	customer, err := s.writer.CreateCustomer(r.Context(), form.Get("name"))
	if errors.Is(err, core.ErrEmptyName) {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err != nil {
		s.internalError(w, r, "create customer", err)
		return
	}

	writeJSON(w, http.StatusOK, customerJSON(customer))
}

func (s *Server) handleRecordIncome(w http.ResponseWriter, r *http.Request) {
	s.handleRecordTransaction(w, r, core.KindIncome)
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	s.handleRecordTransaction(w, r, core.KindExpense)
}

// handleRecordTransaction validates the request fully before any store
// mutation: bad input is a 400 and an unknown customer a 404, in both cases
// without an appended row.
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) {
	form, err := readForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	customerID, err := core.ParseCustomerID(form.Get("customerId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid customer id"))
		return
	}
	amount, err := core.ParseAmount(form.Get("amount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid amount"))
		return
	}
	description := form.Get("description")

	var tx core.Transaction
	if kind == core.KindIncome {
		tx, err = s.writer.RecordIncome(r.Context(), customerID, amount, description)
	} else {
		tx, err = s.writer.RecordExpense(r.Context(), customerID, amount, description)
	}
	if errors.Is(err, core.ErrCustomerNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("customer not found"))
		return
	}
	if err != nil {
		s.internalError(w, r, "record "+string(kind), err)
		return
	}

	writeJSON(w, http.StatusOK, codec.Object(
		codec.M("id", codec.Int(tx.ID)),
		codec.M("kind", codec.String(string(tx.Kind))),
		codec.M("customerId", codec.Int(tx.CustomerID)),
		codec.M("amount", codec.Number(tx.Amount)),
	))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reader.Summarize(r.Context())
	if err != nil {
		s.internalError(w, r, "summarize", err)
		return
	}

	elems := make([]string, len(summary))
	for i, row := range summary {
		elems[i] = codec.Object(
			codec.M("id", codec.Int(row.CustomerID)),
			codec.M("name", codec.String(row.Name)),
			codec.M("income", codec.Number(row.TotalIncome)),
			codec.M("expense", codec.Number(row.TotalExpense)),
			codec.M("balance", codec.Number(row.Balance)),
		)
	}
	writeJSON(w, http.StatusOK, s.envelope("summary", codec.Array(elems...)))
}

// envelope wraps a list body as {"key":[...]} or returns it bare, per the
// RESPONSE_ENVELOPE flag.
func (s *Server) envelope(key, arrayBody string) string {
	if !s.wrapped {
		return arrayBody
	}
	return codec.Object(codec.M(key, arrayBody))
}

// internalError logs the fault with its cause and answers with a generic
// body; internal error text never reaches the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "Request failed",
		"error", err,
		"operation", op,
		"method", r.Method,
		"url", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
}

func customerJSON(c core.Customer) string {
	return codec.Object(
		codec.M("id", codec.Int(c.ID)),
		codec.M("name", codec.String(c.Name)),
	)
}

func readForm(r *http.Request) (codec.Form, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return codec.ParseForm(string(body)), nil
}
