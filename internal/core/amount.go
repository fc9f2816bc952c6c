// Package core holds the ledger domain types and amount handling.
//
// This file parses and formats monetary amounts. Amounts are raw float64
// values end to end; the only guarantees are positivity on input and a
// locale-independent dot decimal separator on output.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a request field into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Anything
// that is not a finite number greater than zero is rejected with
// ErrInvalidAmount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders a float for JSON and console output: always a dot
// separator, the shortest representation that round-trips, no trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseCustomerID converts a request field into a positive customer id.
func ParseCustomerID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCustomerID
	}
	return id, nil
}
