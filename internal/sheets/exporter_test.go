package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

func TestSummaryValuesIncludesHeader(t *testing.T) {
	values := summaryValues(nil)

	assert.Len(t, values, 1)
	assert.Equal(t, []any{"ID", "Name", "Income", "Expense", "Balance"}, values[0])
}

func TestSummaryValuesRowLayout(t *testing.T) {
	summary := []core.SummaryRow{
		{CustomerID: 1, Name: "Alice", TotalIncome: 1000, TotalExpense: 200, Balance: 800},
		{CustomerID: 2, Name: "Bob", TotalIncome: 0, TotalExpense: 49.5, Balance: -49.5},
	}

	values := summaryValues(summary)

	assert.Len(t, values, 3)
	assert.Equal(t, []any{int64(1), "Alice", float64(1000), float64(200), float64(800)}, values[1])
	assert.Equal(t, []any{int64(2), "Bob", float64(0), 49.5, -49.5}, values[2])
}
