package amqp

import (
	"encoding/json"
	"time"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

// TransactionRecordedMessage notifies downstream consumers that one ledger
// row was appended. It carries enough to log and to decide whether a summary
// refresh is due; consumers re-read aggregates from the store.
type TransactionRecordedMessage struct {
	Kind       core.TransactionKind `json:"kind"`
	ID         int64                `json:"id"`
	CustomerID int64                `json:"customer_id"`
	Amount     float64              `json:"amount"`
	Timestamp  time.Time            `json:"timestamp"`
}

func NewTransactionRecorded(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Kind:       tx.Kind,
		ID:         tx.ID,
		CustomerID: tx.CustomerID,
		Amount:     tx.Amount,
		Timestamp:  time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
