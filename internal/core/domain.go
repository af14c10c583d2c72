package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Withdrawal TransactionType = "withdrawal"
	Deposit    TransactionType = "deposit"
	Transfer   TransactionType = "transfer"
)

type (
	TransactionType string

	// Transaction is a single journal split fetched from the upstream API.
	// Amount carries the absolute magnitude; Type tells the direction.
	// Values are immutable once fetched.
	Transaction struct {
		JournalID   string
		Type        TransactionType
		BookedAt    time.Time
		Amount      decimal.Decimal
		Currency    string
		Category    string
		Source      string
		Destination string
		Description string
	}
)

var ErrInvalidTransactionType = errors.New("invalid transaction type")

// TransactionTypes returns all transaction types in canonical order.
func TransactionTypes() []TransactionType {
	return []TransactionType{Withdrawal, Deposit, Transfer}
}

func (t TransactionType) Validate() error {
	switch t {
	case Withdrawal, Deposit, Transfer:
		return nil
	}
	return ErrInvalidTransactionType
}

func (t TransactionType) String() string {
	return string(t)
}
