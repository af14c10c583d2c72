package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// MonthPoint accumulates the summed amounts of one calendar month.
	// Net is deposits minus withdrawals; transfers shuffle money between
	// own accounts and stay out of it.
	MonthPoint struct {
		Year       int
		Month      time.Month
		Withdrawal decimal.Decimal
		Deposit    decimal.Decimal
		Transfer   decimal.Decimal
		Net        decimal.Decimal
	}

	// RankingEntry is one label of a top-N ranking with its summed amount.
	RankingEntry struct {
		Label  string
		Amount decimal.Decimal
	}

	// Totals sums each transaction type across the whole window.
	Totals struct {
		Withdrawal decimal.Decimal
		Deposit    decimal.Decimal
		Transfer   decimal.Decimal
		Net        decimal.Decimal
	}

	// Report is the complete aggregate for one reporting window: the unit
	// stored in the cache and handed to presentation.
	Report struct {
		Window Window

		// Months is gap-free and chronological, one point per calendar
		// month of the window, zero-valued months included.
		Months []MonthPoint

		Totals Totals

		// Monthly averages over the window's month count.
		AverageWithdrawal decimal.Decimal
		AverageDeposit    decimal.Decimal
		AverageNet        decimal.Decimal

		TopSpendingCategories  []RankingEntry
		TopIncomeCategories    []RankingEntry
		TopSourceAccounts      []RankingEntry
		TopDestinationAccounts []RankingEntry
		TopTransferAccounts    []RankingEntry

		GeneratedAt time.Time
	}
)

// Label renders the point's month as "2006-01", the chart axis format.
func (p MonthPoint) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
