// Package report turns raw transactions into the aggregate consumed by the
// dashboard: monthly trend series, top-N rankings, totals and averages.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"fireview/internal/core"
)

// Aggregate reduces the three fetched transaction sets into a Report for the
// window. It is a pure function: no I/O, deterministic for identical inputs,
// and independent of the order the three slices were produced in.
//
// Records dated outside the window are dropped from every bucket and total;
// the upstream API occasionally returns boundary-adjacent extras.
func Aggregate(withdrawals, deposits, transfers []core.Transaction, window core.Window, topN int) *core.Report {
	months := window.MonthStarts()
	index := make(map[string]int, len(months))
	points := make([]core.MonthPoint, len(months))
	for i, m := range months {
		points[i] = core.MonthPoint{
			Year:       m.Year(),
			Month:      m.Month(),
			Withdrawal: decimal.Zero,
			Deposit:    decimal.Zero,
			Transfer:   decimal.Zero,
			Net:        decimal.Zero,
		}
		index[points[i].Label()] = i
	}

	withdrawals = inWindow(withdrawals, window)
	deposits = inWindow(deposits, window)
	transfers = inWindow(transfers, window)

	for _, tx := range withdrawals {
		i := index[monthLabel(tx)]
		points[i].Withdrawal = points[i].Withdrawal.Add(tx.Amount)
	}
	for _, tx := range deposits {
		i := index[monthLabel(tx)]
		points[i].Deposit = points[i].Deposit.Add(tx.Amount)
	}
	for _, tx := range transfers {
		i := index[monthLabel(tx)]
		points[i].Transfer = points[i].Transfer.Add(tx.Amount)
	}
	for i := range points {
		points[i].Net = points[i].Deposit.Sub(points[i].Withdrawal)
	}

	totals := core.Totals{
		Withdrawal: sum(withdrawals),
		Deposit:    sum(deposits),
		Transfer:   sum(transfers),
	}
	totals.Net = totals.Deposit.Sub(totals.Withdrawal)

	monthCount := decimal.NewFromInt(int64(len(months)))

	return &core.Report{
		Window:            window,
		Months:            points,
		Totals:            totals,
		AverageWithdrawal: totals.Withdrawal.Div(monthCount),
		AverageDeposit:    totals.Deposit.Div(monthCount),
		AverageNet:        totals.Net.Div(monthCount),

		TopSpendingCategories:  rankTopN(withdrawals, byCategory, topN),
		TopIncomeCategories:    rankTopN(deposits, byCategory, topN),
		TopSourceAccounts:      rankTopN(withdrawals, bySource, topN),
		TopDestinationAccounts: rankTopN(deposits, byDestination, topN),
		TopTransferAccounts:    rankTopN(transfers, byDestination, topN),
	}
}

func monthLabel(tx core.Transaction) string {
	m := core.MonthStart(tx.BookedAt)
	return core.MonthPoint{Year: m.Year(), Month: m.Month()}.Label()
}

func inWindow(txs []core.Transaction, window core.Window) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if window.Contains(tx.BookedAt) {
			out = append(out, tx)
		}
	}
	return out
}

func sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

func byCategory(tx core.Transaction) string    { return tx.Category }
func bySource(tx core.Transaction) string      { return tx.Source }
func byDestination(tx core.Transaction) string { return tx.Destination }

// rankTopN groups amounts by label, sorts descending by total and truncates
// to n entries. Equal totals keep the order labels were first seen in, which
// makes the ranking deterministic for identical inputs.
func rankTopN(txs []core.Transaction, label func(core.Transaction) string, n int) []core.RankingEntry {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, tx := range txs {
		key := label(tx)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(tx.Amount)
	}

	entries := make([]core.RankingEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, core.RankingEntry{Label: key, Amount: totals[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
