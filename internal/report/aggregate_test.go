package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fireview/internal/core"
)

func window(t *testing.T, start, end time.Time) core.Window {
	t.Helper()
	w, err := core.NewWindow(start, end)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return w
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(txType core.TransactionType, bookedAt time.Time, amount, category, source, destination string) core.Transaction {
	return core.Transaction{
		JournalID:   "j",
		Type:        txType,
		BookedAt:    bookedAt,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "EUR",
		Category:    category,
		Source:      source,
		Destination: destination,
	}
}

func TestAggregateMonthSeriesIsGapFree(t *testing.T) {
	w := window(t, date(2024, time.January, 1), date(2024, time.April, 30))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 10), "100", "Groceries", "Checking", "Grocer"),
		// February and March have no activity at all.
		tx(core.Withdrawal, date(2024, time.April, 5), "40", "Groceries", "Checking", "Grocer"),
	}

	rep := Aggregate(withdrawals, nil, nil, w, 5)

	if len(rep.Months) != 4 {
		t.Fatalf("got %d month points, want 4", len(rep.Months))
	}
	wantLabels := []string{"2024-01", "2024-02", "2024-03", "2024-04"}
	for i, want := range wantLabels {
		if got := rep.Months[i].Label(); got != want {
			t.Errorf("month[%d] = %s, want %s", i, got, want)
		}
	}
	if !rep.Months[1].Withdrawal.IsZero() || !rep.Months[2].Withdrawal.IsZero() {
		t.Error("empty months should carry zero totals")
	}
	if got := rep.Months[0].Withdrawal.String(); got != "100" {
		t.Errorf("january withdrawal = %s, want 100", got)
	}
}

func TestAggregateNetExcludesTransfers(t *testing.T) {
	w := window(t, date(2024, time.March, 1), date(2024, time.March, 31))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.March, 5), "300", "Rent", "Checking", "Landlord"),
	}
	deposits := []core.Transaction{
		tx(core.Deposit, date(2024, time.March, 1), "1000", "Salary", "Employer", "Checking"),
	}
	transfers := []core.Transaction{
		tx(core.Transfer, date(2024, time.March, 10), "200", "Uncategorized", "Checking", "Savings"),
	}

	rep := Aggregate(withdrawals, deposits, transfers, w, 5)

	if got := rep.Totals.Net.String(); got != "700" {
		t.Errorf("net = %s, want 700 (transfers excluded)", got)
	}
	if got := rep.Months[0].Net.String(); got != "700" {
		t.Errorf("march net = %s, want 700", got)
	}
	if got := rep.Totals.Transfer.String(); got != "200" {
		t.Errorf("transfer total = %s, want 200", got)
	}
}

func TestAggregateAverages(t *testing.T) {
	w := window(t, date(2024, time.January, 1), date(2024, time.February, 29))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 10), "30", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.February, 10), "70", "Groceries", "Checking", "Grocer"),
	}
	deposits := []core.Transaction{
		tx(core.Deposit, date(2024, time.January, 1), "500", "Salary", "Employer", "Checking"),
	}

	rep := Aggregate(withdrawals, deposits, nil, w, 5)

	if got := rep.AverageWithdrawal.String(); got != "50" {
		t.Errorf("average withdrawal = %s, want 50", got)
	}
	if got := rep.AverageDeposit.String(); got != "250" {
		t.Errorf("average deposit = %s, want 250", got)
	}
	if got := rep.AverageNet.String(); got != "200" {
		t.Errorf("average net = %s, want 200", got)
	}
}

func TestAggregateDropsOutOfWindowRecords(t *testing.T) {
	w := window(t, date(2024, time.February, 1), date(2024, time.February, 29))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 31), "999", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.February, 1), "25", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.March, 1), "999", "Groceries", "Checking", "Grocer"),
	}

	rep := Aggregate(withdrawals, nil, nil, w, 5)

	if got := rep.Totals.Withdrawal.String(); got != "25" {
		t.Errorf("withdrawal total = %s, want 25 (boundary extras dropped)", got)
	}
	if len(rep.TopSpendingCategories) != 1 {
		t.Fatalf("got %d ranking entries, want 1", len(rep.TopSpendingCategories))
	}
	if got := rep.TopSpendingCategories[0].Amount.String(); got != "25" {
		t.Errorf("ranking amount = %s, want 25", got)
	}
}

func TestAggregateRankings(t *testing.T) {
	w := window(t, date(2024, time.January, 1), date(2024, time.January, 31))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 2), "60", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.January, 3), "40", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.January, 4), "80", "Rent", "Checking", "Landlord"),
		tx(core.Withdrawal, date(2024, time.January, 5), "30", "Transport", "Credit card", "Rail"),
	}
	deposits := []core.Transaction{
		tx(core.Deposit, date(2024, time.January, 1), "500", "Salary", "Employer", "Checking"),
	}

	rep := Aggregate(withdrawals, deposits, nil, w, 2)

	wantSpending := []core.RankingEntry{
		{Label: "Groceries", Amount: decimal.RequireFromString("100")},
		{Label: "Rent", Amount: decimal.RequireFromString("80")},
	}
	if len(rep.TopSpendingCategories) != 2 {
		t.Fatalf("got %d spending entries, want 2", len(rep.TopSpendingCategories))
	}
	for i, want := range wantSpending {
		got := rep.TopSpendingCategories[i]
		if got.Label != want.Label || !got.Amount.Equal(want.Amount) {
			t.Errorf("spending[%d] = %s/%s, want %s/%s", i, got.Label, got.Amount, want.Label, want.Amount)
		}
	}

	if len(rep.TopSourceAccounts) != 2 {
		t.Fatalf("got %d source entries, want 2", len(rep.TopSourceAccounts))
	}
	if rep.TopSourceAccounts[0].Label != "Checking" {
		t.Errorf("top source = %s, want Checking", rep.TopSourceAccounts[0].Label)
	}
	if rep.TopIncomeCategories[0].Label != "Salary" {
		t.Errorf("top income category = %s, want Salary", rep.TopIncomeCategories[0].Label)
	}
	if rep.TopDestinationAccounts[0].Label != "Checking" {
		t.Errorf("top destination = %s, want Checking", rep.TopDestinationAccounts[0].Label)
	}
}

func TestRankTopNTieBreakKeepsFirstSeenOrder(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 2), "100", "Alpha", "Checking", "X"),
		tx(core.Withdrawal, date(2024, time.January, 3), "100", "Beta", "Checking", "X"),
		tx(core.Withdrawal, date(2024, time.January, 4), "50", "Gamma", "Checking", "X"),
	}

	got := rankTopN(txs, byCategory, 2)

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Label != "Alpha" || got[1].Label != "Beta" {
		t.Errorf("tie break order = [%s %s], want [Alpha Beta]", got[0].Label, got[1].Label)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	w := window(t, date(2024, time.January, 1), date(2024, time.March, 31))

	rep := Aggregate(nil, nil, nil, w, 5)

	if len(rep.Months) != 3 {
		t.Fatalf("got %d month points, want 3", len(rep.Months))
	}
	if !rep.Totals.Withdrawal.IsZero() || !rep.Totals.Net.IsZero() {
		t.Error("empty input should produce zero totals")
	}
	if !rep.AverageNet.IsZero() {
		t.Errorf("average net = %s, want 0", rep.AverageNet)
	}
	if len(rep.TopSpendingCategories) != 0 {
		t.Errorf("got %d ranking entries, want none", len(rep.TopSpendingCategories))
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	w := window(t, date(2024, time.January, 1), date(2024, time.February, 29))
	withdrawals := []core.Transaction{
		tx(core.Withdrawal, date(2024, time.January, 10), "12.34", "Groceries", "Checking", "Grocer"),
		tx(core.Withdrawal, date(2024, time.February, 2), "56.78", "Rent", "Checking", "Landlord"),
	}
	deposits := []core.Transaction{
		tx(core.Deposit, date(2024, time.January, 1), "900", "Salary", "Employer", "Checking"),
	}
	transfers := []core.Transaction{
		tx(core.Transfer, date(2024, time.February, 15), "100", "Uncategorized", "Checking", "Savings"),
	}

	first := Aggregate(withdrawals, deposits, transfers, w, 5)
	second := Aggregate(withdrawals, deposits, transfers, w, 5)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different reports")
	}
}
