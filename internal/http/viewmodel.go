package http

import (
	"encoding/json"
	"fmt"
	"html/template"

	"fireview/internal/core"
)

// Presentation shapes. Nothing here aggregates; it only reformats the
// computed Report for the template and the JSON endpoint.

type rankingRow struct {
	Label  string
	Amount string
}

type dashboardView struct {
	Start      string
	End        string
	MonthCount int

	TotalWithdrawal string
	TotalDeposit    string
	TotalTransfer   string
	TotalNet        string

	AverageWithdrawal string
	AverageDeposit    string
	AverageNet        string

	TopSpendingCategories  []rankingRow
	TopIncomeCategories    []rankingRow
	TopSourceAccounts      []rankingRow
	TopDestinationAccounts []rankingRow
	TopTransferAccounts    []rankingRow

	// ChartJSON feeds the client-side chart rendering; the series use
	// floats because that is all the chart needs for drawing.
	ChartJSON template.JS

	LastUpdated     string
	CacheTTLMinutes int
	Refreshed       bool
}

type chartData struct {
	Labels      []string  `json:"labels"`
	Withdrawals []float64 `json:"withdrawals"`
	Deposits    []float64 `json:"deposits"`
	Transfers   []float64 `json:"transfers"`
	Net         []float64 `json:"net"`
}

func buildDashboardView(rep *core.Report, ttlMinutes int, refreshed bool) (*dashboardView, error) {
	chart := chartData{
		Labels:      make([]string, 0, len(rep.Months)),
		Withdrawals: make([]float64, 0, len(rep.Months)),
		Deposits:    make([]float64, 0, len(rep.Months)),
		Transfers:   make([]float64, 0, len(rep.Months)),
		Net:         make([]float64, 0, len(rep.Months)),
	}
	for _, p := range rep.Months {
		chart.Labels = append(chart.Labels, p.Label())
		chart.Withdrawals = append(chart.Withdrawals, p.Withdrawal.InexactFloat64())
		chart.Deposits = append(chart.Deposits, p.Deposit.InexactFloat64())
		chart.Transfers = append(chart.Transfers, p.Transfer.InexactFloat64())
		chart.Net = append(chart.Net, p.Net.InexactFloat64())
	}
	chartJSON, err := json.Marshal(chart)
	if err != nil {
		return nil, fmt.Errorf("marshal chart data: %w", err)
	}

	return &dashboardView{
		Start:      rep.Window.Start.Format("2006-01-02"),
		End:        rep.Window.End.Format("2006-01-02"),
		MonthCount: len(rep.Months),

		TotalWithdrawal: rep.Totals.Withdrawal.StringFixed(2),
		TotalDeposit:    rep.Totals.Deposit.StringFixed(2),
		TotalTransfer:   rep.Totals.Transfer.StringFixed(2),
		TotalNet:        rep.Totals.Net.StringFixed(2),

		AverageWithdrawal: rep.AverageWithdrawal.StringFixed(2),
		AverageDeposit:    rep.AverageDeposit.StringFixed(2),
		AverageNet:        rep.AverageNet.StringFixed(2),

		TopSpendingCategories:  rankingRows(rep.TopSpendingCategories),
		TopIncomeCategories:    rankingRows(rep.TopIncomeCategories),
		TopSourceAccounts:      rankingRows(rep.TopSourceAccounts),
		TopDestinationAccounts: rankingRows(rep.TopDestinationAccounts),
		TopTransferAccounts:    rankingRows(rep.TopTransferAccounts),

		ChartJSON: template.JS(chartJSON),

		LastUpdated:     rep.GeneratedAt.Format("2006-01-02 15:04 UTC"),
		CacheTTLMinutes: ttlMinutes,
		Refreshed:       refreshed,
	}, nil
}

func rankingRows(entries []core.RankingEntry) []rankingRow {
	rows := make([]rankingRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, rankingRow{Label: e.Label, Amount: e.Amount.StringFixed(2)})
	}
	return rows
}

// apiReport is the JSON shape served by /api/report. Amounts stay as decimal
// strings to avoid the float rounding the chart view accepts.
type apiReport struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	MonthCount int             `json:"month_count"`
	Months     []apiMonthPoint `json:"months"`

	Totals map[string]string `json:"totals"`

	AverageWithdrawal string `json:"average_withdrawal"`
	AverageDeposit    string `json:"average_deposit"`
	AverageNet        string `json:"average_net"`

	TopSpendingCategories  []apiRankingEntry `json:"top_spending_categories"`
	TopIncomeCategories    []apiRankingEntry `json:"top_income_categories"`
	TopSourceAccounts      []apiRankingEntry `json:"top_source_accounts"`
	TopDestinationAccounts []apiRankingEntry `json:"top_destination_accounts"`
	TopTransferAccounts    []apiRankingEntry `json:"top_transfer_accounts"`

	GeneratedAt string `json:"generated_at"`
}

type apiMonthPoint struct {
	Month      string `json:"month"`
	Withdrawal string `json:"withdrawal"`
	Deposit    string `json:"deposit"`
	Transfer   string `json:"transfer"`
	Net        string `json:"net"`
}

type apiRankingEntry struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

func buildAPIReport(rep *core.Report) *apiReport {
	months := make([]apiMonthPoint, 0, len(rep.Months))
	for _, p := range rep.Months {
		months = append(months, apiMonthPoint{
			Month:      p.Label(),
			Withdrawal: p.Withdrawal.String(),
			Deposit:    p.Deposit.String(),
			Transfer:   p.Transfer.String(),
			Net:        p.Net.String(),
		})
	}
	return &apiReport{
		Start:      rep.Window.Start.Format("2006-01-02"),
		End:        rep.Window.End.Format("2006-01-02"),
		MonthCount: len(rep.Months),
		Months:     months,
		Totals: map[string]string{
			"withdrawal": rep.Totals.Withdrawal.String(),
			"deposit":    rep.Totals.Deposit.String(),
			"transfer":   rep.Totals.Transfer.String(),
			"net":        rep.Totals.Net.String(),
		},
		AverageWithdrawal:      rep.AverageWithdrawal.String(),
		AverageDeposit:         rep.AverageDeposit.String(),
		AverageNet:             rep.AverageNet.String(),
		TopSpendingCategories:  apiRankings(rep.TopSpendingCategories),
		TopIncomeCategories:    apiRankings(rep.TopIncomeCategories),
		TopSourceAccounts:      apiRankings(rep.TopSourceAccounts),
		TopDestinationAccounts: apiRankings(rep.TopDestinationAccounts),
		TopTransferAccounts:    apiRankings(rep.TopTransferAccounts),
		GeneratedAt:            rep.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func apiRankings(entries []core.RankingEntry) []apiRankingEntry {
	out := make([]apiRankingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, apiRankingEntry{Label: e.Label, Amount: e.Amount.String()})
	}
	return out
}
