package reporting

import (
	"fmt"
	"strings"

	"pairslab/internal/domain"
)

// RenderCandidatesCSV renders scan candidates as CSV string.
func RenderCandidatesCSV(candidates []domain.PairCandidate) string {
	var sb strings.Builder

	// Header
	sb.WriteString("ticker_1,ticker_2,p_value,hedge_ratio,half_life,last_z_score\n")

	// Rows
	for _, c := range candidates {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.4f,%.4f\n",
			c.Ticker1,
			c.Ticker2,
			c.PValue,
			c.HedgeRatio,
			c.HalfLife,
			c.LastZScore,
		))
	}

	return sb.String()
}

// RenderGridCSV renders a sensitivity grid as CSV string.
func RenderGridCSV(points []domain.SensitivityPoint) string {
	var sb strings.Builder

	sb.WriteString("entry_z,exit_z,sharpe_ratio,total_return,win_rate,trades\n")

	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%.4f,%.4f,%.6f,%.6f,%.6f,%d\n",
			p.EntryZ,
			p.ExitZ,
			p.SharpeRatio,
			p.TotalReturn,
			p.WinRate,
			p.Trades,
		))
	}

	return sb.String()
}
