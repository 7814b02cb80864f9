package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Pair Scan Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Scan Summary
	sb.WriteString("## Scan Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Universe Size | %d |\n", r.ScanSummary.UniverseSize))
	sb.WriteString(fmt.Sprintf("| Pairs Tested | %d |\n", r.ScanSummary.PairsTested))
	sb.WriteString(fmt.Sprintf("| Pairs Skipped | %d |\n", r.ScanSummary.PairsSkipped))
	sb.WriteString(fmt.Sprintf("| Significance | %.4f |\n", r.ScanSummary.Significance))
	sb.WriteString(fmt.Sprintf("| Candidates | %d |\n", len(r.Candidates)))
	if r.ScanSummary.Truncated {
		sb.WriteString("| Truncated | yes |\n")
	}
	sb.WriteString("\n")

	// Candidates
	sb.WriteString("## Cointegrated Pairs\n\n")
	if len(r.Candidates) > 0 {
		sb.WriteString("| Pair | P-Value | Hedge Ratio | Half-Life (days) | Last Z |\n")
		sb.WriteString("|------|---------|-------------|------------------|--------|\n")
		for _, c := range r.Candidates {
			sb.WriteString(fmt.Sprintf("| %s/%s | %.4f | %.4f | %.1f | %.2f |\n",
				c.Ticker1, c.Ticker2, c.PValue, c.HedgeRatio, c.HalfLife, c.LastZScore))
		}
	} else {
		sb.WriteString("No cointegrated pairs found at the configured significance level.\n")
	}
	sb.WriteString("\n")

	// Sensitivity Grid
	if len(r.Grid) > 0 {
		sb.WriteString(fmt.Sprintf("## Sensitivity Grid: %s\n\n", r.GridPair))
		sb.WriteString("| Entry Z | Exit Z | Sharpe | Total Return | Win Rate | Trades |\n")
		sb.WriteString("|---------|--------|--------|--------------|----------|--------|\n")
		for _, p := range r.Grid {
			sb.WriteString(fmt.Sprintf("| %.2f | %.2f | %.4f | %.4f | %.4f | %d |\n",
				p.EntryZ, p.ExitZ, p.SharpeRatio, p.TotalReturn, p.WinRate, p.Trades))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
