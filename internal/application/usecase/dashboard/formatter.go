package dashboard

import (
	"fmt"
	"strings"

	"cryptofolio/internal/domain"
)

const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

func colorize(s, c string) string { return c + s + ansiReset }

type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

type RenderMode int

const (
	RenderLive RenderMode = iota
	RenderSnapshot
)

func (f *Formatter) Render(st *State, mode RenderMode) string {
	entries := st.Snapshot()

	var sb strings.Builder
	if mode == RenderLive {
		sb.WriteString("\r")
	}

	sb.WriteString(colorize("[FOLIO] ", ansiDim))

	for i, e := range entries {
		if i > 0 {
			sb.WriteString(colorize("  ||  ", ansiDim))
		}

		price := "--"
		col := ansiYellow
		if e.HasValue {
			price = fmt.Sprintf("%.6g", e.Record.Price)
			switch e.Direction {
			case domain.DirectionUp:
				col = ansiGreen
			case domain.DirectionDown:
				col = ansiRed
			}
		}

		change := "Δ24h=--"
		cCol := ansiYellow
		if e.HasValue {
			change = fmt.Sprintf("Δ24h=%+.2f%%", e.Record.Change24h)
			switch {
			case e.Record.Change24h > 0:
				cCol = ansiGreen
			case e.Record.Change24h < 0:
				cCol = ansiRed
			}
		}

		sb.WriteString(e.Coin)
		sb.WriteString(" ")
		sb.WriteString(colorize(price, col))
		sb.WriteString(" ")
		sb.WriteString(colorize(change, cCol))
	}

	if mode == RenderLive {
		sb.WriteString(ansiClearEOL)
	}
	return sb.String()
}

// rankingsShown caps how many rows of each ranking table fit on one line.
const rankingsShown = 5

// RenderRankings condenses the movers and losers tables into one snapshot line.
func (f *Formatter) RenderRankings(movers, losers []domain.PriceRecord) string {
	var sb strings.Builder
	sb.WriteString(colorize("[MOVERS] ", ansiDim))
	sb.WriteString(f.rankingRow(movers))
	sb.WriteString(colorize("  ||  ", ansiDim))
	sb.WriteString(colorize("[LOSERS] ", ansiDim))
	sb.WriteString(f.rankingRow(losers))
	return sb.String()
}

func (f *Formatter) rankingRow(records []domain.PriceRecord) string {
	if len(records) == 0 {
		return "--"
	}
	if len(records) > rankingsShown {
		records = records[:rankingsShown]
	}
	parts := make([]string, 0, len(records))
	for _, r := range records {
		col := ansiGreen
		if r.Change24h < 0 {
			col = ansiRed
		}
		parts = append(parts, r.Symbol+" "+colorize(fmt.Sprintf("%+.2f%%", r.Change24h), col))
	}
	return strings.Join(parts, " ")
}

// RenderPortfolio is the valuation snapshot line: total first, then the
// largest holdings.
func (f *Formatter) RenderPortfolio(p *domain.PortfolioSnapshot) string {
	var sb strings.Builder
	sb.WriteString(colorize("[VALUE] ", ansiDim))
	sb.WriteString(fmt.Sprintf("total=%.2f", p.TotalValue))

	assets := p.Assets
	if len(assets) > rankingsShown {
		assets = assets[:rankingsShown]
	}
	for _, a := range assets {
		sb.WriteString(colorize("  ||  ", ansiDim))
		sb.WriteString(fmt.Sprintf("%s %.6g (%.2f)", a.Symbol, a.Balance, a.Value))
	}
	return sb.String()
}
