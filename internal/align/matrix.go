// Package align joins raw per-symbol price series into a single
// date-indexed matrix with no missing cells. It is the shared input
// for scanning, spread modelling and backtesting.
package align

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"pairslab/internal/domain"
)

// MinObservations is the minimum number of aligned rows required for a
// matrix (or a pair slice of it) to be usable for estimation.
const MinObservations = 30

// Errors returned by the builder.
var (
	ErrNoSeries        = errors.New("no price series supplied")
	ErrDuplicateSymbol = errors.New("duplicate symbol in input series")
	ErrUnsortedSeries  = errors.New("price series dates must be strictly increasing")
	ErrUnknownSymbol   = errors.New("symbol not present in matrix")
)

// Matrix is a date-indexed table where every included date carries a
// value for every included symbol. Rows are ordered by date ascending.
type Matrix struct {
	Dates   []time.Time
	Symbols []string // sorted ascending, fixing the pair iteration order
	columns map[string][]float64
}

// Build inner-joins the supplied series on their union calendar:
// gaps are forward-filled per symbol, then any date where a symbol has
// no value yet (before its first observation) is dropped. A pure
// transform; the input series are never mutated.
func Build(series []domain.PriceSeries) (*Matrix, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	bySymbol := make(map[string]domain.PriceSeries, len(series))
	for _, s := range series {
		if _, dup := bySymbol[s.Symbol]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, s.Symbol)
		}
		for i := 1; i < s.Len(); i++ {
			if !s.Dates[i].After(s.Dates[i-1]) {
				return nil, fmt.Errorf("%w: %s", ErrUnsortedSeries, s.Symbol)
			}
		}
		bySymbol[s.Symbol] = s
	}

	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	calendar := unionCalendar(series)

	// Forward-fill each symbol onto the union calendar. A cell stays
	// missing only before the symbol's first observation.
	filled := make(map[string][]float64, len(symbols))
	present := make(map[string][]bool, len(symbols))
	for _, sym := range symbols {
		s := bySymbol[sym]
		vals := make([]float64, len(calendar))
		ok := make([]bool, len(calendar))
		idx := 0
		var last float64
		var seen bool
		for i, d := range calendar {
			for idx < s.Len() && !s.Dates[idx].After(d) {
				last = s.Closes[idx]
				seen = true
				idx++
			}
			if seen {
				vals[i] = last
				ok[i] = true
			}
		}
		filled[sym] = vals
		present[sym] = ok
	}

	m := &Matrix{
		Symbols: symbols,
		columns: make(map[string][]float64, len(symbols)),
	}
	for _, sym := range symbols {
		m.columns[sym] = make([]float64, 0, len(calendar))
	}
	for i, d := range calendar {
		complete := true
		for _, sym := range symbols {
			if !present[sym][i] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		m.Dates = append(m.Dates, d)
		for _, sym := range symbols {
			m.columns[sym] = append(m.columns[sym], filled[sym][i])
		}
	}

	return m, nil
}

// Rows returns the number of aligned dates.
func (m *Matrix) Rows() int { return len(m.Dates) }

// Usable reports whether the matrix carries enough rows for estimation.
func (m *Matrix) Usable() bool { return m.Rows() >= MinObservations }

// Column returns the aligned values for one symbol. The returned slice
// is shared with the matrix and must not be mutated.
func (m *Matrix) Column(symbol string) ([]float64, error) {
	col, ok := m.columns[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return col, nil
}

// Pair returns the aligned dates and columns for two symbols.
func (m *Matrix) Pair(s1, s2 string) (dates []time.Time, a, b []float64, err error) {
	a, err = m.Column(s1)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err = m.Column(s2)
	if err != nil {
		return nil, nil, nil, err
	}
	return m.Dates, a, b, nil
}

// unionCalendar merges all series dates into one sorted, de-duplicated
// calendar.
func unionCalendar(series []domain.PriceSeries) []time.Time {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		for _, d := range s.Dates {
			seen[d.Unix()] = d
		}
	}
	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	calendar := make([]time.Time, len(keys))
	for i, k := range keys {
		calendar[i] = seen[k]
	}
	return calendar
}
