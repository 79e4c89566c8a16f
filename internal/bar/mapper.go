// SPDX-License-Identifier: MIT
/*
Package bar converts magnitude spectra into display bars: the mapper groups
FFT bins into a fixed number of bars along a linear or logarithmic curve, and
the smoother turns raw per-frame bar values into visually stable heights with
instant attack and gradual decay.
*/
package bar

import (
	"fmt"
	"math"
)

// Aggregate selects how the bins of a bar are combined.
type Aggregate int

const (
	// AggregateMax takes the loudest bin of the bar. Default: summing lets
	// wide low bars dominate the display.
	AggregateMax Aggregate = iota
	// AggregateSum adds all bins of the bar.
	AggregateSum
)

// ParseAggregate resolves an aggregation mode from its configured name.
func ParseAggregate(name string) (Aggregate, error) {
	switch name {
	case "max", "":
		return AggregateMax, nil
	case "sum":
		return AggregateSum, nil
	default:
		return 0, fmt.Errorf("unknown aggregate %q", name)
	}
}

// Mapper partitions binCount spectrum bins into bars contiguous,
// non-overlapping ranges. Edges are precomputed at construction; Map itself
// allocates nothing.
type Mapper struct {
	bars      int
	binCount  int
	edges     []int // len bars+1, edges[0]=0, edges[bars]=binCount
	aggregate Aggregate
}

// NewMapper builds a mapper from binCount bins onto bars display bars.
// curve is "linear" or "logarithmic". Every bar is guaranteed at least one
// bin; a bar count that cannot satisfy that is rejected outright rather than
// silently producing flat bars.
func NewMapper(binCount, bars int, curve string, aggregate Aggregate) (*Mapper, error) {
	if binCount < 1 {
		return nil, fmt.Errorf("bin count must be positive, got %d", binCount)
	}
	if bars < 1 || bars > binCount {
		return nil, fmt.Errorf("bar count must be in [1, %d], got %d", binCount, bars)
	}

	edges := make([]int, bars+1)
	switch curve {
	case "linear":
		for i := range bars + 1 {
			edges[i] = i * binCount / bars
		}
	case "logarithmic", "":
		// Geometric spacing: most of the perceptually relevant energy sits
		// in the low bins, so low bars get narrow ranges and high bars wide
		// ones.
		for i := range bars + 1 {
			edges[i] = int(math.Pow(float64(binCount), float64(i)/float64(bars)))
		}
		edges[0] = 0
		edges[bars] = binCount
	default:
		return nil, fmt.Errorf("unknown curve %q", curve)
	}

	// Geometric edges collapse at the low end when bars is large relative
	// to log2(binCount). Two passes restore strict monotonicity while
	// keeping full coverage.
	for i := 1; i <= bars; i++ {
		if edges[i] <= edges[i-1] {
			edges[i] = edges[i-1] + 1
		}
	}
	for i := bars; i >= 1; i-- {
		if limit := binCount - (bars - i); edges[i] > limit {
			edges[i] = limit
		}
	}

	return &Mapper{
		bars:      bars,
		binCount:  binCount,
		edges:     edges,
		aggregate: aggregate,
	}, nil
}

// Bars returns the number of display bars.
func (m *Mapper) Bars() int { return m.bars }

// BinRange returns the half-open bin range [lo, hi) assigned to bar i.
func (m *Mapper) BinRange(i int) (lo, hi int) {
	return m.edges[i], m.edges[i+1]
}

// BarForBin returns the index of the bar that bin belongs to.
func (m *Mapper) BarForBin(bin int) int {
	for i := range m.bars {
		if bin < m.edges[i+1] {
			return i
		}
	}
	return m.bars - 1
}

// Map aggregates the spectrum into dst, one value per bar. len(magnitudes)
// must equal the mapper's bin count and len(dst) its bar count.
func (m *Mapper) Map(magnitudes, dst []float64) {
	if len(magnitudes) != m.binCount {
		panic(fmt.Sprintf("bar: spectrum has %d bins, mapper expects %d", len(magnitudes), m.binCount))
	}
	if len(dst) != m.bars {
		panic(fmt.Sprintf("bar: dst has %d slots, mapper produces %d", len(dst), m.bars))
	}

	for i := range m.bars {
		lo, hi := m.edges[i], m.edges[i+1]
		switch m.aggregate {
		case AggregateSum:
			var sum float64
			for k := lo; k < hi; k++ {
				sum += magnitudes[k]
			}
			dst[i] = sum
		default:
			peak := magnitudes[lo]
			for k := lo + 1; k < hi; k++ {
				if magnitudes[k] > peak {
					peak = magnitudes[k]
				}
			}
			dst[i] = peak
		}
	}
}
