// SPDX-License-Identifier: MIT
package bar

import (
	"fmt"
	"testing"
)

func TestMapperPartitionIsExact(t *testing.T) {
	// Every bin must land in exactly one bar and every bar must own at
	// least one bin, for any legal bar count and both curves.
	binCounts := []int{1, 2, 16, 128, 1024}
	for _, binCount := range binCounts {
		for _, curve := range []string{"linear", "logarithmic"} {
			for _, bars := range []int{1, 2, 3, binCount/2 + 1, binCount} {
				if bars < 1 || bars > binCount {
					continue
				}
				name := fmt.Sprintf("%s/bins=%d/bars=%d", curve, binCount, bars)
				t.Run(name, func(t *testing.T) {
					m, err := NewMapper(binCount, bars, curve, AggregateMax)
					if err != nil {
						t.Fatalf("NewMapper: %v", err)
					}

					prev := 0
					for i := range bars {
						lo, hi := m.BinRange(i)
						if lo != prev {
							t.Fatalf("bar %d starts at %d, expected %d", i, lo, prev)
						}
						if hi <= lo {
							t.Fatalf("bar %d is empty: [%d, %d)", i, lo, hi)
						}
						prev = hi
					}
					if prev != binCount {
						t.Fatalf("last bar ends at %d, expected %d", prev, binCount)
					}
				})
			}
		}
	}
}

func TestMapperRejectsBadBarCounts(t *testing.T) {
	tests := []struct {
		binCount, bars int
	}{
		{128, 0},
		{128, -1},
		{128, 129}, // more bars than bins would leave bars bin-less
		{0, 1},
	}
	for _, tt := range tests {
		if _, err := NewMapper(tt.binCount, tt.bars, "logarithmic", AggregateMax); err == nil {
			t.Errorf("expected error for binCount=%d bars=%d", tt.binCount, tt.bars)
		}
	}

	if _, err := NewMapper(128, 16, "parabolic", AggregateMax); err == nil {
		t.Error("expected error for unknown curve")
	}
}

func TestMapperAggregateModes(t *testing.T) {
	mags := []float64{1, 5, 2, 0, 3, 1, 0, 2}

	maxMapper, err := NewMapper(8, 2, "linear", AggregateMax)
	if err != nil {
		t.Fatal(err)
	}
	sumMapper, err := NewMapper(8, 2, "linear", AggregateSum)
	if err != nil {
		t.Fatal(err)
	}

	got := make([]float64, 2)
	maxMapper.Map(mags, got)
	if got[0] != 5 || got[1] != 3 {
		t.Errorf("max aggregate: got %v, expected [5 3]", got)
	}

	sumMapper.Map(mags, got)
	if got[0] != 8 || got[1] != 6 {
		t.Errorf("sum aggregate: got %v, expected [8 6]", got)
	}
}

func TestMapperLogCurveFavorsLowBins(t *testing.T) {
	m, err := NewMapper(1024, 32, "logarithmic", AggregateMax)
	if err != nil {
		t.Fatal(err)
	}

	firstLo, firstHi := m.BinRange(0)
	lastLo, lastHi := m.BinRange(31)
	if firstHi-firstLo >= lastHi-lastLo {
		t.Errorf("expected low bars narrower than high bars, got first=%d last=%d",
			firstHi-firstLo, lastHi-lastLo)
	}
}

func TestMapperBarForBin(t *testing.T) {
	m, err := NewMapper(64, 8, "linear", AggregateMax)
	if err != nil {
		t.Fatal(err)
	}
	for bin := range 64 {
		b := m.BarForBin(bin)
		lo, hi := m.BinRange(b)
		if bin < lo || bin >= hi {
			t.Fatalf("bin %d mapped to bar %d covering [%d, %d)", bin, b, lo, hi)
		}
	}
}

func TestMapHotPath(t *testing.T) {
	m, err := NewMapper(1024, 48, "logarithmic", AggregateMax)
	if err != nil {
		t.Fatal(err)
	}
	mags := make([]float64, 1024)
	dst := make([]float64, 48)

	allocs := testing.AllocsPerRun(100, func() {
		m.Map(mags, dst)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Map, got %.1f", allocs)
	}
}

func TestParseAggregate(t *testing.T) {
	if a, err := ParseAggregate("max"); err != nil || a != AggregateMax {
		t.Errorf("max: got %v, %v", a, err)
	}
	if a, err := ParseAggregate("sum"); err != nil || a != AggregateSum {
		t.Errorf("sum: got %v, %v", a, err)
	}
	if _, err := ParseAggregate("median"); err == nil {
		t.Error("expected error for unknown aggregate")
	}
}

func BenchmarkMap(b *testing.B) {
	m, _ := NewMapper(1024, 48, "logarithmic", AggregateMax)
	mags := make([]float64, 1024)
	for i := range mags {
		mags[i] = float64(i % 7)
	}
	dst := make([]float64, 48)

	b.ReportAllocs()
	for b.Loop() {
		m.Map(mags, dst)
	}
}
