package core

import (
	"errors"
	"testing"
)

func TestSelectMCS_LowestValidRow(t *testing.T) {
	m := NewMCSMapper()

	// An averaged CQI of exactly 1 maps to lookup index 0 and must not
	// fail: it selects the most conservative QPSK entry.
	mcs, err := m.SelectMCS(0)
	if err != nil {
		t.Fatalf("SelectMCS(0) returned error: %v", err)
	}
	if mcs != 0 {
		t.Fatalf("SelectMCS(0) = %d, want 0", mcs)
	}
}

func TestSelectMCS_ExactRateMatch(t *testing.T) {
	m := NewMCSMapper()

	// The CQI and MCS tables share their usable prefix, so every valid
	// lookup has an exact (modulation, rate) match at the same index.
	for idx := 0; idx < validCQIRows; idx++ {
		mcs, err := m.SelectMCS(idx)
		if err != nil {
			t.Fatalf("SelectMCS(%d) returned error: %v", idx, err)
		}
		if mcs != idx {
			t.Errorf("SelectMCS(%d) = %d, want %d", idx, mcs, idx)
		}
	}
}

func TestSelectMCS_MonotonicWithinModulation(t *testing.T) {
	m := NewMCSMapper()

	prevRate := make(map[int]float64)
	for idx := 0; idx < validCQIRows; idx++ {
		mcs, err := m.SelectMCS(idx)
		if err != nil {
			t.Fatalf("SelectMCS(%d) returned error: %v", idx, err)
		}

		row := mcsTable[mcs]
		target := cqiTable[idx]
		if row.ModulationOrder != target.ModulationOrder {
			t.Errorf("index %d: selected modulation %d, channel supports %d",
				idx, row.ModulationOrder, target.ModulationOrder)
		}
		if row.CodeRate1024 > target.CodeRate1024 {
			t.Errorf("index %d: selected rate %v exceeds target %v",
				idx, row.CodeRate1024, target.CodeRate1024)
		}
		if prev, ok := prevRate[row.ModulationOrder]; ok && row.CodeRate1024 < prev {
			t.Errorf("index %d: rate %v regressed below %v for modulation %d",
				idx, row.CodeRate1024, prev, row.ModulationOrder)
		}
		prevRate[row.ModulationOrder] = row.CodeRate1024
	}
}

func TestSelectMCS_InvalidIndex(t *testing.T) {
	m := NewMCSMapper()

	for _, idx := range []int{-2, -1, validCQIRows, 31, 100} {
		_, err := m.SelectMCS(idx)
		if err == nil {
			t.Errorf("SelectMCS(%d) succeeded, want invalid CQI error", idx)
			continue
		}
		var invalid *InvalidCQIError
		if !errors.As(err, &invalid) {
			t.Errorf("SelectMCS(%d) error %v is not an InvalidCQIError", idx, err)
		}
	}
}
