package core

import (
	"fmt"
)

// mcsEntry is one row of either lookup table: a modulation order and a
// target code rate in units of R*1024, per TS 38.214.
type mcsEntry struct {
	ModulationOrder int
	CodeRate1024    float64
}

// validCQIRows bounds the usable prefix of the 32-row CQI table; rows
// beyond it are reserved.
const validCQIRows = 28

// cqiTable maps a 0-based CQI lookup index to the modulation order and
// target code rate the channel is reported to support. 32 rows, first
// 28 valid (TS 38.214 table 5.1.3.1-1 values).
var cqiTable = [32]mcsEntry{
	{2, 120}, {2, 157}, {2, 193}, {2, 251}, {2, 308}, {2, 379}, {2, 449},
	{2, 526}, {2, 602}, {2, 679}, {4, 340}, {4, 378}, {4, 434}, {4, 490},
	{4, 553}, {4, 616}, {4, 658}, {6, 438}, {6, 466}, {6, 517}, {6, 567},
	{6, 616}, {6, 666}, {6, 719}, {6, 772}, {6, 822}, {6, 873}, {6, 910},
	// reserved
	{0, 0}, {0, 0}, {0, 0}, {0, 0},
}

// mcsTable maps a 0-based MCS index to its modulation order and code
// rate: the 29 usable rows of TS 38.214 table 5.1.3.1-1.
var mcsTable = [29]mcsEntry{
	{2, 120}, {2, 157}, {2, 193}, {2, 251}, {2, 308}, {2, 379}, {2, 449},
	{2, 526}, {2, 602}, {2, 679}, {4, 340}, {4, 378}, {4, 434}, {4, 490},
	{4, 553}, {4, 616}, {4, 658}, {6, 438}, {6, 466}, {6, 517}, {6, 567},
	{6, 616}, {6, 666}, {6, 719}, {6, 772}, {6, 822}, {6, 873}, {6, 910},
	{6, 948},
}

// MCSMapper selects a modulation-and-coding scheme from a reported
// channel quality. The tables are fixed at construction; the mapper is
// stateless and safe for reuse across slots.
type MCSMapper struct{}

// NewMCSMapper constructs a mapper over the fixed CQI and MCS tables.
func NewMCSMapper() *MCSMapper {
	return &MCSMapper{}
}

// SelectMCS returns the 0-based MCS index for the given 0-based CQI
// lookup index.
//
// It reads the channel's (modulation, target code rate) from the CQI
// table, then picks the MCS row with the same modulation order whose
// code rate is the highest not exceeding the target. When even the
// lowest-rate row for that modulation exceeds the target, it falls back
// to that lowest row: the most conservative option the modulation
// offers.
func (m *MCSMapper) SelectMCS(cqiIndex int) (int, error) {
	if cqiIndex < 0 || cqiIndex >= validCQIRows {
		return 0, &InvalidCQIError{Index: cqiIndex}
	}

	target := cqiTable[cqiIndex]

	best := -1
	fallback := -1
	for i, row := range mcsTable {
		if row.ModulationOrder != target.ModulationOrder {
			continue
		}
		if fallback == -1 {
			fallback = i
		}
		if row.CodeRate1024 <= target.CodeRate1024 {
			// Rows are ordered by increasing code rate within a
			// modulation, so the last qualifying row wins.
			best = i
		}
	}
	if best >= 0 {
		return best, nil
	}
	if fallback >= 0 {
		return fallback, nil
	}
	// Unreachable with the shipped tables; guards future table edits.
	return 0, fmt.Errorf("no MCS row for modulation order %d", target.ModulationOrder)
}
