package model

import "fmt"

// CarrierConfig describes the frequency-domain geometry of one direction
// of the cell: how many RBGs the scheduler allocates over and how many
// physical RBs each RBG spans. Both are fixed by physical-layer
// configuration (bandwidth, numerology) before the scheduler is built.
type CarrierConfig struct {
	NumRBGs int `json:"num_rbgs"`
	RBGSize int `json:"rbg_size"`
}

// NumRBs returns the carrier width in physical resource blocks.
func (c CarrierConfig) NumRBs() int {
	return c.NumRBGs * c.RBGSize
}

// CellConfig is the construction-time configuration of the scheduling
// core. It is immutable after validation; per-slot inputs (buffers, CQI)
// live on the UE contexts instead.
type CellConfig struct {
	NumUEs           int `json:"num_ues"`
	NumHARQProcesses int `json:"num_harq_processes"`
	SlotsPerFrame    int `json:"slots_per_frame"`

	Uplink   CarrierConfig `json:"uplink"`
	Downlink CarrierConfig `json:"downlink"`

	// UplinkStrideDivisors maps RNTI -> divisor for the uplink RBG
	// stride (stride = NumRBGs / divisor, clamped to 1 when the division
	// underflows). UEs without an entry use divisor 1.
	UplinkStrideDivisors map[uint16]int `json:"uplink_stride_divisors,omitempty"`
}

// Carrier returns the carrier geometry for the given direction.
func (c CellConfig) Carrier(dir Direction) CarrierConfig {
	if dir == Downlink {
		return c.Downlink
	}
	return c.Uplink
}

// Validate enforces the construction-time ranges. A failure here is a
// configuration error and must abort setup.
func (c CellConfig) Validate() error {
	if c.NumUEs <= 0 {
		return fmt.Errorf("cell config: NumUEs must be positive, got %d", c.NumUEs)
	}
	if c.NumHARQProcesses <= 0 {
		return fmt.Errorf("cell config: NumHARQProcesses must be positive, got %d", c.NumHARQProcesses)
	}
	if c.SlotsPerFrame <= 0 {
		return fmt.Errorf("cell config: SlotsPerFrame must be positive, got %d", c.SlotsPerFrame)
	}
	for _, dir := range []Direction{Uplink, Downlink} {
		carrier := c.Carrier(dir)
		if carrier.NumRBGs <= 0 {
			return fmt.Errorf("cell config: %s NumRBGs must be positive, got %d", dir, carrier.NumRBGs)
		}
		if carrier.RBGSize <= 0 {
			return fmt.Errorf("cell config: %s RBGSize must be positive, got %d", dir, carrier.RBGSize)
		}
	}
	for rnti, div := range c.UplinkStrideDivisors {
		if div <= 0 {
			return fmt.Errorf("cell config: stride divisor for RNTI %d must be positive, got %d", rnti, div)
		}
	}
	return nil
}
