package cell

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type Scenario struct {
	Config     model.CellConfig
	SeededUEs  []uint16
	SeededCQIs []uint16
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type scenarioJSON struct {
	Cell model.CellConfig `json:"cell"`
	UEs  []ueSeedJSON     `json:"ues"`
}

type ueSeedJSON struct {
	RNTI           uint16 `json:"rnti"`
	UplinkBuffer   []int  `json:"uplink_buffer,omitempty"`
	DownlinkBuffer []int  `json:"downlink_buffer,omitempty"`

	// Flat CQI values applied to every RB of the direction's carrier.
	UplinkCQI   *int `json:"uplink_cqi,omitempty"`
	DownlinkCQI *int `json:"downlink_cqi,omitempty"`
}

// LoadScenario reads a JSON cell scenario from r, builds the validated
// State, and applies any per-UE buffer/CQI seeds. It fails on JSON and
// validation errors; seed entries for unknown RNTIs fail too, since a
// scenario referencing a UE outside the population is malformed.
func LoadScenario(r io.Reader) (*State, *Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("load scenario: decode failed: %w", err)
	}

	state, err := NewState(payload.Cell)
	if err != nil {
		return nil, nil, fmt.Errorf("load scenario: %w", err)
	}

	summary := &Scenario{Config: payload.Cell}
	for _, seed := range payload.UEs {
		if seed.UplinkBuffer != nil {
			if err := state.UpdateBufferStatus(seed.RNTI, model.Uplink, seed.UplinkBuffer); err != nil {
				return nil, nil, fmt.Errorf("load scenario: RNTI %d: %w", seed.RNTI, err)
			}
		}
		if seed.DownlinkBuffer != nil {
			if err := state.UpdateBufferStatus(seed.RNTI, model.Downlink, seed.DownlinkBuffer); err != nil {
				return nil, nil, fmt.Errorf("load scenario: RNTI %d: %w", seed.RNTI, err)
			}
		}
		if seed.UplinkBuffer != nil || seed.DownlinkBuffer != nil {
			summary.SeededUEs = append(summary.SeededUEs, seed.RNTI)
		}

		if seed.UplinkCQI != nil {
			if err := applyFlatCQI(state, seed.RNTI, model.Uplink, *seed.UplinkCQI); err != nil {
				return nil, nil, fmt.Errorf("load scenario: RNTI %d: %w", seed.RNTI, err)
			}
			summary.SeededCQIs = append(summary.SeededCQIs, seed.RNTI)
		}
		if seed.DownlinkCQI != nil {
			if err := applyFlatCQI(state, seed.RNTI, model.Downlink, *seed.DownlinkCQI); err != nil {
				return nil, nil, fmt.Errorf("load scenario: RNTI %d: %w", seed.RNTI, err)
			}
			summary.SeededCQIs = append(summary.SeededCQIs, seed.RNTI)
		}
	}

	return state, summary, nil
}

func applyFlatCQI(state *State, rnti uint16, dir model.Direction, cqi int) error {
	report := make([]int, state.Config().Carrier(dir).NumRBs())
	for i := range report {
		report[i] = cqi
	}
	return state.UpdateCQIReport(rnti, dir, report)
}
