package core

import (
	"fmt"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// InvalidCQIError indicates a CQI-to-MCS lookup index fell outside the
// valid table range. This points at a defect in upstream CQI reporting,
// so it is surfaced rather than papered over with a default MCS.
type InvalidCQIError struct {
	Index int
}

func (e *InvalidCQIError) Error() string {
	return fmt.Sprintf("invalid CQI lookup index %d (valid range 0..%d)", e.Index, validCQIRows-1)
}

// UESkippedError wraps a per-UE scheduling failure. The UE is skipped
// for the slot; scheduling continues for the remaining UEs and the UE
// is reconsidered next slot with refreshed inputs.
type UESkippedError struct {
	RNTI      uint16
	Direction model.Direction
	Slot      int
	Err       error
}

func (e *UESkippedError) Error() string {
	return fmt.Sprintf("RNTI %d skipped in %s slot %d: %v", e.RNTI, e.Direction, e.Slot, e.Err)
}

func (e *UESkippedError) Unwrap() error {
	return e.Err
}
