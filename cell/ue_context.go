package cell

import (
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// UEContext holds the scheduler-visible state of one registered UE.
// Contexts are created once at cell setup and live for the whole run;
// buffer status and CQI reports are refreshed by the driver between
// slots, HARQ state is mutated by the scheduling engine during a pass.
type UEContext struct {
	// RNTI is the UE's radio-network temporary identifier. In this
	// design it equals the UE's 1-based index in the cell.
	RNTI uint16

	// BufferStatus holds pending byte counts per logical channel, per
	// direction. A UE is eligible for scheduling in a direction iff the
	// sum across channels is strictly positive.
	BufferStatus [model.NumDirections][]int

	// CQIReport holds the latest per-RB channel-quality indices (0..15)
	// per direction. Length equals the direction's RB count.
	CQIReport [model.NumDirections][]int

	// HARQ is the per-direction process/NDI bookkeeping.
	HARQ [model.NumDirections]model.HARQState
}

// BufferSum returns the total pending bytes across logical channels for
// the given direction.
func (ue *UEContext) BufferSum(dir model.Direction) int {
	total := 0
	for _, b := range ue.BufferStatus[dir] {
		total += b
	}
	return total
}

// HasPendingData reports whether the UE is eligible for scheduling in
// the given direction.
func (ue *UEContext) HasPendingData(dir model.Direction) bool {
	return ue.BufferSum(dir) > 0
}
