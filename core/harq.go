package core

import (
	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// HARQManager advances per-UE, per-direction HARQ bookkeeping. Process
// IDs cycle 0..NumHARQ-1 across successive grants; the NDI bit for a
// process is negated on every reuse, signalling fresh data to the
// receiver (retransmissions are not modelled, so every assignment is a
// new transmission).
type HARQManager struct {
	numProcesses int
}

// NewHARQManager builds a manager for a cell with numProcesses HARQ
// processes per UE per direction.
func NewHARQManager(numProcesses int) *HARQManager {
	return &HARQManager{numProcesses: numProcesses}
}

// AssignNewProcess advances the UE's HARQ state for the direction and
// returns the process ID and NDI bit to stamp on the grant. The first
// call for a UE/direction yields process 0 with NDI true.
func (h *HARQManager) AssignNewProcess(ue *cell.UEContext, dir model.Direction) (processID int, ndi bool) {
	state := &ue.HARQ[dir]

	processID = (state.LastProcessID + 1) % h.numProcesses
	ndi = !state.NDI[processID]

	state.NDI[processID] = ndi
	state.LastProcessID = processID
	return processID, ndi
}
