package model

// HARQNoProcess is the sentinel for "no process used yet", so the first
// assignment for a UE/direction yields process 0.
const HARQNoProcess = -1

// HARQState is the per-UE, per-direction HARQ bookkeeping: the last
// process ID handed out and the NDI bit last signalled per process. It
// carries no retransmission state; the NDI toggle only tells the
// receiver that a reused process ID holds fresh data.
type HARQState struct {
	LastProcessID int    `json:"last_process_id"`
	NDI           []bool `json:"ndi"`
}

// NewHARQState returns the initial state for a cell with numProcesses
// HARQ processes per UE per direction.
func NewHARQState(numProcesses int) HARQState {
	return HARQState{
		LastProcessID: HARQNoProcess,
		NDI:           make([]bool, numProcesses),
	}
}
