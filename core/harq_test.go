package core

import (
	"testing"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

func newTestUE(t *testing.T, numProcesses int) *cell.UEContext {
	t.Helper()
	ue := &cell.UEContext{RNTI: 1}
	for dir := model.Direction(0); dir < model.NumDirections; dir++ {
		ue.HARQ[dir] = model.NewHARQState(numProcesses)
	}
	return ue
}

func TestHARQManager_ProcessCycling(t *testing.T) {
	const numProcesses = 4
	h := NewHARQManager(numProcesses)
	ue := newTestUE(t, numProcesses)

	// Process IDs must follow 0,1,2,3,0,1,... across successive grants.
	for i := 0; i < 10; i++ {
		pid, _ := h.AssignNewProcess(ue, model.Downlink)
		if want := i % numProcesses; pid != want {
			t.Fatalf("assignment %d: process %d, want %d", i, pid, want)
		}
	}
}

func TestHARQManager_NDIAlternatesPerProcess(t *testing.T) {
	const numProcesses = 2
	h := NewHARQManager(numProcesses)
	ue := newTestUE(t, numProcesses)

	// With 2 processes, process 0 recurs on every even assignment; its
	// NDI bit must flip each time.
	var ndiForProcess0 []bool
	for i := 0; i < 6; i++ {
		pid, ndi := h.AssignNewProcess(ue, model.Uplink)
		if pid == 0 {
			ndiForProcess0 = append(ndiForProcess0, ndi)
		}
	}

	want := []bool{true, false, true}
	if len(ndiForProcess0) != len(want) {
		t.Fatalf("process 0 assigned %d times, want %d", len(ndiForProcess0), len(want))
	}
	for i, ndi := range ndiForProcess0 {
		if ndi != want[i] {
			t.Errorf("process 0 reuse %d: NDI %v, want %v", i, ndi, want[i])
		}
	}
}

func TestHARQManager_FirstAssignment(t *testing.T) {
	h := NewHARQManager(16)
	ue := newTestUE(t, 16)

	pid, ndi := h.AssignNewProcess(ue, model.Downlink)
	if pid != 0 {
		t.Errorf("first assignment: process %d, want 0", pid)
	}
	if !ndi {
		t.Errorf("first assignment: NDI false, want true")
	}
}

func TestHARQManager_DirectionsAreIndependent(t *testing.T) {
	h := NewHARQManager(8)
	ue := newTestUE(t, 8)

	for i := 0; i < 3; i++ {
		h.AssignNewProcess(ue, model.Uplink)
	}
	pid, ndi := h.AssignNewProcess(ue, model.Downlink)
	if pid != 0 || !ndi {
		t.Errorf("downlink first assignment after uplink activity: process %d NDI %v, want 0 true", pid, ndi)
	}
}
