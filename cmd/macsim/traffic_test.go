package main

import (
	"context"
	"testing"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/internal/logging"
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

// recordingLogger captures log messages so tests can assert on
// diagnostic output.
type recordingLogger struct {
	warns  []string
	debugs []string
}

func (r *recordingLogger) With(...logging.Field) logging.Logger { return r }
func (r *recordingLogger) Debug(_ context.Context, msg string, _ ...logging.Field) {
	r.debugs = append(r.debugs, msg)
}
func (r *recordingLogger) Info(context.Context, string, ...logging.Field) {}
func (r *recordingLogger) Warn(_ context.Context, msg string, _ ...logging.Field) {
	r.warns = append(r.warns, msg)
}
func (r *recordingLogger) Error(context.Context, string, ...logging.Field) {}

func testState(t *testing.T) *cell.State {
	t.Helper()
	state, err := cell.NewState(model.CellConfig{
		NumUEs:           3,
		NumHARQProcesses: 8,
		SlotsPerFrame:    20,
		Uplink:           model.CarrierConfig{NumRBGs: 4, RBGSize: 2},
		Downlink:         model.CarrierConfig{NumRBGs: 4, RBGSize: 2},
	})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func TestTrafficGenerator_KeepsStateInRange(t *testing.T) {
	state := testState(t)
	gen := newTrafficGenerator(state, 42, logging.Noop())

	for i := 0; i < 50; i++ {
		gen.Step()
	}

	state.ForEachUE(func(ue *cell.UEContext) {
		for dir := model.Direction(0); dir < model.NumDirections; dir++ {
			for lc, b := range ue.BufferStatus[dir] {
				if b < 0 {
					t.Errorf("RNTI %d %s LC %d: negative buffer %d", ue.RNTI, dir, lc, b)
				}
			}
			for rb, cqi := range ue.CQIReport[dir] {
				if cqi < 1 || cqi > 15 {
					t.Errorf("RNTI %d %s RB %d: CQI %d outside 1..15", ue.RNTI, dir, rb, cqi)
				}
			}
		}
	})
}

func TestTrafficGenerator_Deterministic(t *testing.T) {
	a, b := testState(t), testState(t)
	genA := newTrafficGenerator(a, 7, logging.Noop())
	genB := newTrafficGenerator(b, 7, logging.Noop())

	for i := 0; i < 10; i++ {
		genA.Step()
		genB.Step()
	}

	ueA, _ := a.UE(1)
	ueB, _ := b.UE(1)
	if ueA.BufferSum(model.Uplink) != ueB.BufferSum(model.Uplink) {
		t.Errorf("same seed produced different uplink buffers: %d vs %d",
			ueA.BufferSum(model.Uplink), ueB.BufferSum(model.Uplink))
	}
}

func TestDrainBuffers(t *testing.T) {
	state := testState(t)
	if err := state.UpdateBufferStatus(1, model.Downlink, []int{1000, 800}); err != nil {
		t.Fatalf("UpdateBufferStatus: %v", err)
	}

	grants := []model.Grant{{RNTI: 1, Direction: model.Downlink}}
	drainBuffers(state, model.Downlink, grants, 1500, logging.Noop())

	ue, _ := state.UE(1)
	if got := ue.BufferSum(model.Downlink); got != 300 {
		t.Errorf("buffer sum after drain = %d, want 300", got)
	}
	// First channel drains fully before the second is touched.
	if ue.BufferStatus[model.Downlink][0] != 0 {
		t.Errorf("first channel = %d, want 0", ue.BufferStatus[model.Downlink][0])
	}
	if ue.BufferStatus[model.Downlink][1] != 300 {
		t.Errorf("second channel = %d, want 300", ue.BufferStatus[model.Downlink][1])
	}
}

func TestDrainBuffers_UnknownRNTILogged(t *testing.T) {
	state := testState(t)
	log := &recordingLogger{}

	grants := []model.Grant{{RNTI: 99, Direction: model.Downlink}}
	drainBuffers(state, model.Downlink, grants, 1500, log)

	if len(log.warns) != 1 {
		t.Fatalf("got %d warnings for a grant naming an unregistered UE, want 1", len(log.warns))
	}
}
