package main

import (
	"context"
	"math/rand"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/internal/logging"
	"github.com/signalsfoundry/gnb-mac-sim/model"
)

const (
	numLogicalChannels = 3
	maxArrivalBytes    = 4000

	// arrivalProbability is the per-UE, per-direction chance of new data
	// landing in a slot.
	arrivalProbability = 0.6
)

// trafficGenerator feeds the cell with synthetic buffer arrivals and
// slowly drifting CQI reports. It only runs between scheduling passes.
type trafficGenerator struct {
	state *cell.State
	rng   *rand.Rand
	log   logging.Logger

	// cqi holds the current flat CQI level per UE per direction,
	// random-walked one step per slot within 1..15.
	cqi map[uint16][model.NumDirections]int
}

func newTrafficGenerator(state *cell.State, seed int64, log logging.Logger) *trafficGenerator {
	if log == nil {
		log = logging.Noop()
	}
	g := &trafficGenerator{
		state: state,
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
		cqi:   make(map[uint16][model.NumDirections]int),
	}
	state.ForEachUE(func(ue *cell.UEContext) {
		g.cqi[ue.RNTI] = [model.NumDirections]int{7, 7}
	})
	return g
}

// Step applies one slot's worth of arrivals and CQI drift. Buffer
// contents are copied out before any update: the state mutators take
// the write lock, so they must not run under ForEachUE's read lock.
func (g *trafficGenerator) Step() {
	type ueView struct {
		rnti uint16
		buf  [model.NumDirections][]int
	}
	var views []ueView
	g.state.ForEachUE(func(ue *cell.UEContext) {
		v := ueView{rnti: ue.RNTI}
		for dir := model.Direction(0); dir < model.NumDirections; dir++ {
			v.buf[dir] = append([]int(nil), ue.BufferStatus[dir]...)
		}
		views = append(views, v)
	})

	for _, v := range views {
		for dir := model.Direction(0); dir < model.NumDirections; dir++ {
			g.stepBuffers(v.rnti, dir, v.buf[dir])
			g.stepCQI(v.rnti, dir)
		}
	}
}

func (g *trafficGenerator) stepBuffers(rnti uint16, dir model.Direction, buf []int) {
	for len(buf) < numLogicalChannels {
		buf = append(buf, 0)
	}
	if g.rng.Float64() < arrivalProbability {
		buf[g.rng.Intn(numLogicalChannels)] += g.rng.Intn(maxArrivalBytes) + 1
	}
	if err := g.state.UpdateBufferStatus(rnti, dir, buf); err != nil {
		g.log.Debug(context.Background(), "buffer refresh rejected",
			logging.Int("rnti", int(rnti)),
			logging.String("direction", dir.String()),
			logging.String("error", err.Error()),
		)
	}
}

func (g *trafficGenerator) stepCQI(rnti uint16, dir model.Direction) {
	levels := g.cqi[rnti]
	level := levels[dir] + g.rng.Intn(3) - 1
	if level < 1 {
		level = 1
	}
	if level > 15 {
		level = 15
	}
	levels[dir] = level
	g.cqi[rnti] = levels

	report := make([]int, g.state.Config().Carrier(dir).NumRBs())
	for i := range report {
		report[i] = level
	}
	if err := g.state.UpdateCQIReport(rnti, dir, report); err != nil {
		g.log.Debug(context.Background(), "CQI refresh rejected",
			logging.Int("rnti", int(rnti)),
			logging.String("direction", dir.String()),
			logging.String("error", err.Error()),
		)
	}
}
