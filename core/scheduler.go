package core

import (
	"context"
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/internal/logging"
	"github.com/signalsfoundry/gnb-mac-sim/model"
	"github.com/signalsfoundry/gnb-mac-sim/slotclock"
)

// Scheduler is the capability the MAC driver invokes once per slot per
// direction. Implementations own the cell's UE contexts and mutate HARQ
// state as grants are issued; callers must not invoke either method
// concurrently.
type Scheduler interface {
	// ScheduleUplink produces the uplink grants for the given slot.
	// The returned error, if any, aggregates per-UE skip diagnostics;
	// the grants alongside it are still valid.
	ScheduleUplink(slotNumber int) ([]model.Grant, error)

	// ScheduleDownlink produces the downlink grants for the given slot.
	ScheduleDownlink(slotNumber int) ([]model.Grant, error)
}

// Fixed time-domain and antenna parameters stamped on every grant by
// the round-robin strategy.
const (
	grantStartSymbol  = 0
	grantNumSymbols   = 14
	grantMappingType  = "A"
	grantDMRSLength   = 1
	grantNumLayers    = 1
	grantNumCDMGroups = 2

	ulNumAntennaPorts = 1
	ulTPMI            = 0

	// dlFeedbackSlotOffset is the ACK/NACK timing (K1); offsets below 2
	// are unsupported.
	dlFeedbackSlotOffset = 2
)

// RoundRobinScheduler is the single concrete scheduling strategy: every
// UE with pending data gets a grant each slot, with RBGs spread by a
// per-UE stride (uplink) or plain round-robin striping (downlink).
//
// Neither stride policy guarantees disjoint RBG sets across UEs when
// the stride does not tile the bandwidth evenly; overlaps are left
// as-is and only visible in debug logs.
type RoundRobinScheduler struct {
	state *cell.State
	cfg   model.CellConfig
	clock slotclock.SlotClock

	translator *BitmapTranslator
	mcs        *MCSMapper
	harq       *HARQManager

	log     logging.Logger
	metrics MetricsRecorder
}

// SchedulerOption customises a RoundRobinScheduler.
type SchedulerOption func(*RoundRobinScheduler)

// WithLogger attaches a structured logger; defaults to a no-op.
func WithLogger(log logging.Logger) SchedulerOption {
	return func(s *RoundRobinScheduler) { s.log = log }
}

// WithMetricsRecorder attaches a telemetry recorder; defaults to a no-op.
func WithMetricsRecorder(rec MetricsRecorder) SchedulerOption {
	return func(s *RoundRobinScheduler) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// NewRoundRobinScheduler builds the strategy over an already-validated
// cell state and a slot clock owned by the MAC driver.
func NewRoundRobinScheduler(state *cell.State, clock slotclock.SlotClock, opts ...SchedulerOption) *RoundRobinScheduler {
	cfg := state.Config()
	s := &RoundRobinScheduler{
		state:      state,
		cfg:        cfg,
		clock:      clock,
		translator: NewBitmapTranslator(cfg),
		mcs:        NewMCSMapper(),
		harq:       NewHARQManager(cfg.NumHARQProcesses),
		log:        logging.Noop(),
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleUplink implements Scheduler. The uplink RBG stride for a UE is
// NumRBGs divided by the UE's configured divisor, clamped to 1 when the
// division underflows.
func (s *RoundRobinScheduler) ScheduleUplink(slotNumber int) ([]model.Grant, error) {
	return s.schedule(slotNumber, model.Uplink, func(ue *cell.UEContext) int {
		divisor := s.cfg.UplinkStrideDivisors[ue.RNTI]
		if divisor <= 0 {
			divisor = 1
		}
		stride := s.cfg.Uplink.NumRBGs / divisor
		if stride == 0 {
			// Divisor exceeds the RBG count: unusually small bandwidth
			// for the configured population. Clamp rather than fail.
			s.metrics.StrideClamped()
			s.log.Warn(context.Background(), "uplink stride clamped to 1",
				logging.Int("rnti", int(ue.RNTI)),
				logging.Int("divisor", divisor),
				logging.Int("num_rbgs", s.cfg.Uplink.NumRBGs),
			)
			stride = 1
		}
		return stride
	})
}

// ScheduleDownlink implements Scheduler. The downlink stride is the UE
// population size: UE i takes every N-th RBG starting at its index.
func (s *RoundRobinScheduler) ScheduleDownlink(slotNumber int) ([]model.Grant, error) {
	numUEs := s.state.NumUEs()
	return s.schedule(slotNumber, model.Downlink, func(*cell.UEContext) int {
		return numUEs
	})
}

// schedule runs one scheduling pass. Both directions share this shape;
// only the stride policy differs.
func (s *RoundRobinScheduler) schedule(slotNumber int, dir model.Direction, strideFor func(*cell.UEContext) int) ([]model.Grant, error) {
	start := time.Now()
	defer func() {
		s.metrics.ScheduleDuration(dir, time.Since(start))
	}()

	carrier := s.cfg.Carrier(dir)
	offset := slotclock.Offset(slotNumber, s.clock.CurrentSlot(), s.clock.SlotsPerFrame())

	grants := make([]model.Grant, 0, s.state.NumUEs())
	var errs *multierror.Error

	// The walk takes the cell's write lock: grants advance each UE's
	// HARQ state in place, and a concurrent ops snapshot must not
	// observe it mid-update.
	s.state.ForEachUEMut(func(ue *cell.UEContext) {
		if !ue.HasPendingData(dir) {
			return
		}

		bitmap := s.allocateBitmap(ue, carrier.NumRBGs, strideFor(ue))
		rbs := s.translator.RBIndices(bitmap, dir)
		if len(rbs) == 0 {
			s.metrics.UESkipped(dir, SkipReasonEmptyAllocation)
			s.log.Warn(context.Background(), "no RBGs allocated, skipping UE",
				logging.Int("rnti", int(ue.RNTI)),
				logging.String("direction", dir.String()),
				logging.Int("slot", slotNumber),
			)
			return
		}

		mcsIndex, err := s.selectMCS(ue, dir, rbs)
		if err != nil {
			s.metrics.UESkipped(dir, SkipReasonInvalidCQI)
			s.log.Error(context.Background(), "CQI lookup failed, skipping UE",
				logging.Int("rnti", int(ue.RNTI)),
				logging.String("direction", dir.String()),
				logging.Int("slot", slotNumber),
				logging.String("error", err.Error()),
			)
			errs = multierror.Append(errs, &UESkippedError{
				RNTI:      ue.RNTI,
				Direction: dir,
				Slot:      slotNumber,
				Err:       err,
			})
			return
		}

		processID, ndi := s.harq.AssignNewProcess(ue, dir)

		grant := model.Grant{
			RNTI:                ue.RNTI,
			Direction:           dir,
			Type:                model.TransmissionNew,
			HARQProcessID:       processID,
			NDI:                 ndi,
			RBGAllocationBitmap: bitmap,
			StartSymbol:         grantStartSymbol,
			NumSymbols:          grantNumSymbols,
			SlotOffset:          offset,
			MCSIndex:            mcsIndex,
			RedundancyVersion:   0,
			DMRSLength:          grantDMRSLength,
			MappingType:         grantMappingType,
			NumLayers:           grantNumLayers,
			NumCDMGroups:        grantNumCDMGroups,
		}
		switch dir {
		case model.Uplink:
			grant.NumAntennaPorts = ulNumAntennaPorts
			grant.TPMI = ulTPMI
		case model.Downlink:
			grant.PrecodingMatrix = [][]float64{{1}}
			grant.FeedbackSlotOffset = dlFeedbackSlotOffset
		}

		s.metrics.GrantIssued(dir)
		s.log.Debug(context.Background(), "grant issued",
			logging.Int("rnti", int(ue.RNTI)),
			logging.String("direction", dir.String()),
			logging.Int("slot", slotNumber),
			logging.Int("harq_process", processID),
			logging.Bool("ndi", ndi),
			logging.Int("mcs", mcsIndex),
			logging.Int("num_rbs", len(rbs)),
		)
		grants = append(grants, grant)
	})

	return grants, errs.ErrorOrNil()
}

// allocateBitmap marks every stride-th RBG starting at the UE's 1-based
// index. A UE indexed beyond the RBG count gets an empty bitmap.
func (s *RoundRobinScheduler) allocateBitmap(ue *cell.UEContext, numRBGs, stride int) []uint8 {
	bitmap := make([]uint8, numRBGs)
	for i := int(ue.RNTI) - 1; i < numRBGs; i += stride {
		bitmap[i] = 1
	}
	return bitmap
}

// selectMCS averages the UE's reported CQI over the allocated RBs and
// maps the result to an MCS index. The -1 aligns the 1-based CQI scale
// with the 0-based table rows; an average below 1 therefore produces a
// negative lookup index and fails as an invalid CQI.
func (s *RoundRobinScheduler) selectMCS(ue *cell.UEContext, dir model.Direction, rbs []int) (int, error) {
	cqis := make([]float64, 0, len(rbs))
	for _, rb := range rbs {
		cqis = append(cqis, float64(ue.CQIReport[dir][rb]))
	}
	avg := stat.Mean(cqis, nil)

	return s.mcs.SelectMCS(int(math.Floor(avg)) - 1)
}
