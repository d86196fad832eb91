package cell

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/gnb-mac-sim/model"
)

var (
	// ErrUENotFound indicates a requested RNTI is not registered.
	ErrUENotFound = errors.New("UE not found")
	// ErrBadCQIReport indicates a CQI report failed validation.
	ErrBadCQIReport = errors.New("invalid CQI report")
	// ErrBadBufferStatus indicates a buffer-status update failed validation.
	ErrBadBufferStatus = errors.New("invalid buffer status")
)

// EventType indicates what kind of change happened in the cell state.
type EventType int

const (
	EventBufferUpdated EventType = iota
	EventCQIUpdated
)

// Event is emitted to subscribers when a UE's externally owned inputs
// change between slots.
type Event struct {
	Type      EventType
	RNTI      uint16
	Direction model.Direction
}

// State is the in-memory registry of UE contexts for one cell. It is
// thread-safe so the driver can refresh buffers/CQI between slots while
// an ops surface reads snapshots; a scheduling pass holds the write
// lock for the whole walk (ForEachUEMut), so snapshot readers never see
// a grant's HARQ update half-applied.
type State struct {
	mu sync.RWMutex

	cfg model.CellConfig
	ues []*UEContext // index i holds RNTI i+1

	subs []func(Event)
}

// NewState validates the cell configuration and creates the fixed UE
// population: RNTIs 1..NumUEs with empty buffers, zeroed CQI reports
// sized to the carrier, and HARQ state at the "none used yet" sentinel.
func NewState(cfg model.CellConfig) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ues := make([]*UEContext, cfg.NumUEs)
	for i := range ues {
		ue := &UEContext{RNTI: uint16(i + 1)}
		for dir := model.Direction(0); dir < model.NumDirections; dir++ {
			ue.CQIReport[dir] = make([]int, cfg.Carrier(dir).NumRBs())
			ue.HARQ[dir] = model.NewHARQState(cfg.NumHARQProcesses)
		}
		ues[i] = ue
	}

	return &State{cfg: cfg, ues: ues}, nil
}

// Config returns the immutable cell configuration.
func (s *State) Config() model.CellConfig {
	return s.cfg
}

// NumUEs returns the fixed UE population size.
func (s *State) NumUEs() int {
	return len(s.ues)
}

// UE returns the context for the given RNTI.
//
// The pointer refers to live state so the scheduling engine can advance
// HARQ bookkeeping in place; callers outside a scheduling pass must
// treat it as read-only.
func (s *State) UE(rnti uint16) (*UEContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rnti < 1 || int(rnti) > len(s.ues) {
		return nil, fmt.Errorf("%w: RNTI %d", ErrUENotFound, rnti)
	}
	return s.ues[rnti-1], nil
}

// ForEachUE visits every UE in stable RNTI order (1..N) under the read
// lock. Callbacks must treat the contexts as read-only; mutators on s
// would self-deadlock.
func (s *State) ForEachUE(fn func(*UEContext)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ue := range s.ues {
		fn(ue)
	}
}

// ForEachUEMut visits every UE in stable RNTI order (1..N) under the
// write lock, excluding snapshot readers for the duration of the walk.
// This is the iteration the scheduling pass runs under: it advances
// HARQ bookkeeping in place through the visited pointers.
func (s *State) ForEachUEMut(fn func(*UEContext)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ue := range s.ues {
		fn(ue)
	}
}

// UpdateBufferStatus replaces the per-logical-channel byte counts for a
// UE and direction. Counts must be non-negative.
func (s *State) UpdateBufferStatus(rnti uint16, dir model.Direction, byteCounts []int) error {
	for lcid, b := range byteCounts {
		if b < 0 {
			return fmt.Errorf("%w: negative count %d on logical channel %d", ErrBadBufferStatus, b, lcid)
		}
	}

	s.mu.Lock()
	if rnti < 1 || int(rnti) > len(s.ues) {
		s.mu.Unlock()
		return fmt.Errorf("%w: RNTI %d", ErrUENotFound, rnti)
	}
	ue := s.ues[rnti-1]
	ue.BufferStatus[dir] = append(ue.BufferStatus[dir][:0], byteCounts...)
	s.mu.Unlock()

	s.notify(Event{Type: EventBufferUpdated, RNTI: rnti, Direction: dir})
	return nil
}

// UpdateCQIReport replaces the per-RB CQI values for a UE and direction.
// The report must cover exactly the carrier's RB count with values in
// 0..15.
func (s *State) UpdateCQIReport(rnti uint16, dir model.Direction, report []int) error {
	want := s.cfg.Carrier(dir).NumRBs()
	if len(report) != want {
		return fmt.Errorf("%w: got %d RBs, carrier has %d", ErrBadCQIReport, len(report), want)
	}
	for rb, cqi := range report {
		if cqi < 0 || cqi > 15 {
			return fmt.Errorf("%w: CQI %d at RB %d out of range 0..15", ErrBadCQIReport, cqi, rb)
		}
	}

	s.mu.Lock()
	if rnti < 1 || int(rnti) > len(s.ues) {
		s.mu.Unlock()
		return fmt.Errorf("%w: RNTI %d", ErrUENotFound, rnti)
	}
	ue := s.ues[rnti-1]
	ue.CQIReport[dir] = append(ue.CQIReport[dir][:0], report...)
	s.mu.Unlock()

	s.notify(Event{Type: EventCQIUpdated, RNTI: rnti, Direction: dir})
	return nil
}

// Subscribe registers a callback invoked after every buffer or CQI
// update. Callbacks run outside the state lock.
func (s *State) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *State) notify(ev Event) {
	s.mu.RLock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// UESnapshot is a copy of one UE's state suitable for serialization on
// the ops surface.
type UESnapshot struct {
	RNTI            uint16          `json:"rnti"`
	UplinkBuffer    []int           `json:"uplink_buffer"`
	DownlinkBuffer  []int           `json:"downlink_buffer"`
	UplinkHARQ      model.HARQState `json:"uplink_harq"`
	DownlinkHARQ    model.HARQState `json:"downlink_harq"`
	UplinkBufferSum int             `json:"uplink_buffer_sum"`
	DownlinkBufSum  int             `json:"downlink_buffer_sum"`
}

// Snapshot copies the current state of every UE. The copies are safe to
// hold after the call returns.
func (s *State) Snapshot() []UESnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UESnapshot, 0, len(s.ues))
	for _, ue := range s.ues {
		snap := UESnapshot{
			RNTI:            ue.RNTI,
			UplinkBuffer:    append([]int(nil), ue.BufferStatus[model.Uplink]...),
			DownlinkBuffer:  append([]int(nil), ue.BufferStatus[model.Downlink]...),
			UplinkBufferSum: ue.BufferSum(model.Uplink),
			DownlinkBufSum:  ue.BufferSum(model.Downlink),
		}
		snap.UplinkHARQ = model.HARQState{
			LastProcessID: ue.HARQ[model.Uplink].LastProcessID,
			NDI:           append([]bool(nil), ue.HARQ[model.Uplink].NDI...),
		}
		snap.DownlinkHARQ = model.HARQState{
			LastProcessID: ue.HARQ[model.Downlink].LastProcessID,
			NDI:           append([]bool(nil), ue.HARQ[model.Downlink].NDI...),
		}
		out = append(out, snap)
	}
	return out
}
