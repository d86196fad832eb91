package core

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/internal/logging"
	"github.com/signalsfoundry/gnb-mac-sim/model"
	"github.com/signalsfoundry/gnb-mac-sim/slotclock"
)

// GrantListener receives the grants produced for one direction of one
// slot. Listeners are how the transmission layer and RLC byte-quota
// accounting attach to the driver; they must not call back into the
// scheduler.
type GrantListener func(slot int, dir model.Direction, grants []model.Grant)

// MACDriver owns the per-slot cadence: it invokes the scheduler once
// per direction per slot, fans grants out to listeners, and advances
// the slot counter. It is the only caller of the Scheduler, so the
// strict single-threaded sequencing the engine requires holds by
// construction.
type MACDriver struct {
	state *cell.State
	sched Scheduler
	clock *slotclock.Counter

	log            logging.Logger
	grantListeners []GrantListener
}

// NewMACDriver wires a driver over a scheduler and its slot counter.
func NewMACDriver(state *cell.State, sched Scheduler, clock *slotclock.Counter, log logging.Logger) *MACDriver {
	if log == nil {
		log = logging.Noop()
	}
	return &MACDriver{
		state: state,
		sched: sched,
		clock: clock,
		log:   log,
	}
}

// RegisterGrantListener adds a consumer for every scheduling pass.
func (d *MACDriver) RegisterGrantListener(fn GrantListener) {
	d.grantListeners = append(d.grantListeners, fn)
}

// RunSlots executes n consecutive slots, stopping early if ctx is
// cancelled. Per-UE skip diagnostics from the scheduler are logged, not
// returned: a skipped UE is reconsidered next slot and must not halt
// the run.
func (d *MACDriver) RunSlots(ctx context.Context, n int) error {
	tracer := otel.Tracer("gnb-mac-sim/core")

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		slot := d.clock.CurrentSlot()
		slotCtx, span := tracer.Start(ctx, "schedule_slot", trace.WithAttributes(
			attribute.Int("mac.slot", slot),
		))

		d.runDirection(slotCtx, slot, model.Uplink, d.sched.ScheduleUplink, span)
		d.runDirection(slotCtx, slot, model.Downlink, d.sched.ScheduleDownlink, span)

		span.End()
		d.clock.Advance()
	}
	return nil
}

func (d *MACDriver) runDirection(ctx context.Context, slot int, dir model.Direction, schedule func(int) ([]model.Grant, error), span trace.Span) {
	grants, err := schedule(slot)
	if err != nil {
		d.log.Warn(ctx, "UEs skipped during scheduling pass",
			logging.Int("slot", slot),
			logging.String("direction", dir.String()),
			logging.String("error", err.Error()),
		)
	}
	span.SetAttributes(attribute.Int("mac.grants."+dir.String(), len(grants)))

	for _, fn := range d.grantListeners {
		fn(slot, dir, grants)
	}
}
