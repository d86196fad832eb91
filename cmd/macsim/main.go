package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/gnb-mac-sim/cell"
	"github.com/signalsfoundry/gnb-mac-sim/core"
	"github.com/signalsfoundry/gnb-mac-sim/internal/httpserver"
	"github.com/signalsfoundry/gnb-mac-sim/internal/logging"
	"github.com/signalsfoundry/gnb-mac-sim/internal/observability"
	"github.com/signalsfoundry/gnb-mac-sim/model"
	"github.com/signalsfoundry/gnb-mac-sim/slotclock"
)

func main() {
	slots := flag.Int("slots", 100, "number of slots to simulate")
	scenarioPath := flag.String("scenario", "", "path to a JSON cell scenario; omit for the built-in default")
	opsAddr := flag.String("ops-addr", ":9090", "HTTP address for /metrics, /healthz and the cell snapshot API")
	seed := flag.Int64("seed", 1, "seed for the synthetic traffic generator")
	drainBytes := flag.Int("drain-bytes", 1500, "bytes drained from a UE buffer per grant")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewSchedulerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	state, err := buildCell(*scenarioPath, log)
	if err != nil {
		log.Error(ctx, "failed to build cell", logging.String("error", err.Error()))
		os.Exit(1)
	}
	collector.SetActiveUEs(state.NumUEs())

	clock, err := slotclock.NewCounter(state.Config().SlotsPerFrame)
	if err != nil {
		log.Error(ctx, "failed to build slot counter", logging.String("error", err.Error()))
		os.Exit(1)
	}

	sched := core.NewRoundRobinScheduler(state, clock,
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
	)
	driver := core.NewMACDriver(state, sched, clock, log)

	// Grant consumer: logs each pass and notifies the (simulated) RLC
	// layer of its byte quota by draining the served buffers.
	driver.RegisterGrantListener(func(slot int, dir model.Direction, grants []model.Grant) {
		for _, g := range grants {
			log.Info(ctx, "grant",
				logging.Int("slot", slot),
				logging.String("direction", dir.String()),
				logging.Int("rnti", int(g.RNTI)),
				logging.Int("harq_process", g.HARQProcessID),
				logging.Bool("ndi", g.NDI),
				logging.Int("mcs", g.MCSIndex),
				logging.Int("slot_offset", g.SlotOffset),
			)
		}
		drainBuffers(state, dir, grants, *drainBytes, log)
	})

	// Synthetic traffic: refresh buffers and CQI between slots, never
	// during a scheduling pass.
	traffic := newTrafficGenerator(state, *seed, log)
	clock.RegisterListener(func(int) { traffic.Step() })
	traffic.Step()

	opsSrv := serveOps(*opsAddr, state, collector, log)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	log.Info(ctx, "starting MAC simulation",
		logging.Int("slots", *slots),
		logging.Int("num_ues", state.NumUEs()),
		logging.Int("slots_per_frame", state.Config().SlotsPerFrame),
	)
	if err := driver.RunSlots(runCtx, *slots); err != nil {
		log.Warn(ctx, "simulation stopped early", logging.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if opsSrv != nil {
		_ = opsSrv.Shutdown(shutdownCtx)
	}
	log.Info(ctx, "simulation complete")
}

// buildCell loads the scenario file when given one, otherwise it
// constructs a small default cell: 4 UEs, 8 RBGs each way, 16 HARQ
// processes, 20-slot frames.
func buildCell(path string, log logging.Logger) (*cell.State, error) {
	if path == "" {
		cfg := model.CellConfig{
			NumUEs:           4,
			NumHARQProcesses: 16,
			SlotsPerFrame:    20,
			Uplink:           model.CarrierConfig{NumRBGs: 8, RBGSize: 4},
			Downlink:         model.CarrierConfig{NumRBGs: 8, RBGSize: 4},
		}
		return cell.NewState(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	state, summary, err := cell.LoadScenario(f)
	if err != nil {
		return nil, err
	}
	log.Info(context.Background(), "scenario loaded",
		logging.String("path", path),
		logging.Int("num_ues", summary.Config.NumUEs),
		logging.Int("seeded_buffers", len(summary.SeededUEs)),
		logging.Int("seeded_cqis", len(summary.SeededCQIs)),
	)
	return state, nil
}

// drainBuffers removes up to quota bytes from each granted UE's buffer,
// standing in for the RLC layer consuming its byte quota.
func drainBuffers(state *cell.State, dir model.Direction, grants []model.Grant, quota int, log logging.Logger) {
	for _, g := range grants {
		ue, err := state.UE(g.RNTI)
		if err != nil {
			log.Warn(context.Background(), "grant for unknown UE, nothing to drain",
				logging.Int("rnti", int(g.RNTI)),
				logging.String("direction", dir.String()),
			)
			continue
		}

		remaining := quota
		buf := append([]int(nil), ue.BufferStatus[dir]...)
		for lc := range buf {
			if remaining <= 0 {
				break
			}
			served := buf[lc]
			if served > remaining {
				served = remaining
			}
			buf[lc] -= served
			remaining -= served
		}
		if err := state.UpdateBufferStatus(g.RNTI, dir, buf); err != nil {
			log.Debug(context.Background(), "buffer drain rejected",
				logging.Int("rnti", int(g.RNTI)),
				logging.String("direction", dir.String()),
				logging.String("error", err.Error()),
			)
		}
	}
}

func serveOps(addr string, state *cell.State, collector *observability.SchedulerCollector, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewServer(state, collector),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "ops server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving ops endpoints", logging.String("addr", addr))
	return srv
}
