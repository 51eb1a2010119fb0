package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/agent/telemetry"
	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/reasoner"
	"github.com/voyagent/voyagent/internal/tools"
)

var tracer trace.Tracer = otel.Tracer("voyagent/internal/agent/orchestrator")

// Orchestrator wires planner, executor and synthesizer into the trip
// planning pipeline. It is safe for concurrent use: per-request state
// lives in the AgentState created for each run.
type Orchestrator struct {
	cfg       *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	gateway     *tools.Gateway
	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
}

// NewOrchestrator builds the pipeline from configuration. A reasoner is
// attached only when one is configured; the deterministic fallbacks carry
// the pipeline otherwise.
func NewOrchestrator(cfg *config.Config, t *telemetry.Telemetry) (*Orchestrator, error) {
	gateway, err := tools.NewGateway(cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool gateway: %w", err)
	}

	var r reasoner.Reasoner
	if cfg.Reasoner.Configured() {
		r = reasoner.NewClient(cfg.Reasoner)
	}

	return &Orchestrator{
		cfg:         cfg,
		logger:      log.New(log.Writer(), "[ORCHESTRATOR] ", log.LstdFlags),
		telemetry:   t,
		gateway:     gateway,
		planner:     NewPlanner(r, t),
		executor:    NewExecutor(gateway, t),
		synthesizer: NewSynthesizer(r),
	}, nil
}

// Close releases the gateway's resources.
func (o *Orchestrator) Close() error {
	return o.gateway.Close()
}

// PlanTrip runs the full pipeline for one request: plan, execute with
// bounded re-planning, synthesize. Tool failures degrade the itinerary;
// only an invalid request or a cancelled context error the run.
func (o *Orchestrator) PlanTrip(ctx context.Context, req UserRequest) (*TripResult, error) {
	started := time.Now()
	runID := uuid.New().String()

	ctx, span := tracer.Start(ctx, "orchestrator.plan_trip",
		trace.WithAttributes(
			attribute.String("trip.run_id", runID),
			attribute.String("trip.destination", req.Destination),
			attribute.Bool("trip.use_mocks", req.Flags.UseMocks),
		))
	defer span.End()

	if err := req.Validate(); err != nil {
		o.telemetry.RecordRequest("invalid")
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid trip request: %w", err)
	}

	o.logger.Printf("[%s] planning trip %s -> %s (%s to %s, $%.0f)",
		runID, req.Origin, req.Destination, req.StartDate, req.EndDate, req.BudgetTotal)

	plan, err := o.planner.Plan(ctx, req)
	if err != nil {
		o.telemetry.RecordRequest("failed")
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	state := &AgentState{
		RunID:   runID,
		Request: req,
		Plans:   []ExecutionPlan{plan},
		Ledger:  budget.NewLedger(req.BudgetTotal, plan.Allocation),
		Replans: make(map[string]int),
	}

	if err := o.executor.Execute(ctx, state); err != nil {
		o.telemetry.RecordRequest("cancelled")
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("execution aborted: %w", err)
	}

	itinerary := o.synthesizer.Synthesize(ctx, state)

	elapsed := time.Since(started)
	o.telemetry.RecordRequest("ok")
	o.telemetry.RecordTripCost(state.Budget.Total - state.Budget.Remaining)
	o.telemetry.RecordDuration(elapsed)
	span.SetAttributes(
		attribute.Int("trip.plan_versions", len(state.Plans)),
		attribute.Int("trip.trace_len", len(state.Trace)),
		attribute.StringSlice("trip.flags", state.Flags),
	)

	o.logger.Printf("[%s] done in %s: %d plan versions, %d trace entries, flags=%v",
		runID, elapsed.Round(time.Millisecond), len(state.Plans), len(state.Trace), state.Flags)

	return &TripResult{
		RunID:     runID,
		Request:   req,
		State:     state,
		Itinerary: itinerary,
		Elapsed:   elapsed,
	}, nil
}
