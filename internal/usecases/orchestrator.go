package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abelzeko/transit-board/internal/repository"
	"github.com/robfig/cron/v3"
)

// DefaultOperatorWait bounds how long a cycle waits for an operator message
const DefaultOperatorWait = 120 * time.Second

// Commit messages used when publishing each pipeline's tables
const (
	BusCommitMessage        = "chiba_timetable.csv 更新"
	DisruptionCommitMessage = "運行情報を更新"
)

// MessageSource delivers an operator-entered message, waiting at most timeout
type MessageSource interface {
	AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error)
}

// Publisher pushes changed output files somewhere downstream consumers can read them
type Publisher interface {
	Publish(ctx context.Context, message string, paths ...string) error
}

// OperatorConfig wires the optional operator message step
type OperatorConfig struct {
	Source MessageSource
	Wait   time.Duration
	File   string
}

// Orchestrator drives both pipelines from one control loop
type Orchestrator struct {
	bus                *BusUseCase
	disruption         *DisruptionUseCase
	busSchedule        cron.Schedule
	disruptionSchedule cron.Schedule
	operator           OperatorConfig
	publisher          Publisher
	Now                func() time.Time
}

// NewOrchestrator parses the two schedules (cron specs or "@every" descriptors) and builds the loop.
// operator.Source and publisher may be nil.
func NewOrchestrator(bus *BusUseCase, disruption *DisruptionUseCase, busSpec, disruptionSpec string,
	operator OperatorConfig, publisher Publisher) (*Orchestrator, error) {
	busSchedule, err := cron.ParseStandard(busSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid bus schedule %q: %w", busSpec, err)
	}
	disruptionSchedule, err := cron.ParseStandard(disruptionSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid disruption schedule %q: %w", disruptionSpec, err)
	}
	if operator.Wait <= 0 {
		operator.Wait = DefaultOperatorWait
	}

	return &Orchestrator{
		bus:                bus,
		disruption:         disruption,
		busSchedule:        busSchedule,
		disruptionSchedule: disruptionSchedule,
		operator:           operator,
		publisher:          publisher,
		Now:                time.Now,
	}, nil
}

// Run executes both pipelines immediately, then each on its own schedule, until ctx is cancelled.
// A failing cycle is logged and never stops the loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := o.Now()
	nextBus, nextDisruption := start, start

	for {
		now := o.Now()
		if !now.Before(nextBus) {
			o.RunBusCycle(ctx)
			nextBus = o.busSchedule.Next(o.Now())
		}
		if ctx.Err() != nil {
			return nil
		}

		if !now.Before(nextDisruption) {
			o.RunDisruptionCycle(ctx, true)
			nextDisruption = o.disruptionSchedule.Next(o.Now())
		}
		if ctx.Err() != nil {
			return nil
		}

		wake := nextBus
		if nextDisruption.Before(wake) {
			wake = nextDisruption
		}
		wait := wake.Sub(o.Now())
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Shutting down cycle loop")
			return nil
		case <-timer.C:
		}
	}
}

// RunBusCycle refreshes the bus schedule and publishes it
func (o *Orchestrator) RunBusCycle(ctx context.Context) {
	if _, err := o.bus.RefreshDepartures(ctx); err != nil {
		log.Printf("Bus cycle failed: %v", err)
		return
	}
	o.publish(ctx, BusCommitMessage, o.bus.OutputPath())
}

// RunDisruptionCycle refreshes the line report and corridor view, optionally waits for an
// operator message, then publishes everything the cycle touched.
func (o *Orchestrator) RunDisruptionCycle(ctx context.Context, withOperator bool) {
	paths := o.disruption.Paths()
	published := []string{paths.Report, paths.Corridor}

	if _, err := o.disruption.RefreshLineStatus(ctx); err != nil {
		log.Printf("Disruption cycle failed: %v", err)
		return
	}

	if withOperator && o.operator.Source != nil {
		if o.acceptOperatorMessage(ctx) {
			published = append(published, o.operator.File)
		}
	}
	if ctx.Err() != nil {
		return
	}

	o.publish(ctx, DisruptionCommitMessage, published...)
}

// acceptOperatorMessage replaces the operator file when a non-empty message arrives in time
func (o *Orchestrator) acceptOperatorMessage(ctx context.Context) bool {
	text, ok, err := o.operator.Source.AwaitMessage(ctx, o.operator.Wait)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Warning: operator message unavailable: %v", err)
		}
		return false
	}
	if !ok {
		log.Println("No operator message, skipping")
		return false
	}
	if err := repository.WriteText(o.operator.File, text); err != nil {
		log.Printf("Warning: failed to write operator message: %v", err)
		return false
	}
	log.Printf("Wrote operator message to %s", o.operator.File)
	return true
}

func (o *Orchestrator) publish(ctx context.Context, message string, paths ...string) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, message, paths...); err != nil {
		log.Printf("Warning: publish failed, will retry next cycle: %v", err)
	}
}
