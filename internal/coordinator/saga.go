// Package coordinator runs multi-step operations as sagas: steps execute in
// order and, when one fails, the steps that already succeeded are compensated
// in reverse order. Every transition is appended to a checkout log.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
)

// Step is a single unit of work with a compensating action.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// FuncStep adapts a pair of functions to Step. A nil Undo compensates with a
// no-op.
type FuncStep struct {
	StepName string
	Do       func(ctx context.Context) error
	Undo     func(ctx context.Context) error
}

func (s FuncStep) Name() string { return s.StepName }

func (s FuncStep) Execute(ctx context.Context) error { return s.Do(ctx) }

func (s FuncStep) Compensate(ctx context.Context) error {
	if s.Undo == nil {
		return nil
	}
	return s.Undo(ctx)
}

// Orchestrator executes a fixed list of steps.
type Orchestrator struct {
	id    string
	steps []Step
	repo  checkoutlog.Repository // nil-safe
}

// NewOrchestrator returns an orchestrator whose log entries are keyed by id.
// repo may be nil, in which case transitions are only logged.
func NewOrchestrator(id string, steps []Step, repo checkoutlog.Repository) *Orchestrator {
	return &Orchestrator{id: id, steps: steps, repo: repo}
}

// Start runs the steps sequentially. payload is recorded with the STARTED
// entry. On failure the successful steps are compensated LIFO and the
// failing step's error is returned wrapped.
func (o *Orchestrator) Start(ctx context.Context, payload string) error {
	o.record(ctx, checkoutlog.StatusStarted, "", payload, nil)

	var done []Step
	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing step", "checkout_id", o.id, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "step failed, rolling back", "checkout_id", o.id, "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, checkoutlog.StatusFailed, step.Name(), "", errs)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		done = append(done, step)
		o.record(ctx, checkoutlog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, checkoutlog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "checkout saga completed", "checkout_id", o.id)
	return nil
}

// rollback compensates steps in reverse and returns the compensation failures.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.record(ctx, checkoutlog.StatusCompensating, step.Name(), "", nil)
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "checkout_id", o.id, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status checkoutlog.Status, step, payload string, errs []string) {
	if o.repo == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, o.id, status, step, payload, errs)
	if err := o.repo.Save(context.WithoutCancel(ctx), entry); err != nil {
		slog.ErrorContext(ctx, "failed to write checkout log", "checkout_id", o.id, "status", status, "error", err)
	}
}
