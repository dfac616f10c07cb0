package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/otioremap/internal/collect"
	"github.com/roach88/otioremap/internal/compiler"
	"github.com/roach88/otioremap/internal/editorial"
	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
	"github.com/roach88/otioremap/internal/store"
	"github.com/roach88/otioremap/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps against one compiled document and records collect
// steps in an in-memory ledger with a deterministic clock.
type Harness struct {
	doc      *compiler.Document
	source   string
	settings collect.Settings
	store    *store.Store
	ledger   *store.Ledger
	clock    *testutil.DeterministicClock
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Compile the scenario document
// 2. Create fresh in-memory ledger
// 3. Execute flow steps with expect validation
// 4. Evaluate ledger assertions
// 5. Return result with pass/fail, trace, and errors
//
// A returned error means the scenario could not run (bad document, unknown
// clip); engine failures are step outcomes and end up in the trace.
func Run(scenario *Scenario) (*Result, error) {
	comp, err := compiler.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler: %w", err)
	}
	doc, err := comp.CompileFile(scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to compile document: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	clock := testutil.NewDeterministicClock()
	ledger, err := store.NewLedger(ctx, st,
		store.WithClock(clock),
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("rec")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	h := &Harness{
		doc:      doc,
		source:   scenario.Document,
		settings: scenario.Settings,
		store:    st,
		ledger:   ledger,
		clock:    clock,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{
		Store:    st,
		Ctx:      ctx,
		Sessions: result.Sessions,
	}
	for _, errMsg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep runs one step, appends it to the trace and checks its expect
// clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	var (
		out    map[string]any
		err    error
		target string
	)

	switch step.Op {
	case OpResolve, OpRemap:
		clip, cerr := h.findClip(step.Clip)
		if cerr != nil {
			return cerr
		}
		target = clip.Name
		if step.Op == OpResolve {
			out, err = resolve(clip, step)
		} else {
			out, err = remap(clip, step)
		}
	case OpCollect:
		if h.doc.Kind != compiler.KindTimeline {
			return fmt.Errorf("collect needs a timeline document, got %s", h.doc.Kind)
		}
		target = h.doc.Timeline.Name
		out, err = h.collect(ctx, result)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	event := TraceEvent{Op: step.Op, Clip: target, Result: out}
	if err != nil {
		var re *editorial.RangeError
		if !errors.As(err, &re) {
			return err
		}
		event.Result = nil
		event.Error = string(re.Code)
	}
	event.Seq = h.clock.Next()
	result.AddTrace(event)

	h.checkExpect(index, step, event, err, result)

	h.logger.Info("flow step completed",
		"step", index,
		"op", step.Op,
		"clip", target,
		"error", event.Error,
	)
	return nil
}

func (h *Harness) checkExpect(index int, step Step, event TraceEvent, err error, result *Result) {
	switch {
	case step.Expect == nil:
		if err != nil {
			result.AddError(fmt.Sprintf("flow[%d]: %s %s failed: %v", index, step.Op, event.Clip, err))
		}
	case step.Expect.Error != "":
		if event.Error != step.Expect.Error {
			result.AddError(fmt.Sprintf("flow[%d]: %s %s: expected error %s, got %s",
				index, step.Op, event.Clip, step.Expect.Error, outcome(event)))
		}
	default:
		if err != nil {
			result.AddError(fmt.Sprintf("flow[%d]: %s %s failed: %v", index, step.Op, event.Clip, err))
			return
		}
		if path, ok := matchSubset(event.Result, step.Expect.Result); !ok {
			result.AddError(fmt.Sprintf("flow[%d]: %s %s: expected %s = %s, got %s",
				index, step.Op, event.Clip, path,
				describe(lookupPath(step.Expect.Result, path)),
				describe(lookupPath(event.Result, path))))
		}
	}
}

func outcome(event TraceEvent) string {
	if event.Error != "" {
		return event.Error
	}
	return "success"
}

// findClip returns the named clip of a timeline document, or the clip of a
// clip document.
func (h *Harness) findClip(name string) (*otio.Clip, error) {
	if h.doc.Kind == compiler.KindClip {
		return h.doc.Clip, nil
	}
	if name == "" {
		return nil, fmt.Errorf("clip is required for timeline documents")
	}
	for _, clip := range h.doc.Timeline.EachClip() {
		if clip.Name == name {
			return clip, nil
		}
	}
	return nil, fmt.Errorf("clip %q not found in timeline %q", name, h.doc.Timeline.Name)
}

func resolve(clip *otio.Clip, step Step) (map[string]any, error) {
	mr, err := editorial.GetMediaRangeWithRetimes(clip, step.HandleStart, step.HandleEnd)
	if err != nil {
		return nil, err
	}
	return mr.AsMap(), nil
}

func remap(clip *otio.Clip, step Step) (map[string]any, error) {
	rate := step.Rate
	if rate == 0 {
		if available, err := clip.AvailableRange(); err == nil {
			rate = available.StartTime.Rate
		}
	}
	r := opentime.NewTimeRange(opentime.New(step.Start, rate), opentime.New(step.Duration, rate))

	in, out, err := editorial.RemapRangeOnFileSequence(clip, r)
	if err != nil {
		return nil, err
	}
	return map[string]any{"frameIn": in, "frameOut": out}, nil
}

// collect runs the shot collector over the timeline and records the outcome
// in a new ledger session.
func (h *Harness) collect(ctx context.Context, result *Result) (map[string]any, error) {
	tl := h.doc.Timeline
	collector := collect.NewShotCollector(h.settings, collect.WithLogger(h.logger))
	collected, err := collector.CollectTimeline(tl)
	if err != nil {
		return nil, fmt.Errorf("collect timeline: %w", err)
	}

	sess, err := h.ledger.BeginSession(ctx, h.source, tl.Name, h.settings.AsMap())
	if err != nil {
		return nil, err
	}
	result.Sessions = append(result.Sessions, sess.ID)

	instances := make([]any, 0, len(collected.Instances))
	for _, inst := range collected.Instances {
		if _, _, err := h.ledger.RecordShot(ctx, sess.ID, inst.Name, inst.Track, inst.AsMap()); err != nil {
			return nil, err
		}
		instances = append(instances, inst.Name)
	}
	skipped := make([]any, 0, len(collected.Skipped))
	for _, sc := range collected.Skipped {
		if err := h.ledger.RecordSkipped(ctx, sess.ID, sc.Name, sc.Track, sc.Code(), sc.Err.Error()); err != nil {
			return nil, err
		}
		skipped = append(skipped, sc.Name)
	}

	return map[string]any{
		"session":   sess.ID,
		"instances": instances,
		"skipped":   skipped,
	}, nil
}
