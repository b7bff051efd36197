package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xcpipe/xcpipe/internal/errors"
	"github.com/xcpipe/xcpipe/internal/logparse"
	"github.com/xcpipe/xcpipe/internal/procstream"
)

// eventBufferSize bounds the live feed. When a consumer falls behind, older
// events are dropped so the newest line is always deliverable.
const eventBufferSize = 64

// Operation is one build or test invocation: a subprocess, a parser for its
// output, a live event feed, and a terminal result. Run at most once.
type Operation struct {
	id   string
	kind Kind
	cfg  Config
	spec procstream.Spec

	state atomic.Int32

	events          chan Event
	cancelRequested chan struct{}
	cancelOnce      atomic.Bool
}

// NewBuild creates a build operation for the given config.
func NewBuild(cfg Config) *Operation {
	return newOperation(KindBuild, cfg, Invocation(KindBuild, cfg))
}

// NewTest creates a test operation for the given config.
func NewTest(cfg Config) *Operation {
	return newOperation(KindTest, cfg, Invocation(KindTest, cfg))
}

func newOperation(kind Kind, cfg Config, spec procstream.Spec) *Operation {
	return &Operation{
		id:              uuid.NewString(),
		kind:            kind,
		cfg:             cfg,
		spec:            spec,
		events:          make(chan Event, eventBufferSize),
		cancelRequested: make(chan struct{}),
	}
}

// ID is the unique identifier stamped on every event this operation emits.
func (o *Operation) ID() string {
	return o.id
}

// Kind reports the operation kind.
func (o *Operation) Kind() Kind {
	return o.kind
}

// Status returns the current state. Reads are atomic with respect to
// transitions.
func (o *Operation) Status() Status {
	return Status(o.state.Load())
}

func (o *Operation) setStatus(s Status) {
	o.state.Store(int32(s))
}

// Events returns the live progress feed. It is closed when the operation
// reaches a terminal state. Consuming is optional.
func (o *Operation) Events() <-chan Event {
	return o.events
}

// Cancel requests cooperative cancellation. Idempotent and safe from any
// goroutine; the run loop observes it at the next line-read boundary.
func (o *Operation) Cancel() {
	if o.cancelOnce.CompareAndSwap(false, true) {
		close(o.cancelRequested)
	}
}

// RunBuild executes a build operation to completion and aggregates the result.
// Only a spawn failure is returned as an error; everything else, including
// timeouts and cancellation, degrades to a flagged result.
func (o *Operation) RunBuild(ctx context.Context) (*BuildResult, error) {
	if o.kind != KindBuild {
		return nil, errors.Newf("operation %s is %s, not a build", o.id, o.kind)
	}

	parser := logparse.NewBuildParser()
	outcome, err := o.stream(ctx, func(line procstream.OutputLine) {
		ev := parser.Feed(line.Text)
		o.publish(Event{
			OperationID: o.id,
			Kind:        o.kind,
			Seq:         line.Seq,
			Line:        line.Text,
			Build:       &ev,
		})
	})
	if err != nil {
		return nil, err
	}

	res := &BuildResult{
		Status:          outcome.status,
		ExitCode:        outcome.exit.Code,
		DurationSeconds: outcome.duration.Seconds(),
	}
	if outcome.status == StatusCompleted && outcome.exit.Code != 0 && len(parser.Errors()) == 0 {
		parser.RecordError(fmt.Sprintf("process exited with code %d", outcome.exit.Code))
	}
	res.Errors = parser.Errors()
	res.Warnings = parser.Warnings()
	res.Succeeded = outcome.status == StatusCompleted && parser.Succeeded(outcome.exit.Code)
	if outcome.status == StatusCompleted && !res.Succeeded {
		res.Status = StatusFailed
		o.setStatus(StatusFailed)
	}
	return res, nil
}

// RunTests executes a test operation to completion and aggregates the result.
// Partial results collected before a timeout or cancellation are preserved
// and flagged through Status.
func (o *Operation) RunTests(ctx context.Context) (*TestRunResult, error) {
	if o.kind != KindTest {
		return nil, errors.Newf("operation %s is %s, not a test run", o.id, o.kind)
	}

	parser := logparse.NewTestParser()
	outcome, err := o.stream(ctx, func(line procstream.OutputLine) {
		ev := parser.Feed(line.Text)
		o.publish(Event{
			OperationID: o.id,
			Kind:        o.kind,
			Seq:         line.Seq,
			Line:        line.Text,
			Test:        &ev,
		})
	})
	if err != nil {
		return nil, err
	}

	cases := parser.Cases()
	passed, failed, skipped := parser.Counts()
	res := &TestRunResult{
		Status:               outcome.status,
		ExitCode:             outcome.exit.Code,
		Total:                len(cases),
		Passed:               passed,
		Failed:               failed,
		Skipped:              skipped,
		TotalDurationSeconds: parser.TotalDuration(),
		Cases:                cases,
	}
	if total, _, seen := parser.Summary(); seen && total != len(cases) {
		res.Notes = append(res.Notes, fmt.Sprintf("runner reported %d executed tests, parsed %d case results", total, len(cases)))
	}
	res.Succeeded = outcome.status == StatusCompleted && outcome.exit.Code == 0 && failed == 0
	if outcome.status == StatusCompleted && !res.Succeeded {
		res.Status = StatusFailed
		o.setStatus(StatusFailed)
		if outcome.exit.Code != 0 && failed == 0 {
			res.Notes = append(res.Notes, fmt.Sprintf("process exited with code %d", outcome.exit.Code))
		}
	}
	return res, nil
}

type streamOutcome struct {
	exit     procstream.Exit
	status   Status
	duration time.Duration
}

// stream spawns the subprocess and pumps its output through onLine until the
// stream closes, the deadline fires, or cancellation is requested. The
// process is always reaped before stream returns.
func (o *Operation) stream(ctx context.Context, onLine func(procstream.OutputLine)) (streamOutcome, error) {
	o.setStatus(StatusSpawning)

	handle, err := procstream.Start(o.spec)
	if err != nil {
		o.setStatus(StatusFailed)
		close(o.events)
		return streamOutcome{}, err
	}

	lines, err := handle.Lines()
	if err != nil {
		// Unreachable for a fresh handle, but never leave a process unreaped.
		handle.Cancel()
		handle.Wait()
		o.setStatus(StatusFailed)
		close(o.events)
		return streamOutcome{}, err
	}

	o.setStatus(StatusStreaming)

	// The timeout clock starts at spawn, not at the first output line.
	var timeoutC <-chan time.Time
	if o.cfg.TimeoutSeconds > 0 {
		timer := time.NewTimer(time.Duration(o.cfg.TimeoutSeconds) * time.Second)
		defer timer.Stop()
		timeoutC = timer.C
	}

	status := StatusCompleted
loop:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			onLine(line)
		case <-o.cancelRequested:
			status = StatusCancelled
			break loop
		case <-ctx.Done():
			status = StatusCancelled
			break loop
		case <-timeoutC:
			status = StatusTimedOut
			break loop
		}
	}

	if status != StatusCompleted {
		handle.Cancel()
		// Discard whatever the process still emits so its readers can
		// finish and the process can be reaped. Aggregation stops at the
		// interruption point.
		for range lines {
		}
	}

	exit := handle.Wait()
	if status == StatusCompleted && exit.Cancelled {
		status = StatusCancelled
	}

	o.setStatus(status)
	close(o.events)

	return streamOutcome{
		exit:     exit,
		status:   status,
		duration: time.Since(handle.StartedAt()),
	}, nil
}

// publish delivers an event without ever blocking the run loop. When the
// buffer is full the oldest event is dropped first, so a stalled consumer
// still sees the newest output when it resumes.
func (o *Operation) publish(ev Event) {
	select {
	case o.events <- ev:
		return
	default:
	}
	select {
	case <-o.events:
	default:
	}
	select {
	case o.events <- ev:
	default:
	}
}
