// Package executor runs evaluators over a dataset stream.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/dataqa/internal/dataset"
	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/logging"
	"github.com/jonathan/dataqa/internal/types"
)

// outcomeError labels results whose evaluator returned an error
const outcomeError = "error"

// Record is one output line: the verdict of one evaluator for one unit
type Record struct {
	DataID    string        `json:"data_id"`
	Evaluator string        `json:"evaluator"`
	Result    *types.Result `json:"result"`
	Error     string        `json:"error"`
}

// Emitter receives records. Calls are serialized by the runner.
type Emitter func(rec Record) error

// JSONLinesEmitter writes each record as one JSON line
func JSONLinesEmitter(w io.Writer) Emitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return func(rec Record) error {
		return enc.Encode(rec)
	}
}

// EvaluatorSummary counts the outcomes of one evaluator
type EvaluatorSummary struct {
	Pass   int `json:"pass"`
	Fail   int `json:"fail"`
	Errors int `json:"errors"`
}

// Summary describes a finished run
type Summary struct {
	Units            int                          `json:"units"`
	Results          int                          `json:"results"`
	Failed           int                          `json:"failed"`
	Errors           int                          `json:"errors"`
	ConversionErrors int                          `json:"conversion_errors"`
	Evaluators       map[string]*EvaluatorSummary `json:"evaluators"`
	Duration         time.Duration                `json:"duration"`
}

// Runner evaluates every unit of a stream with every evaluator
type Runner struct {
	Evaluators  []evaluator.Evaluator
	Concurrency int  // units evaluated at once; 1 when not positive
	FailFast    bool // stop at the first conversion error
	Logger      *slog.Logger
	Metrics     *Metrics
}

// Run pulls units in order from one goroutine and fans evaluation out across
// at most Concurrency goroutines. Evaluator errors become records. Conversion
// errors are counted and skipped unless FailFast is set. Read errors and emit
// errors stop the run.
func (r *Runner) Run(ctx context.Context, stream *dataset.Stream, emit Emitter) (*Summary, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	if len(r.Evaluators) == 0 {
		return nil, fmt.Errorf("no evaluators configured")
	}

	logger := r.Logger
	if logger == nil {
		logger = logging.New("executor")
	}
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	summary := &Summary{Evaluators: make(map[string]*EvaluatorSummary, len(r.Evaluators))}
	for _, e := range r.Evaluators {
		summary.Evaluators[e.Name()] = &EvaluatorSummary{}
	}

	start := time.Now()
	logger.Info("run started", "evaluators", len(r.Evaluators), "concurrency", concurrency)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex // guards summary and emit
	var stopErr error

	for gCtx.Err() == nil {
		data, err := stream.Next(gCtx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var convErr *dataset.ConversionError
			if errors.As(err, &convErr) && !r.FailFast {
				r.Metrics.conversionError()
				mu.Lock()
				summary.ConversionErrors++
				mu.Unlock()
				logger.Warn("skipping record", "index", convErr.Index, "error", convErr.Cause)
				continue
			}
			stopErr = err
			break
		}

		r.Metrics.unit()
		mu.Lock()
		summary.Units++
		mu.Unlock()

		g.Go(func() error {
			return r.evaluateUnit(gCtx, data, logger, &mu, summary, emit)
		})
	}

	waitErr := g.Wait()
	summary.Duration = time.Since(start)

	// A worker failure cancels gCtx, which may surface as a read error
	err := stopErr
	if waitErr != nil && (err == nil || errors.Is(err, context.Canceled)) {
		err = waitErr
	}
	if err != nil {
		logger.Error("run aborted", "error", err, "units", summary.Units)
		return summary, err
	}
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}

	logger.Info("run finished",
		"units", summary.Units,
		"results", summary.Results,
		"failed", summary.Failed,
		"errors", summary.Errors,
		"conversion_errors", summary.ConversionErrors,
		"duration", summary.Duration)
	return summary, nil
}

func (r *Runner) evaluateUnit(ctx context.Context, data types.Data, logger *slog.Logger, mu *sync.Mutex, summary *Summary, emit Emitter) error {
	for _, e := range r.Evaluators {
		began := time.Now()
		result, err := e.Evaluate(ctx, data)
		elapsed := time.Since(began)

		rec := Record{DataID: data.ID, Evaluator: e.Name()}
		outcome := outcomeError
		if err != nil {
			rec.Error = err.Error()
			logger.Debug("evaluation failed", "data_id", data.ID, "evaluator", e.Name(), "error", err)
		} else {
			rec.Result = &result
			outcome = string(result.Outcome)
		}
		r.Metrics.result(e.Name(), outcome, elapsed)

		mu.Lock()
		counts := summary.Evaluators[e.Name()]
		switch {
		case err != nil:
			summary.Errors++
			counts.Errors++
		case result.Failed():
			summary.Results++
			summary.Failed++
			counts.Fail++
		default:
			summary.Results++
			counts.Pass++
		}
		emitErr := emit(rec)
		mu.Unlock()

		if emitErr != nil {
			return fmt.Errorf("failed to emit result: %w", emitErr)
		}
	}
	return nil
}
