package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dataqa/internal/convert"
	"github.com/jonathan/dataqa/internal/dataset"
	"github.com/jonathan/dataqa/internal/datasource"
	"github.com/jonathan/dataqa/internal/evaluator"
	"github.com/jonathan/dataqa/internal/logging"
	"github.com/jonathan/dataqa/internal/types"
)

// memSource serves records from memory, then readErr (or io.EOF)
type memSource struct {
	records []datasource.Record
	readErr error
}

func (s *memSource) SourceType() string      { return "memory" }
func (s *memSource) ToDict() map[string]any { return map[string]any{"records": len(s.records)} }
func (s *memSource) Load(context.Context) (datasource.Handle, error) {
	return &memHandle{src: s}, nil
}

type memHandle struct {
	src *memSource
	pos int
}

func (h *memHandle) Next(context.Context) (datasource.Record, error) {
	if h.pos >= len(h.src.records) {
		if h.src.readErr != nil {
			return nil, h.src.readErr
		}
		return nil, io.EOF
	}
	rec := h.src.records[h.pos]
	h.pos++
	return rec, nil
}

func (h *memHandle) Close() error { return nil }

func openStream(t *testing.T, src *memSource) *dataset.Stream {
	t.Helper()
	ds, err := dataset.New(context.Background(), "memory", src, convert.JSON(convert.Options{}), dataset.Options{Namer: dataset.NewNamer()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds.GetData()
}

func records(n int) []datasource.Record {
	recs := make([]datasource.Record, n)
	for i := range recs {
		recs[i] = datasource.Record{"id": fmt.Sprintf("u%d", i), "content": fmt.Sprintf("text %d", i)}
	}
	return recs
}

func emptyRule() evaluator.Evaluator {
	return evaluator.NewRule("content_null", func(d types.Data) evaluator.Verdict {
		if strings.TrimSpace(d.Content) == "" {
			return evaluator.Verdict{Fail: true, Type: "QUALITY_BAD_EFFECTIVENESS", Name: "RuleContentNull"}
		}
		return evaluator.Pass()
	})
}

// funcEvaluator adapts a function to evaluator.Evaluator
type funcEvaluator struct {
	name string
	fn   func(ctx context.Context, d types.Data) (types.Result, error)
}

func (f *funcEvaluator) Name() string     { return f.name }
func (f *funcEvaluator) Kind() types.Kind { return types.KindLLM }
func (f *funcEvaluator) Evaluate(ctx context.Context, d types.Data) (types.Result, error) {
	return f.fn(ctx, d)
}

type collector struct {
	mu      sync.Mutex
	records []Record
}

func (c *collector) emit(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func TestRunner_EvaluatesEveryPair(t *testing.T) {
	recs := records(3)
	recs[1]["content"] = "   "
	stream := openStream(t, &memSource{records: recs})

	reg := prometheus.NewRegistry()
	r := &Runner{
		Evaluators: []evaluator.Evaluator{emptyRule(), evaluator.NewRule("always", func(types.Data) evaluator.Verdict { return evaluator.Pass() })},
		Logger:     logging.Discard(),
		Metrics:    NewMetrics(reg),
	}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)
	require.NoError(t, err)

	assert.Len(t, out.records, 6)
	assert.Equal(t, 3, summary.Units)
	assert.Equal(t, 6, summary.Results)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, &EvaluatorSummary{Pass: 2, Fail: 1}, summary.Evaluators["content_null"])
	assert.Equal(t, &EvaluatorSummary{Pass: 3}, summary.Evaluators["always"])

	assert.Equal(t, 3.0, testutil.ToFloat64(r.Metrics.units))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.results.WithLabelValues("content_null", "fail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Metrics.results.WithLabelValues("content_null", "pass")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.Metrics.evaluationSeconds))
}

func TestRunner_EvaluatorErrorsBecomeRecords(t *testing.T) {
	stream := openStream(t, &memSource{records: records(2)})
	failing := &funcEvaluator{name: "text_quality", fn: func(_ context.Context, d types.Data) (types.Result, error) {
		return types.Result{}, &evaluator.RemoteCallError{Evaluator: "text_quality", DataID: d.ID, Cause: errors.New("timeout")}
	}}

	r := &Runner{Evaluators: []evaluator.Evaluator{failing, emptyRule()}, Concurrency: 2, Logger: logging.Discard()}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, 2, summary.Results)
	assert.Equal(t, 2, summary.Evaluators["text_quality"].Errors)

	var errored int
	for _, rec := range out.records {
		if rec.Evaluator == "text_quality" {
			errored++
			assert.Nil(t, rec.Result)
			assert.Contains(t, rec.Error, "timeout")
		}
	}
	assert.Equal(t, 2, errored)
}

func TestRunner_ConversionErrorsSkipped(t *testing.T) {
	recs := records(3)
	delete(recs[1], "content")
	stream := openStream(t, &memSource{records: recs})

	reg := prometheus.NewRegistry()
	r := &Runner{Evaluators: []evaluator.Evaluator{emptyRule()}, Logger: logging.Discard(), Metrics: NewMetrics(reg)}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Units)
	assert.Equal(t, 1, summary.ConversionErrors)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.conversionErrors))
}

func TestRunner_ConversionErrorFailFast(t *testing.T) {
	recs := records(3)
	delete(recs[1], "content")
	stream := openStream(t, &memSource{records: recs})

	r := &Runner{Evaluators: []evaluator.Evaluator{emptyRule()}, FailFast: true, Logger: logging.Discard()}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)

	var convErr *dataset.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 1, convErr.Index)
	assert.Equal(t, 1, summary.Units)
}

func TestRunner_ReadErrorAborts(t *testing.T) {
	stream := openStream(t, &memSource{records: records(2), readErr: errors.New("disk gone")})

	r := &Runner{Evaluators: []evaluator.Evaluator{emptyRule()}, Logger: logging.Discard()}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)

	var readErr *dataset.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, 2, summary.Units)
	assert.Len(t, out.records, 2)
}

func TestRunner_EmitErrorStopsRun(t *testing.T) {
	stream := openStream(t, &memSource{records: records(50)})
	r := &Runner{Evaluators: []evaluator.Evaluator{emptyRule()}, Logger: logging.Discard()}

	_, err := r.Run(context.Background(), stream, func(Record) error {
		return errors.New("broken pipe")
	})
	assert.ErrorContains(t, err, "failed to emit result: broken pipe")
}

func TestRunner_ConcurrencyBound(t *testing.T) {
	stream := openStream(t, &memSource{records: records(20)})

	var inFlight, peak int64
	slow := &funcEvaluator{name: "slow", fn: func(_ context.Context, d types.Data) (types.Result, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return types.Result{Outcome: types.OutcomePass}, nil
	}}

	r := &Runner{Evaluators: []evaluator.Evaluator{slow}, Concurrency: 3, Logger: logging.Discard()}

	var out collector
	summary, err := r.Run(context.Background(), stream, out.emit)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Units)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(3))
}

func TestRunner_Validation(t *testing.T) {
	_, err := (&Runner{Evaluators: []evaluator.Evaluator{emptyRule()}}).Run(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "stream is nil")

	stream := openStream(t, &memSource{})
	_, err = (&Runner{}).Run(context.Background(), stream, nil)
	assert.ErrorContains(t, err, "no evaluators")
}

func TestRunner_CancelledContext(t *testing.T) {
	stream := openStream(t, &memSource{records: records(5)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Evaluators: []evaluator.Evaluator{emptyRule()}, Logger: logging.Discard()}
	var out collector
	_, err := r.Run(ctx, stream, out.emit)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONLinesEmitter(t *testing.T) {
	var buf bytes.Buffer
	emit := JSONLinesEmitter(&buf)

	require.NoError(t, emit(Record{DataID: "1", Evaluator: "content_null", Result: &types.Result{
		DataID: "1", Evaluator: "content_null", Kind: types.KindRule, Outcome: types.OutcomePass,
	}}))
	require.NoError(t, emit(Record{DataID: "2", Evaluator: "text_quality", Error: "remote call failed"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.ElementsMatch(t, []string{"data_id", "evaluator", "result", "error"}, keys(first))
	assert.Equal(t, "", first["error"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Nil(t, second["result"])
	assert.Equal(t, "remote call failed", second["error"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
