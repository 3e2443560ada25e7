package dataset

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/jonathan/dataqa/internal/datasource"
	"github.com/jonathan/dataqa/internal/types"
)

// Stream yields the canonical units of a dataset in source order.
//
// Each raw record is pulled only when the consumer asks for a unit and the
// previous record's units are used up. A fan-out conversion is buffered and
// drained before the next raw record is requested.
type Stream struct {
	ds      *Dataset
	index   int // position of the next raw record
	pending []types.Data
	err     error // terminal error, returned on every later call
}

// Next returns the next unit, io.EOF at the end of the stream, a
// *ConversionError for a record that could not be decoded or that the
// converter rejected (the stream stays usable), or a *ReadError when the
// handle fails (the stream ends).
func (s *Stream) Next(ctx context.Context) (types.Data, error) {
	for {
		if len(s.pending) > 0 {
			d := s.pending[0]
			s.pending = s.pending[1:]
			return d, nil
		}
		if s.err != nil {
			return types.Data{}, s.err
		}

		rec, err := s.ds.handle.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.err = io.EOF
			return types.Data{}, io.EOF
		}
		var recErr *datasource.RecordError
		if errors.As(err, &recErr) {
			index := s.index
			s.index++
			return types.Data{}, s.conversionError(index, recErr)
		}
		if err != nil {
			s.err = &ReadError{Dataset: s.ds.name, Index: s.index, Cause: err}
			return types.Data{}, s.err
		}

		index := s.index
		s.index++

		conv, err := s.ds.converter(rec)
		if err != nil {
			return types.Data{}, s.conversionError(index, err)
		}
		s.pending = conv.Units()
	}
}

func (s *Stream) conversionError(index int, cause error) *ConversionError {
	return &ConversionError{
		Dataset: s.ds.name,
		Digest:  s.ds.Digest(),
		Index:   index,
		Cause:   cause,
	}
}

// Pulled returns the number of raw records pulled so far
func (s *Stream) Pulled() int {
	return s.index
}

// All adapts the stream to a range-over-func iterator. Iteration ends at
// io.EOF or on a terminal read error; conversion errors are yielded and
// iteration continues unless the caller breaks.
func (s *Stream) All(ctx context.Context) iter.Seq2[types.Data, error] {
	return func(yield func(types.Data, error) bool) {
		for {
			d, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			var readErr *ReadError
			if errors.As(err, &readErr) {
				yield(types.Data{}, err)
				return
			}
			if !yield(d, err) {
				return
			}
		}
	}
}

// Collect drains the stream, stopping at the first error of any kind
func (s *Stream) Collect(ctx context.Context) ([]types.Data, error) {
	var out []types.Data
	for {
		d, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
}
