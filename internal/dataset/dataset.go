// Package dataset wraps a data source with an identity (name and digest) and
// exposes its records as a lazy stream of canonical units.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/dataqa/internal/datasource"
)

// Options configures dataset construction. All fields are optional.
type Options struct {
	Name    string // generated as "<type>-<ordinal>" when empty
	Digest  string // computed from the source configuration when empty
	Namer   *Namer // name generator; a process-wide one is used when nil
	Profile any    // descriptive summary serialized under "profile"
}

// Dataset is a named, digested wrapper around a data source.
// It owns the handle acquired from the source at construction.
type Dataset struct {
	name        string
	datasetType string
	source      datasource.DataSource
	handle      datasource.Handle
	converter   Converter
	profile     any

	sourceConfig []byte
	digest       string
	digestOnce   sync.Once

	streamOnce sync.Once
	stream     *Stream
}

// New loads the source once and returns a dataset over its handle.
// It fails with *SourceLoadError when the source cannot be loaded and with
// *DigestError when the source configuration cannot be serialized.
func New(ctx context.Context, datasetType string, source datasource.DataSource, converter Converter, opts Options) (*Dataset, error) {
	if source == nil {
		return nil, fmt.Errorf("dataset %s: source is nil", datasetType)
	}
	if converter == nil {
		return nil, fmt.Errorf("dataset %s: converter is nil", datasetType)
	}

	config, err := json.Marshal(source.ToDict())
	if err != nil {
		return nil, &DigestError{SourceType: source.SourceType(), Cause: err}
	}

	handle, err := source.Load(ctx)
	if err != nil {
		return nil, &SourceLoadError{SourceType: source.SourceType(), Source: source.ToDict(), Cause: err}
	}

	name := opts.Name
	if name == "" {
		namer := opts.Namer
		if namer == nil {
			namer = defaultNamer
		}
		name = namer.Next(datasetType)
	}

	return &Dataset{
		name:         name,
		datasetType:  datasetType,
		source:       source,
		handle:       handle,
		converter:    converter,
		profile:      opts.Profile,
		sourceConfig: config,
		digest:       opts.Digest,
	}, nil
}

// Name returns the dataset name
func (d *Dataset) Name() string {
	return d.name
}

// Type returns the dataset type key (e.g. "local")
func (d *Dataset) Type() string {
	return d.datasetType
}

// Source returns the wrapped data source
func (d *Dataset) Source() datasource.DataSource {
	return d.source
}

// Profile returns the optional descriptive summary, nil when absent
func (d *Dataset) Profile() any {
	return d.profile
}

// Digest returns the explicit digest, or computes it from the source
// configuration on first use and caches it for the dataset's lifetime.
func (d *Dataset) Digest() string {
	d.digestOnce.Do(func() {
		if d.digest == "" {
			d.digest = digestBytes(d.sourceConfig)
		}
	})
	return d.digest
}

// GetData returns the lazy unit stream over the dataset's handle.
// The handle is single-pass, so every call returns the same stream and a
// second consumer continues where the first stopped.
func (d *Dataset) GetData() *Stream {
	d.streamOnce.Do(func() {
		d.stream = &Stream{ds: d}
	})
	return d.stream
}

// ToDict serializes the dataset identity. All five keys are always present;
// an absent profile serializes as "null".
func (d *Dataset) ToDict() (map[string]string, error) {
	profile, err := json.Marshal(d.profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile of dataset %s: %w", d.name, err)
	}

	return map[string]string{
		"name":        d.name,
		"digest":      d.Digest(),
		"source":      string(d.sourceConfig),
		"source_type": d.source.SourceType(),
		"profile":     string(profile),
	}, nil
}

// Close releases the raw handle
func (d *Dataset) Close() error {
	return d.handle.Close()
}
