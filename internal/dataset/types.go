package dataset

import (
	"context"
	"fmt"

	"github.com/jonathan/dataqa/internal/datasource"
)

// Type describes a dataset variant registered under the "dataset_type" namespace.
type Type struct {
	Key              string
	SourceType       string // the datasource.SourceType this dataset type wraps
	DefaultConverter string // converter key used when the config names none
	Profile          func(src datasource.DataSource) any
}

// TypeKey returns the registry key of the dataset type
func (t Type) TypeKey() string {
	return t.Key
}

// Open builds a dataset of this type. The source must be of the matching kind.
func (t Type) Open(ctx context.Context, source datasource.DataSource, converter Converter, opts Options) (*Dataset, error) {
	if source == nil {
		return nil, fmt.Errorf("dataset type %s: source is nil", t.Key)
	}
	if source.SourceType() != t.SourceType {
		return nil, fmt.Errorf("dataset type %s requires a %s source, got %s", t.Key, t.SourceType, source.SourceType())
	}
	if opts.Profile == nil && t.Profile != nil {
		opts.Profile = t.Profile(source)
	}
	return New(ctx, t.Key, source, converter, opts)
}

// LocalType wraps local files. It carries no profile.
func LocalType() Type {
	return Type{
		Key:              "local",
		SourceType:       datasource.TypeLocal,
		DefaultConverter: "json",
	}
}

// SQLType wraps a database query
func SQLType() Type {
	return Type{
		Key:              "sql",
		SourceType:       datasource.TypeSQL,
		DefaultConverter: "json",
		Profile: func(src datasource.DataSource) any {
			s, ok := src.(*datasource.SQLSource)
			if !ok {
				return nil
			}
			return map[string]string{"driver": s.Driver, "version": s.Version}
		},
	}
}

// WebType wraps a list of web pages
func WebType() Type {
	return Type{
		Key:              "web",
		SourceType:       datasource.TypeWeb,
		DefaultConverter: "plaintext",
		Profile: func(src datasource.DataSource) any {
			s, ok := src.(*datasource.WebSource)
			if !ok {
				return nil
			}
			return map[string]any{"pages": len(s.URLs), "render": s.Render}
		},
	}
}
