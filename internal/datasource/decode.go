package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// webConfig is the configuration-file shape of a WebSource
type webConfig struct {
	URLs      []string `json:"urls"`
	Render    bool     `json:"render"`
	Fallback  bool     `json:"fallback"`
	Selectors []string `json:"selectors"`
	Timeout   string   `json:"timeout"`
	UserAgent string   `json:"user_agent"`
}

// Decode builds a source of the given kind from a configuration map.
// Unknown keys are rejected.
func Decode(sourceType string, raw map[string]any) (DataSource, error) {
	switch sourceType {
	case TypeLocal:
		var s LocalSource
		if err := decodeStrict(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid local source: %w", err)
		}
		if s.Path == "" {
			return nil, fmt.Errorf("invalid local source: path is required")
		}
		return &s, nil

	case TypeSQL:
		var s SQLSource
		if err := decodeStrict(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid sql source: %w", err)
		}
		return &s, nil

	case TypeWeb:
		var c webConfig
		if err := decodeStrict(raw, &c); err != nil {
			return nil, fmt.Errorf("invalid web source: %w", err)
		}
		s := &WebSource{
			URLs:      c.URLs,
			Render:    c.Render,
			Fallback:  c.Fallback,
			Selectors: c.Selectors,
			UserAgent: c.UserAgent,
		}
		if c.Timeout != "" {
			d, err := time.ParseDuration(c.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid web source timeout: %w", err)
			}
			s.Timeout = d
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown source type %q", sourceType)
	}
}

func decodeStrict(raw map[string]any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
