package datasource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local file formats
const (
	FormatJSONL     = "jsonl"
	FormatJSON      = "json"
	FormatPlaintext = "plaintext"
	FormatXLSX      = "xlsx"
)

// maxLineBytes bounds a single jsonl/plaintext line
const maxLineBytes = 64 * 1024 * 1024

// LocalSource reads records from a file or from every file under a directory.
type LocalSource struct {
	Path    string `json:"path"`              // file or directory
	Format  string `json:"format,omitempty"`  // jsonl, json, plaintext or xlsx; inferred from the extension when empty
	Sheet   string `json:"sheet,omitempty"`   // xlsx sheet name; first sheet when empty
	Pattern string `json:"pattern,omitempty"` // glob on file base names when Path is a directory
}

// SourceType returns "local"
func (s *LocalSource) SourceType() string {
	return TypeLocal
}

// ToDict returns the identity-bearing configuration of the source
func (s *LocalSource) ToDict() map[string]any {
	d := map[string]any{
		"path": filepath.Clean(s.Path),
	}
	format := s.Format
	if format == "" {
		format = inferFormat(s.Path)
	}
	if format != "" {
		d["format"] = format
	}
	if s.Sheet != "" {
		d["sheet"] = s.Sheet
	}
	if s.Pattern != "" {
		d["pattern"] = s.Pattern
	}
	return d
}

// Load resolves the files to read and returns a handle that opens them one at a time.
func (s *LocalSource) Load(_ context.Context) (Handle, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("local source path is empty")
	}
	if s.Format != "" && !isKnownFormat(s.Format) {
		return nil, &FormatError{Path: s.Path, Message: fmt.Sprintf("unsupported format %q", s.Format)}
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.Path, err)
	}

	var files []string
	if info.IsDir() {
		files, err = s.listFiles()
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{s.Path}
	}

	for _, f := range files {
		if s.formatFor(f) == "" {
			return nil, &FormatError{Path: f, Message: "cannot infer format from file extension"}
		}
	}

	return &localHandle{source: s, files: files}, nil
}

// listFiles walks the directory in lexical order
func (s *LocalSource) listFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if s.Pattern != "" {
			ok, err := filepath.Match(s.Pattern, d.Name())
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.Path, err)
	}
	return files, nil
}

func (s *LocalSource) formatFor(path string) string {
	if s.Format != "" {
		return s.Format
	}
	return inferFormat(path)
}

func inferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".json":
		return FormatJSON
	case ".txt", ".md", ".text":
		return FormatPlaintext
	case ".xlsx":
		return FormatXLSX
	default:
		return ""
	}
}

func isKnownFormat(format string) bool {
	switch format {
	case FormatJSONL, FormatJSON, FormatPlaintext, FormatXLSX:
		return true
	}
	return false
}

// fileReader yields the records of one file
type fileReader interface {
	next() (Record, error)
	close() error
}

type localHandle struct {
	source  *LocalSource
	files   []string
	fileIdx int
	current fileReader
}

func (h *localHandle) Next(ctx context.Context) (Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if h.current == nil {
			if h.fileIdx >= len(h.files) {
				return nil, io.EOF
			}
			path := h.files[h.fileIdx]
			reader, err := openReader(path, h.source.formatFor(path), h.source.Sheet)
			if err != nil {
				return nil, err
			}
			h.current = reader
			h.fileIdx++
		}

		rec, err := h.current.next()
		if err == io.EOF {
			_ = h.current.close()
			h.current = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func (h *localHandle) Close() error {
	h.fileIdx = len(h.files)
	if h.current != nil {
		err := h.current.close()
		h.current = nil
		return err
	}
	return nil
}

func openReader(path, format, sheet string) (fileReader, error) {
	if format == FormatXLSX {
		return openXLSX(path, sheet)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	switch format {
	case FormatJSONL:
		return newLineReader(path, file, decodeJSONLine), nil
	case FormatPlaintext:
		return newLineReader(path, file, func(line []byte) (Record, bool, error) {
			return Record{"text": string(line)}, true, nil
		}), nil
	case FormatJSON:
		return newJSONReader(path, file)
	default:
		_ = file.Close()
		return nil, &FormatError{Path: path, Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

// lineDecoder turns one line into a record; ok=false skips the line
type lineDecoder func(line []byte) (rec Record, ok bool, err error)

type lineReader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	decode  lineDecoder
	lineNum int
}

func newLineReader(path string, file *os.File, decode lineDecoder) *lineReader {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{path: path, file: file, scanner: scanner, decode: decode}
}

func (r *lineReader) next() (Record, error) {
	for r.scanner.Scan() {
		r.lineNum++
		rec, ok, err := r.decode(r.scanner.Bytes())
		if err != nil {
			// The scanner is past the bad line, so the file stays readable
			return nil, &RecordError{
				Position: r.lineNum - 1,
				Cause:    &FormatError{Path: r.path, Line: r.lineNum, Message: "invalid JSON line", Cause: err},
			}
		}
		if ok {
			return rec, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, &FormatError{Path: r.path, Line: r.lineNum, Message: "failed to read line", Cause: err}
	}
	return nil, io.EOF
}

func (r *lineReader) close() error {
	return r.file.Close()
}

func decodeJSONLine(line []byte) (Record, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false, nil
	}
	var value any
	if err := json.Unmarshal(line, &value); err != nil {
		return nil, false, err
	}
	return toRecord(value), true, nil
}

// toRecord wraps non-object values so every record is a map
func toRecord(value any) Record {
	if m, ok := value.(map[string]any); ok {
		return Record(m)
	}
	return Record{"value": value}
}

// jsonReader streams the elements of a top-level JSON array one by one.
// A top-level non-array value is served as a single record.
type jsonReader struct {
	path    string
	file    *os.File
	dec     *json.Decoder
	isArray bool
	done    bool
}

func newJSONReader(path string, file *os.File) (*jsonReader, error) {
	br := bufio.NewReader(file)
	r := &jsonReader{path: path, file: file}

	first, err := peekNonSpace(br)
	if err == io.EOF {
		r.done = true
		return r, nil
	}
	if err != nil {
		_ = file.Close()
		return nil, &FormatError{Path: path, Message: "failed to read JSON", Cause: err}
	}

	r.dec = json.NewDecoder(br)
	if first == '[' {
		if _, err := r.dec.Token(); err != nil {
			_ = file.Close()
			return nil, &FormatError{Path: path, Message: "invalid JSON array", Cause: err}
		}
		r.isArray = true
	}
	return r, nil
}

func (r *jsonReader) next() (Record, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.isArray && !r.dec.More() {
		r.done = true
		if _, err := r.dec.Token(); err != nil {
			return nil, &FormatError{Path: r.path, Message: "invalid JSON array", Cause: err}
		}
		if err := r.expectEnd(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var value any
	if err := r.dec.Decode(&value); err != nil {
		r.done = true
		return nil, &FormatError{Path: r.path, Message: "invalid JSON element", Cause: err}
	}
	if !r.isArray {
		r.done = true
		if err := r.expectEnd(); err != nil {
			return nil, err
		}
	}
	return toRecord(value), nil
}

// expectEnd rejects anything but whitespace after the top-level value
func (r *jsonReader) expectEnd() error {
	if _, err := r.dec.Token(); err != io.EOF {
		return &FormatError{Path: r.path, Message: "unexpected data after top-level JSON value", Cause: err}
	}
	return nil
}

func (r *jsonReader) close() error {
	return r.file.Close()
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
