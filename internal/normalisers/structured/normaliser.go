// Package structured flattens JSON, YAML and TOML into a deterministic
// key/value walk so identical data always yields identical offsets.
package structured

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// Normaliser handles structured data documents.
type Normaliser struct{}

// New creates a new structured data normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatJSON, domain.FormatYAML, domain.FormatTOML}
}

// Extract sniffs the format and flattens the value.
// Use ForFormat to bind an explicit format.
func (n *Normaliser) Extract(ctx context.Context, data []byte) (*domain.Extraction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return n.ForFormat(domain.FormatJSON).Extract(ctx, data)
	}
	return n.ForFormat(domain.FormatYAML).Extract(ctx, data)
}

// ForFormat returns an extractor bound to one format.
func (n *Normaliser) ForFormat(format domain.Format) driven.Extractor {
	return &bound{format: format}
}

type bound struct {
	format domain.Format
}

func (b *bound) Formats() []domain.Format { return []domain.Format{b.format} }

func (b *bound) Extract(_ context.Context, data []byte) (*domain.Extraction, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}
	value, err := decode(b.format, data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrExtraction, b.format, err)
	}
	var runs []domain.TextRun
	walk("", value, func(path, leaf string) {
		line := leaf
		if path != "" {
			line = path + ": " + leaf
		}
		runs = append(runs, domain.TextRun{Text: line + "\n", Kind: domain.SpanBody})
	})
	return &domain.Extraction{Runs: runs}, nil
}

func decode(format domain.Format, data []byte) (any, error) {
	switch format {
	case domain.FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		return v, nil
	case domain.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		var docs []any
		for {
			var v any
			err := dec.Decode(&v)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			docs = append(docs, v)
		}
		switch len(docs) {
		case 0:
			return nil, nil
		case 1:
			return docs[0], nil
		default:
			return docs, nil
		}
	case domain.FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// walk visits leaves depth first with map keys sorted and arrays in order.
func walk(path string, v any, emit func(path, leaf string)) {
	switch t := v.(type) {
	case nil:
		if path != "" {
			emit(path, "null")
		}
	case map[string]any:
		if len(t) == 0 {
			emit(path, "{}")
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(join(path, k), t[k], emit)
		}
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		walk(path, m, emit)
	case []any:
		if len(t) == 0 {
			emit(path, "[]")
			return
		}
		for i, item := range t {
			walk(path+"["+strconv.Itoa(i)+"]", item, emit)
		}
	default:
		emit(path, scalar(t))
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
