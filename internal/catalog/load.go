package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrFetch = errors.New("catalog fetch failed")
var ErrDecode = errors.New("catalog decode failed")

const maxDocumentBytes = 8 << 20

type loader struct {
	client *http.Client
	log    *zap.Logger
}

// Option configures Load.
type Option func(*loader)

// WithHTTPClient replaces the default client (8s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(l *loader) {
		if c != nil {
			l.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(l *loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}

// document is the object form: {points: {...}, items: [...]}.
type document struct {
	Points Points `json:"points" yaml:"points"`
	Items  []Item `json:"items" yaml:"items"`
}

// Load fetches source (http(s) URL or file path) and decodes it as JSON or
// YAML. The document is either a bare item list or the object form.
func Load(ctx context.Context, source string, opts ...Option) (*Catalog, error) {
	l := &loader{client: &http.Client{Timeout: 8 * time.Second}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	data, yamlHint, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	doc, err := decode(data, yamlHint)
	if err != nil {
		return nil, err
	}

	c, warnings, err := New(doc.Items, doc.Points)
	for _, w := range warnings {
		l.log.Warn("catalog", zap.String("source", source), zap.String("warning", w))
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrSentinel never fails: any load error yields the sentinel catalog and
// a user-facing warning.
func LoadOrSentinel(ctx context.Context, source string, opts ...Option) (*Catalog, string) {
	c, err := Load(ctx, source, opts...)
	if err == nil {
		return c, ""
	}
	l := &loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	l.log.Warn("catalog unavailable, using sentinel", zap.String("source", source), zap.Error(err))
	return Sentinel(), "Character data could not be loaded; the grid is limited until restart."
}

func (l *loader) read(ctx context.Context, source string) ([]byte, bool, error) {
	yamlHint := isYAMLPath(source)

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, yamlHint, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		yamlHint = true
	}
	return data, yamlHint, nil
}

func isYAMLPath(source string) bool {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	ext := strings.ToLower(filepath.Ext(source))
	return ext == ".yaml" || ext == ".yml"
}

func decode(data []byte, yamlHint bool) (document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document{}, fmt.Errorf("%w: empty document", ErrDecode)
	}

	var doc document
	if !yamlHint {
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &doc.Items); err != nil {
				return document{}, fmt.Errorf("%w: %v", ErrDecode, err)
			}
			return doc, nil
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return document{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return doc, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return document{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&doc.Items); err != nil {
			return document{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return doc, nil
	}
	if err := node.Decode(&doc); err != nil {
		return document{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}
