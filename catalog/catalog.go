// Package catalog indexes hosted symbols for search and documentation.
//
// Every registered symbol becomes a tool in a tooldiscovery index: the tool
// name is the munged symbol name, the tool namespace is the munged hosted
// namespace and the description is the docstring. Arglists are kept as doc
// notes. Lookups map tool IDs back to qualified "ns/name" symbol IDs.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/hostcall/backend"
	"github.com/jonwraymond/hostcall/lisp"
)

// ErrNotIndexed is returned by Describe for symbols that were never
// registered.
var ErrNotIndexed = errors.New("catalog: symbol not indexed")

// Hit is a search result.
type Hit struct {
	// Symbol is the qualified "ns/name" symbol ID.
	Symbol    string
	Namespace string
	Name      string
	Summary   string
	// ToolID is the ID of the symbol in the underlying index.
	ToolID string
}

// Catalog is a searchable index of hosted symbols.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: registration failures are logged and skipped.
type Catalog struct {
	idx    index.Index
	docs   *tooldoc.InMemoryStore
	logger *log.Logger

	mu      sync.RWMutex
	symbols map[string]backend.Symbol // tool ID -> symbol
	toolIDs map[string]string         // symbol ID -> tool ID
	spaces  map[string]string         // tool namespace -> hosted namespace
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for skipped registrations.
func WithLogger(l *log.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty catalog backed by a BM25 in-memory index.
func New(opts ...Option) *Catalog {
	idx := index.NewInMemoryIndex(index.IndexOptions{
		Searcher: search.NewBM25Searcher(search.BM25Config{}),
	})
	c := &Catalog{
		idx:     idx,
		docs:    tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx}),
		logger:  log.New(io.Discard),
		symbols: make(map[string]backend.Symbol),
		toolIDs: make(map[string]string),
		spaces:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToolID returns the index ID of a symbol.
func ToolID(ns, name string) string {
	return lisp.Munge(ns) + ":" + lisp.Munge(name)
}

// Register indexes syms and returns how many were added. Symbols already
// indexed are skipped.
func (c *Catalog) Register(syms []backend.Symbol) int {
	added := 0
	for _, s := range syms {
		id := s.ID()
		c.mu.RLock()
		_, done := c.toolIDs[id]
		c.mu.RUnlock()
		if done {
			continue
		}
		if err := c.register(s); err != nil {
			c.logger.Warn("catalog skipped symbol", "symbol", id, "err", err)
			continue
		}
		added++
	}
	return added
}

func (c *Catalog) register(s backend.Symbol) error {
	toolNS := lisp.Munge(s.Namespace)
	tool := model.Tool{
		Tool: mcp.Tool{
			Name:        lisp.Munge(s.Name),
			Title:       s.ID(),
			Description: description(s),
			InputSchema: InputSchema(),
		},
		Namespace: toolNS,
		Tags:      model.NormalizeTags(tags(s.Namespace)),
	}
	if err := c.idx.RegisterTool(tool, model.NewLocalBackend(s.ID())); err != nil {
		return fmt.Errorf("register tool: %w", err)
	}
	toolID := ToolID(s.Namespace, s.Name)
	if err := c.docs.RegisterDoc(toolID, docEntry(s)); err != nil {
		return fmt.Errorf("register doc: %w", err)
	}

	c.mu.Lock()
	c.symbols[toolID] = s
	c.toolIDs[s.ID()] = toolID
	c.spaces[toolNS] = s.Namespace
	c.mu.Unlock()
	return nil
}

// InputSchema is the JSON schema of a symbol call: positional arguments
// under "args".
func InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"args": map[string]any{
				"type":        "array",
				"description": "Positional arguments",
			},
		},
	}
}

// Search returns symbols matching query, best match first.
func (c *Catalog) Search(query string, limit int) ([]Hit, error) {
	summaries, err := c.idx.Search(query, limit)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	hits := make([]Hit, 0, len(summaries))
	for _, sum := range summaries {
		s, ok := c.symbols[sum.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			Symbol:    s.ID(),
			Namespace: s.Namespace,
			Name:      s.Name,
			Summary:   sum.ShortDescription,
			ToolID:    sum.ID,
		})
	}
	return hits, nil
}

// Describe returns the documentation of a symbol at the given level.
func (c *Catalog) Describe(ns, name string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	id := backend.FormatSymbolID(ns, name)
	c.mu.RLock()
	toolID, ok := c.toolIDs[id]
	c.mu.RUnlock()
	if !ok {
		return tooldoc.ToolDoc{}, fmt.Errorf("%w: %s", ErrNotIndexed, id)
	}
	return c.docs.DescribeTool(toolID, level)
}

// Namespaces returns the hosted namespaces with indexed symbols, sorted.
func (c *Catalog) Namespaces() ([]string, error) {
	toolSpaces, err := c.idx.ListNamespaces()
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(toolSpaces))
	for _, ts := range toolSpaces {
		if ns, ok := c.spaces[ts]; ok {
			out = append(out, ns)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Len returns the number of indexed symbols.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

func description(s backend.Symbol) string {
	if s.Doc != "" {
		return s.Doc
	}
	return s.ID()
}

// summary is the first sentence of the docstring.
func summary(s backend.Symbol) string {
	doc := strings.TrimSpace(description(s))
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		doc = doc[:i]
	}
	if i := strings.Index(doc, ". "); i >= 0 {
		doc = doc[:i+1]
	}
	return doc
}

func docEntry(s backend.Symbol) tooldoc.DocEntry {
	entry := tooldoc.DocEntry{Summary: summary(s)}
	if len(s.Arglists) > 0 {
		entry.Notes = "Arglists: " + strings.Join(s.Arglists, " ")
	}
	return entry
}

// tags are the namespace segments: "clojure.contrib.str-utils" yields
// clojure, contrib and str-utils.
func tags(ns string) []string {
	return strings.Split(ns, ".")
}
