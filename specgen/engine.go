// Package specgen runs the spec generator over typed AST files.
package specgen

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/tspec/internal/cache"
	"github.com/gnolang/tspec/internal/funcspec"
	"github.com/gnolang/tspec/internal/hierarchy"
	"github.com/gnolang/tspec/internal/program"
	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

// Function kinds reported in Output.
const (
	KindFunction    = "function"
	KindMethod      = "method"
	KindConstructor = "constructor"
)

// Output is everything generated for one input file.
type Output struct {
	File       string      `json:"file" yaml:"file"`
	Functions  []Function  `json:"functions" yaml:"functions"`
	Predicates []Predicate `json:"predicates" yaml:"predicates"`
	Classes    []Class     `json:"classes" yaml:"classes"`
	Tactics    []Tactic    `json:"tactics,omitempty" yaml:"tactics,omitempty"`
}

type Function struct {
	ID     string           `json:"id" yaml:"id"`
	Name   string           `json:"name" yaml:"name"`
	Kind   string           `json:"kind" yaml:"kind"`
	Owner  string           `json:"owner,omitempty" yaml:"owner,omitempty"`
	Blocks []funcspec.Block `json:"blocks" yaml:"blocks"`
}

type Predicate struct {
	Name   string `json:"name" yaml:"name"`
	Header string `json:"header" yaml:"header"`
	Text   string `json:"text" yaml:"text"`
}

// Tactic is the assertion checked after a statement that assigns variables.
// Function is the id of the enclosing function, empty at top level.
type Tactic struct {
	Function  string `json:"function,omitempty" yaml:"function,omitempty"`
	Statement string `json:"statement" yaml:"statement"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Assert    string `json:"assert" yaml:"assert"`
}

// Class summarizes the closed hierarchy of one class.
type Class struct {
	Name        string   `json:"name" yaml:"name"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Ancestors   []string `json:"ancestors" yaml:"ancestors"`
	Descendants []string `json:"descendants" yaml:"descendants"`
	Fields      []string `json:"fields" yaml:"fields"`
	Methods     []string `json:"methods" yaml:"methods"`
}

type SpecEngine interface {
	Run(path string) (Output, error)
	RunSource(source []byte) (Output, error)
}

// Engine generates specs with one configuration.
type Engine struct {
	config   Config
	logger   *zap.Logger
	cacheDir string
	cache    *cache.Cache[Output]
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCache stores generated output in dir, keyed by input file content.
func WithCache(dir string) Option {
	return func(e *Engine) {
		e.cacheDir = dir
	}
}

// New returns an engine configured from the file at configPath.
func New(configPath string, opts ...Option) (*Engine, error) {
	config, err := ParseConfig(configPath)
	if err != nil {
		return nil, err
	}
	e := NewWithConfig(config, opts...)

	if e.cacheDir == "" {
		return e, nil
	}
	c, err := cache.New[Output](e.cacheDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := c.Track(configPath); err != nil {
			return nil, err
		}
	}
	e.cache = c
	return e, nil
}

func NewWithConfig(config Config, opts ...Option) *Engine {
	e := &Engine{config: config, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config { return e.config }

// Run generates the output for the typed AST file at path.
func (e *Engine) Run(path string) (Output, error) {
	if e.cache != nil {
		if out, ok := e.cache.Get(path); ok {
			e.logger.Debug("cache hit", zap.String("file", path))
			return out, nil
		}
	}

	e.logger.Debug("generating", zap.String("file", path))
	f, err := tsast.ReadFile(path)
	if err != nil {
		return Output{}, err
	}
	out, err := e.generate(f)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", path, err)
	}

	if e.cache != nil {
		if err := e.cache.Set(path, out); err != nil {
			e.logger.Warn("cache write failed", zap.String("file", path), zap.Error(err))
		}
	}
	e.logger.Debug("generated", zap.String("file", path), zap.Int("functions", len(out.Functions)))
	return out, nil
}

// RunSource generates the output for an in-memory typed AST.
func (e *Engine) RunSource(source []byte) (Output, error) {
	f, err := tsast.Parse("<source>", source)
	if err != nil {
		return Output{}, err
	}
	out, err := e.generate(f)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return out, nil
}

func (e *Engine) generate(f *tsast.File) (Output, error) {
	p, err := program.Build(f,
		program.WithLogger(e.logger),
		program.WithGlobals(e.config.Globals...))
	if err != nil {
		return Output{}, err
	}

	results, err := p.Specs(e.config.Omit)
	if err != nil {
		return Output{}, err
	}
	preds, err := p.Predicates()
	if err != nil {
		return Output{}, err
	}

	out := Output{File: f.Path}
	for _, r := range results {
		out.Functions = append(out.Functions, function(r))
	}
	for _, pred := range preds {
		text, err := pred.Render()
		if err != nil {
			return Output{}, fmt.Errorf("predicate %s: %w", pred.Name, err)
		}
		out.Predicates = append(out.Predicates, Predicate{Name: pred.Name, Header: pred.Header(), Text: text})
	}
	tactics, err := p.Tactics()
	if err != nil {
		return Output{}, err
	}
	for _, t := range tactics {
		tac, err := tactic(t)
		if err != nil {
			return Output{}, err
		}
		out.Tactics = append(out.Tactics, tac)
	}
	for _, c := range p.Classes.Classes() {
		cls, err := class(c)
		if err != nil {
			return Output{}, err
		}
		out.Classes = append(out.Classes, cls)
	}
	return out, nil
}

func function(r funcspec.Result) Function {
	return Function{
		ID:     r.Function.ID,
		Name:   r.Function.Name,
		Kind:   kindOf(r.Function),
		Owner:  r.Function.Owner,
		Blocks: r.Blocks,
	}
}

func tactic(t program.Tactic) (Tactic, error) {
	branches, err := t.Branches()
	if err != nil {
		return Tactic{}, fmt.Errorf("tactic for %s: %w", t.Stmt, err)
	}
	tac := Tactic{
		Statement: t.Stmt.Kind,
		Line:      t.Stmt.Line,
		Assert:    "assert(" + strings.Join(branches, ",\n") + ")",
	}
	if t.Function != nil {
		tac.Function = t.Function.ID
	}
	return tac, nil
}

func kindOf(fn *types.Function) string {
	switch {
	case fn.Constructor:
		return KindConstructor
	case fn.IsMethod():
		return KindMethod
	default:
		return KindFunction
	}
}

func class(c *hierarchy.Class) (Class, error) {
	out := Class{Name: c.Name}
	if c.Parent != nil {
		out.Parent = c.Parent.Name
	}
	anc, err := c.Ancestors()
	if err != nil {
		return Class{}, err
	}
	desc, err := c.Descendants()
	if err != nil {
		return Class{}, err
	}
	if out.Fields, err = c.FPlus(); err != nil {
		return Class{}, err
	}
	if out.Methods, err = c.NPlus(); err != nil {
		return Class{}, err
	}
	out.Ancestors = hierarchy.Names(anc)
	out.Descendants = hierarchy.Names(desc)
	return out, nil
}
