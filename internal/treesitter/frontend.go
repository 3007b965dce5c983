// Package treesitter is the multi-language front end. It parses source files
// with tree-sitter grammars and resolves references through a per-language
// index of declared names. It has no type information, so resolution is a
// heuristic: a name resolves only when exactly one file declares it.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/jward/usegraph/internal/walker"
)

// Frontend parses every supported file below a project root.
type Frontend struct {
	languages map[string]bool // nil means all languages
	workers   int
	logger    *slog.Logger
}

// Option configures a Frontend.
type Option func(*Frontend)

// WithLanguages restricts which languages are parsed.
func WithLanguages(languages ...string) Option {
	return func(f *Frontend) {
		if len(languages) == 0 {
			f.languages = nil
			return
		}
		f.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			f.languages[lang] = true
		}
	}
}

// WithWorkers bounds the number of files parsed concurrently.
// Default: runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(f *Frontend) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontend) {
		f.logger = logger
	}
}

// New returns a tree-sitter front end.
func New(opts ...Option) *Frontend {
	f := &Frontend{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name identifies the front end in logs and config.
func (f *Frontend) Name() string {
	return "treesitter"
}

// Load parses the files under root and builds the name index. The analysis
// unit is the absolute root directory.
func (f *Frontend) Load(ctx context.Context, root string) (*walker.Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("treesitter: resolve root: %w", err)
	}
	paths, err := ListFiles(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("treesitter: list files: %w", err)
	}

	var selected []string
	for _, p := range paths {
		lang, _ := LanguageForFile(p)
		if f.languages == nil || f.languages[lang] {
			selected = append(selected, p)
		}
	}

	parsed := make([]*sourceFile, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, path := range selected {
		g.Go(func() error {
			sf, err := f.parseFile(gctx, path)
			if err != nil {
				return err
			}
			parsed[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("treesitter: %w", err)
	}

	files := parsed[:0]
	for _, sf := range parsed {
		if sf != nil {
			files = append(files, sf)
		}
	}

	res := newResolver(abs, files)
	trees := make([]walker.Tree, 0, len(files))
	for _, sf := range files {
		trees = append(trees, walker.Tree{Path: sf.path, Root: sf.root()})
	}

	f.logger.Debug("parsed source files", "root", abs, "files", len(trees))
	return &walker.Project{Trees: trees, Resolver: res}, nil
}

// parseFile parses one file and collects its declarations. It returns a nil
// file when path vanished after listing.
func (f *Frontend) parseFile(ctx context.Context, path string) (*sourceFile, error) {
	lang, _ := LanguageForFile(path)
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("parse %s: unsupported language %q", path, lang)
	}
	profile, _ := ProfileFor(lang)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("skipping missing file", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree.RootNode().HasError() {
		f.logger.Debug("syntax errors, walking partial tree", "path", path)
	}

	sf := &sourceFile{path: path, lang: lang, src: src, tree: tree, profile: profile}
	sf.decls = sf.declarations()
	return sf, nil
}
