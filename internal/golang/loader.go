// Package golang is the Go front end: it loads a module with go/packages and
// exposes its syntax trees and type information to the walker.
package golang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/jward/usegraph/internal/walker"
)

// loadMode is everything the resolver needs: syntax and types for the root
// packages, module membership for every package in the import graph.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule |
	packages.NeedDeps |
	packages.NeedImports

// Frontend loads Go packages below a project root.
type Frontend struct {
	patterns    []string
	tests       bool
	allowErrors bool
	logger      *slog.Logger
}

// Option configures a Frontend.
type Option func(*Frontend)

// WithPatterns overrides the package patterns passed to go/packages.
// Default: "./...".
func WithPatterns(patterns ...string) Option {
	return func(f *Frontend) {
		f.patterns = patterns
	}
}

// WithTests includes _test.go files and test packages.
func WithTests(tests bool) Option {
	return func(f *Frontend) {
		f.tests = tests
	}
}

// WithAllowErrors makes package load errors non-fatal. They are logged and
// the packages are walked with whatever type information was recovered.
func WithAllowErrors(allow bool) Option {
	return func(f *Frontend) {
		f.allowErrors = allow
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontend) {
		f.logger = logger
	}
}

// New returns a Go front end.
func New(opts ...Option) *Frontend {
	f := &Frontend{
		patterns: []string{"./..."},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name identifies the front end in logs and config.
func (f *Frontend) Name() string {
	return "go"
}

// Load type-checks the packages under root and returns one tree per Go file
// of every root package.
func (f *Frontend) Load(ctx context.Context, root string) (*walker.Project, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     root,
		Tests:   f.tests,
	}
	pkgs, err := packages.Load(cfg, f.patterns...)
	if err != nil {
		return nil, fmt.Errorf("golang: load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		if !f.allowErrors {
			return nil, fmt.Errorf("golang: %d package error(s): %w", len(errs), errors.Join(errs...))
		}
		f.logger.Warn("package errors, continuing with partial type information", "count", len(errs))
		for _, e := range errs {
			f.logger.Debug("package error", "error", e)
		}
	}

	res := newResolver(pkgs)
	var trees []walker.Tree
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		if pkg.TypesInfo == nil {
			continue
		}
		scope := &pkgScope{info: pkg.TypesInfo}
		for i, file := range pkg.Syntax {
			if i >= len(pkg.CompiledGoFiles) {
				break
			}
			path := pkg.CompiledGoFiles[i]
			// With tests enabled a file can appear in both the package and
			// its test variant.
			if seen[path] {
				continue
			}
			seen[path] = true
			trees = append(trees, walker.Tree{Path: path, Root: wrap(file, scope)})
		}
	}
	sort.Slice(trees, func(i, j int) bool { return trees[i].Path < trees[j].Path })

	f.logger.Debug("loaded go packages", "root", root, "packages", len(pkgs), "files", len(trees), "unit", res.unit)
	return &walker.Project{Trees: trees, Resolver: res}, nil
}

