// Package pipeline provides the core holgraph pipeline.
//
// This package implements the complete scan → resolve → build → serialize
// pipeline shared by the CLI commands and the HTTP server. Centralizing it
// keeps every entry point's behavior identical.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Scan: discover artifact files and read their dependency lists
//  2. Resolve: derive collision-aware display names for every path
//  3. Build: construct the dependency graph, optionally reducing
//     transitive edges
//  4. Serialize: emit the Graphviz DOT document
//
// Rasterization to SVG/PNG is a separate, cached step (Runner.Render).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{Root: "/path/to/HolBA", Reduce: true}
//	result, err := runner.Generate(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.DOT)
package pipeline

import (
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/log"

	"github.com/holgraph/holgraph/pkg/depgraph"
	"github.com/holgraph/holgraph/pkg/errors"
	"github.com/holgraph/holgraph/pkg/names"
	"github.com/holgraph/holgraph/pkg/render/dot"
	"github.com/holgraph/holgraph/pkg/scan"
)

// Format constants for render outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %q (must be one of: dot, svg, png)", f)
		}
	}
	return nil
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Root is the source tree to scan. Required.
	Root string

	// Suffixes selects artifact files. Defaults to scan.DefaultSuffixes.
	Suffixes []string

	// Extensions are stripped from dependency lines. Defaults to
	// scan.DefaultExtensions.
	Extensions []string

	// FilterFiles restricts which artifact paths are read (regexp source).
	FilterFiles string

	// ExcludeDeps drops matching dependency lines (regexp source). Applied
	// before KeepDeps.
	ExcludeDeps string

	// KeepDeps keeps only matching dependency lines (regexp source).
	KeepDeps string

	// Reduce removes transitive dependency edges after building.
	Reduce bool

	// DebugPrintFiles dumps every artifact and its merged dependency list to
	// the logger, bypassing the level filter.
	DebugPrintFiles bool

	// Seed fixes the DOT edge-color generator. Nil selects dot.DefaultSeed;
	// an explicit value, including zero, is used as given.
	Seed *int64

	// Naming configures display-name resolution. The zero value means
	// names.DefaultOptions.
	Naming names.Options

	// Logger receives progress and diagnostics. Defaults to a discarding
	// logger.
	Logger *log.Logger

	filterRe  *regexp.Regexp
	excludeRe *regexp.Regexp
	keepRe    *regexp.Regexp

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields, compiles patterns, and
// applies defaults. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Root == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source root is required")
	}

	if len(o.Suffixes) == 0 {
		o.Suffixes = scan.DefaultSuffixes
	}
	if err := errors.ValidateSuffixes(o.Suffixes); err != nil {
		return err
	}
	if len(o.Extensions) == 0 {
		o.Extensions = scan.DefaultExtensions
	}
	if o.Naming == (names.Options{}) {
		o.Naming = names.DefaultOptions()
	}
	if o.Seed == nil {
		seed := int64(dot.DefaultSeed)
		o.Seed = &seed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var err error
	if o.filterRe, err = errors.CompilePattern("file filter", o.FilterFiles); err != nil {
		return err
	}
	if o.excludeRe, err = errors.CompilePattern("dependency exclude", o.ExcludeDeps); err != nil {
		return err
	}
	if o.keepRe, err = errors.CompilePattern("dependency include", o.KeepDeps); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// depFilter returns the compiled line filter. Valid only after
// ValidateAndSetDefaults.
func (o *Options) depFilter() scan.Filter {
	return scan.Filter{Exclude: o.excludeRe, Include: o.keepRe}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built dependency graph (post-reduction when requested).
	Graph *depgraph.Graph

	// DOT is the serialized document.
	DOT string

	// Labels maps every referenced path to its display name.
	Labels map[string]string

	// Collisions lists pretty filenames that needed disambiguation.
	Collisions []string

	// Files is the number of artifact files read.
	Files int

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount int
	EdgeCount int
	ScanTime  time.Duration
	BuildTime time.Duration
}
