package commands

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/surfacegen/genapi/internal/cache"
	"github.com/surfacegen/genapi/internal/cli/config"
	"github.com/surfacegen/genapi/internal/cli/ui"
	"github.com/surfacegen/genapi/internal/codegen"
	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/filter"
	"github.com/surfacegen/genapi/internal/history"
	"github.com/surfacegen/genapi/internal/logging"
	"github.com/surfacegen/genapi/internal/metadata"
	"github.com/surfacegen/genapi/internal/syntax"
	"github.com/surfacegen/genapi/internal/watch"
)

// typeNotFoundError reports a --type selection missing from the document
type typeNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *typeNotFoundError) Error() string {
	return fmt.Sprintf("type %s not found", e.Name)
}

// Pipeline performs one emission: read, resolve, filter, write, record.
// It is reused across runs by the watch command.
type Pipeline struct {
	Config *config.Config
	// TypeName restricts output to a single type declaration
	TypeName string
	// DumpModel re-encodes the decoded document to this path
	DumpModel string
	History   *history.Store
	Cache     cache.Cache
	Stdout    io.Writer
	// Terminal enables colored declarations when Config.Format.Color is set
	Terminal bool

	logger    *zap.Logger
	collector *logging.Collector
}

// Result describes a finished emission
type Result struct {
	RunID       string
	Surface     string
	Summary     codegen.Summary
	Diagnostics errors.DiagnosticList
	InputHash   string
	OutputHash  string
	Cached      bool
	Change      history.Change
	Recorded    bool
	Elapsed     time.Duration
}

// NewPipeline creates a pipeline logging to logOut. Coded warnings are also
// collected so each Result carries them.
func NewPipeline(cfg *config.Config, logOut io.Writer) *Pipeline {
	collector := logging.NewCollector()
	core := zapcore.NewTee(
		logging.NewCore(logging.Options{Verbosity: cfg.Log.Verbosity, JSON: cfg.Log.JSON, Output: logOut}),
		collector,
	)
	return &Pipeline{
		Config:    cfg,
		Stdout:    os.Stdout,
		logger:    zap.New(core),
		collector: collector,
	}
}

// Logger returns the pipeline logger
func (p *Pipeline) Logger() *zap.Logger { return p.logger }

// Run performs an emission. An empty runID is replaced with a fresh one.
func (p *Pipeline) Run(ctx context.Context, runID string) (*Result, error) {
	start := time.Now()
	if runID == "" {
		runID = uuid.NewString()
	}
	cfg := p.Config
	logger := p.logger.With(zap.String("run", runID))
	p.collector.Reset()

	if cfg.Input == "" {
		return nil, errors.NewMissingInput()
	}
	inputHash, err := watch.HashFile(cfg.Input)
	if err != nil {
		return nil, errors.NewReadDocument(cfg.Input, err)
	}

	f, err := buildFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	var key string
	if p.Cache != nil && p.DumpModel == "" {
		if key, err = p.cacheKey(inputHash); err != nil {
			return nil, err
		}
		entry, err := p.Cache.Get(ctx, key)
		switch {
		case err == nil:
			logger.Info("render cache hit", zap.String("key", key))
			result := &Result{
				RunID:       runID,
				Surface:     entry.Surface,
				Summary:     entry.Summary,
				Diagnostics: entry.Diagnostics,
				InputHash:   inputHash,
				OutputHash:  watch.HashContent([]byte(entry.Surface)),
				Cached:      true,
			}
			return p.finish(ctx, result, entry.Version, nil, nil, f, start)
		case !stderrors.Is(err, cache.ErrMiss):
			logger.Warn("render cache unavailable", zap.Error(err))
		}
	}

	logger.Debug("reading metadata document", zap.String("input", cfg.Input))
	doc, err := metadata.ReadDocument(cfg.Input)
	if err != nil {
		return nil, err
	}
	asm, err := metadata.Load(doc)
	if err != nil {
		return nil, err
	}

	if p.DumpModel != "" {
		if err := metadata.WriteDocument(doc, p.DumpModel); err != nil {
			return nil, err
		}
		logger.Info("wrote metadata model", zap.String("path", p.DumpModel))
	}

	var target *metadata.TypeDefinition
	if p.TypeName != "" {
		if target = codegen.FindType(asm, p.TypeName); target == nil {
			return nil, &typeNotFoundError{
				Name:        p.TypeName,
				Suggestions: ui.FindSimilar(p.TypeName, codegen.TypeNames(asm), nil),
			}
		}
	}

	var buf bytes.Buffer
	summary, err := p.render(&buf, nil, asm, target, f, logger)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       runID,
		Surface:     buf.String(),
		Summary:     summary,
		Diagnostics: p.collector.Diagnostics(),
		InputHash:   inputHash,
		OutputHash:  watch.HashContent(buf.Bytes()),
	}

	if key != "" {
		entry := &cache.Entry{Surface: result.Surface, Summary: summary, Version: asm.Version, Diagnostics: result.Diagnostics}
		if err := p.Cache.Set(ctx, key, entry); err != nil {
			logger.Warn("failed to store rendered surface", zap.Error(err))
		}
	}

	return p.finish(ctx, result, asm.Version, asm, target, f, start)
}

// finish writes the result and records it in the history
func (p *Pipeline) finish(ctx context.Context, result *Result, version string, asm *metadata.Assembly, target *metadata.TypeDefinition, f filter.Filter, start time.Time) (*Result, error) {
	if err := p.write(result, asm, target, f); err != nil {
		return nil, err
	}
	if p.History != nil {
		if err := p.record(ctx, result, version); err != nil {
			return nil, err
		}
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

// cacheKey covers the input and every setting that changes the output.
// The exclude list is hashed by content since its path says nothing about it.
func (p *Pipeline) cacheKey(inputHash string) (string, error) {
	cfg := p.Config
	excludeHash := ""
	if cfg.Filter.ExcludeList != "" {
		h, err := watch.HashFile(cfg.Filter.ExcludeList)
		if err != nil {
			return "", errors.NewInvalidConfig("filter.exclude_list", err.Error())
		}
		excludeHash = h
	}
	return cache.Key(inputHash, cfg.Writer, cfg.Filter, cfg.Format.Indent, excludeHash, p.TypeName)
}

// render writes the surface, or a single type, into out. A nil palette
// selects the plain text sink.
func (p *Pipeline) render(out io.Writer, palette syntax.Palette, asm *metadata.Assembly, target *metadata.TypeDefinition, f filter.Filter, logger *zap.Logger) (codegen.Summary, error) {
	cfg := p.Config
	var sink *syntax.TextWriter
	if palette != nil {
		sink = syntax.NewColorWriter(out, cfg.Format.Indent, palette)
	} else {
		sink = syntax.NewTextWriter(out, cfg.Format.Indent)
	}

	w, err := codegen.NewWriter(sink, f, writerOptions(cfg.Writer), logger)
	if err != nil {
		return codegen.Summary{}, err
	}

	emitter := codegen.NewEmitter(w)
	var summary codegen.Summary
	if target != nil {
		summary = emitter.EmitType(target)
	} else {
		summary = emitter.EmitAssembly(asm)
	}
	if err := sink.Err(); err != nil {
		return summary, errors.NewSinkWrite(cfg.Output, err)
	}
	return summary, nil
}

// write delivers the rendered surface to the output file or stdout. Colors
// need the graph, so cached results are always written plain.
func (p *Pipeline) write(result *Result, asm *metadata.Assembly, target *metadata.TypeDefinition, f filter.Filter) error {
	cfg := p.Config
	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, []byte(result.Surface), 0o644); err != nil {
			return errors.NewSinkWrite(cfg.Output, err)
		}
		return nil
	}

	if cfg.Format.Color && p.Terminal && asm != nil {
		// warnings were already reported by the plain pass
		_, err := p.render(p.Stdout, syntax.DefaultPalette(), asm, target, f, zap.NewNop())
		return err
	}
	if _, err := io.WriteString(p.Stdout, result.Surface); err != nil {
		return errors.NewSinkWrite("stdout", err)
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, result *Result, version string) error {
	name := result.Summary.Assembly
	prev, err := p.History.Latest(ctx, name)
	if err != nil {
		return err
	}

	_, warnings, _ := result.Diagnostics.Counts()
	rec := &history.Record{
		ID:         result.RunID,
		Assembly:   name,
		Version:    version,
		InputHash:  result.InputHash,
		OutputHash: result.OutputHash,
		Namespaces: result.Summary.Namespaces,
		Types:      result.Summary.Types,
		Members:    result.Summary.Members,
		Warnings:   warnings,
	}
	if err := p.History.Add(ctx, rec); err != nil {
		return err
	}

	result.Change = history.Compare(prev, rec)
	result.Recorded = true
	p.logger.Info("recorded emission",
		zap.String("run", result.RunID),
		zap.String("assembly", name),
		zap.Stringer("change", result.Change),
	)
	return nil
}

func writerOptions(cfg config.WriterConfig) codegen.Options {
	return codegen.Options{
		ForCompilation:                       cfg.ForCompilation,
		AlwaysIncludeBase:                    cfg.AlwaysIncludeBase,
		IncludeFakeAttributes:                cfg.IncludeFakeAttributes,
		PlatformNotSupportedExceptionMessage: cfg.PlatformNotSupportedMessage,
	}
}

// buildFilter composes the configured inclusion policy: public-only or
// include-all, narrowed by an exclude list when one is set.
func buildFilter(cfg config.FilterConfig) (filter.Filter, error) {
	var f filter.Filter
	if cfg.IncludeInternals {
		f = filter.NewIncludeAllFilter(cfg.IncludeForwardedTypes)
	} else {
		f = filter.NewPublicOnlyFilter(cfg.IncludeForwardedTypes, cfg.ExcludeAttributes)
	}

	if cfg.ExcludeList == "" {
		return f, nil
	}
	ids, err := filter.LoadExcludeList(cfg.ExcludeList)
	if err != nil {
		return nil, errors.NewInvalidConfig("filter.exclude_list", err.Error())
	}
	return filter.NewExcludeListFilter(f, ids), nil
}
