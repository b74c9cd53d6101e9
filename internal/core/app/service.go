// # internal/core/app/service.go
package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"camelize/internal/core/config"
	"camelize/internal/core/decision"
	"camelize/internal/core/errors"
	"camelize/internal/data/history"
	"camelize/internal/engine/parser"
	"camelize/internal/engine/rename"
	"camelize/internal/engine/syntax"
	"camelize/internal/shared/observability"
	"camelize/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Config *config.Config
	// Root anchors relative glob matching; defaults to the working directory.
	Root string
	// Decisions receives every record as it is produced, typically a CSV sink.
	Decisions decision.Sink
	// History, when set, stores each run and its decisions.
	History *history.Store
	Now     func() time.Time
}

type FileError struct {
	Path string
	Err  error
}

type FileDiff struct {
	Path string
	Diff string
}

// Report summarizes one convert run.
type Report struct {
	RunID           string
	StartedAt       time.Time
	Duration        time.Duration
	DryRun          bool
	Discovered      int
	Loaded          int
	Failed          []FileError
	Stats           rename.Stats
	SkippedByReason map[decision.Reason]int
	Dirty           []string
	Written         []string
	Diffs           []FileDiff
}

type Service struct {
	mu      sync.RWMutex
	cfg     *config.Config
	root    string
	parser  *parser.Parser
	matcher *Matcher

	sink       decision.Sink
	history    *history.Store
	now        func() time.Time
	afterWrite func(path string, data []byte)
	runMu      sync.Mutex
}

func NewService(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	s := &Service{
		root:    root,
		sink:    opts.Decisions,
		history: opts.History,
		now:     opts.Now,
	}
	if s.sink == nil {
		s.sink = decision.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	if err := s.Reconfigure(opts.Config); err != nil {
		return nil, err
	}
	return s, nil
}

// Reconfigure swaps the configuration used by later runs.
func (s *Service) Reconfigure(cfg *config.Config) error {
	loader, err := parser.NewGrammarLoader(cfg.Extensions)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "load grammars")
	}
	matcher, err := NewMatcher(cfg, s.root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.parser = parser.NewParser(loader)
	s.matcher = matcher
	return nil
}

func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type runState struct {
	cfg     *config.Config
	parser  *parser.Parser
	matcher *Matcher
}

func (s *Service) snapshot() runState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return runState{cfg: s.cfg, parser: s.parser, matcher: s.matcher}
}

// Run converts every discovered file under paths, or the configured paths when none are given.
// Runs are serialized.
func (s *Service) Run(ctx context.Context, paths []string) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	st := s.snapshot()
	if len(paths) == 0 {
		paths = st.cfg.Paths
	}

	ctx, span := observability.Tracer.Start(ctx, "app.Service.Run", trace.WithAttributes(
		attribute.StringSlice("paths", paths),
		attribute.Bool("dry_run", st.cfg.Write.DryRun),
	))
	defer span.End()

	report, err := s.run(ctx, st, paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RunsTotal.WithLabelValues("error").Inc()
		return report, err
	}
	span.SetAttributes(
		attribute.Int("files", report.Loaded),
		attribute.Int("renamed", report.Stats.Renamed),
		attribute.Int("dirty", len(report.Dirty)),
	)
	observability.RunsTotal.WithLabelValues("ok").Inc()
	observability.DirtyFiles.Set(float64(len(report.Dirty)))
	return report, nil
}

func (s *Service) run(ctx context.Context, st runState, paths []string) (*Report, error) {
	report := &Report{
		RunID:     history.NewRunID(),
		StartedAt: s.now(),
		DryRun:    st.cfg.Write.DryRun,
	}
	start := time.Now()

	files, err := Discover(paths, st.matcher)
	if err != nil {
		return report, err
	}
	report.Discovered = len(files)

	prog := syntax.NewProgram(0)
	originals := make(map[string][]byte, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		data, err := s.load(ctx, st.parser, prog, path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			observability.FilesLoadedTotal.WithLabelValues("failed").Inc()
			report.Failed = append(report.Failed, FileError{Path: path, Err: err})
			continue
		}
		observability.FilesLoadedTotal.WithLabelValues("loaded").Inc()
		originals[path] = data
	}
	report.Loaded = len(originals)

	var collector decision.Collector
	var recorder *history.Recorder
	sinks := []decision.Sink{s.sink, &collector}
	if s.history != nil {
		recorder = history.NewRecorder(s.history, report.RunID)
		sinks = append(sinks, recorder)
	}
	engine := rename.NewEngine(prog, rename.Options{Sink: decision.Tee(sinks...), Now: s.now})
	dirty := rename.NewDirtySet()

	_, span := observability.Tracer.Start(ctx, "rename.Convert")
	for _, unit := range prog.Units() {
		if err := ctx.Err(); err != nil {
			span.End()
			return report, err
		}
		stats, err := engine.Convert(unit, st.matcher.Readonly, dirty)
		report.Stats.Add(stats)
		if err != nil {
			span.End()
			return report, err
		}
	}
	span.End()

	records := collector.Records()
	report.SkippedByReason = decision.CountByReason(records)
	report.Dirty = dirty.Paths()

	if err := s.writeBack(prog, st.cfg, originals, report); err != nil {
		return report, err
	}
	report.Duration = time.Since(start)

	if recorder != nil {
		if err := recorder.Flush(report.historyRun(s.root)); err != nil {
			slog.Warn("failed to record run history", "run_id", report.RunID, "error", err)
		}
	}
	slog.Info("convert run finished",
		"run_id", report.RunID,
		"files", report.Loaded,
		"renamed", report.Stats.Renamed,
		"skipped", report.Stats.Skipped,
		"dirty", len(report.Dirty),
		"dry_run", report.DryRun,
	)
	return report, nil
}

func (s *Service) load(ctx context.Context, p *parser.Parser, prog *syntax.Program, path string) ([]byte, error) {
	_, span := observability.Tracer.Start(ctx, "parser.Load", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
	}
	if _, err := p.Load(prog, path, data); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

func (s *Service) writeBack(prog *syntax.Program, cfg *config.Config, originals map[string][]byte, report *Report) error {
	for _, path := range report.Dirty {
		unit, ok := prog.UnitByPath(path)
		if !ok {
			return errors.AddContext(errors.New(errors.CodeInvariant, "dirty path has no unit"), errors.CtxPath, path)
		}
		out := prog.Serialize(unit)
		before := originals[path]
		if bytes.Equal(out, before) {
			continue
		}
		if cfg.Write.Diff {
			report.Diffs = append(report.Diffs, FileDiff{Path: path, Diff: UnifiedDiff(filepath.ToSlash(path), string(before), string(out))})
		}
		if cfg.Write.DryRun {
			continue
		}
		if err := util.ReplaceFile(path, out); err != nil {
			code := errors.CodeInternal
			if os.IsPermission(err) {
				code = errors.CodePermissionDenied
			}
			return errors.AddContext(errors.Wrap(err, code, "write source"), errors.CtxPath, path)
		}
		if s.afterWrite != nil {
			s.afterWrite(path, out)
		}
		report.Written = append(report.Written, path)
	}
	return nil
}

func (r *Report) historyRun(root string) history.Run {
	return history.Run{
		ID:                r.RunID,
		Root:              root,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.StartedAt.Add(r.Duration),
		DryRun:            r.DryRun,
		Files:             r.Loaded,
		Candidates:        r.Stats.Candidates,
		Renamed:           r.Stats.Renamed,
		Skipped:           r.Stats.Skipped,
		ShorthandRewrites: r.Stats.ShorthandRewrites,
		DirtyFiles:        len(r.Dirty),
	}
}

// String is a one-line summary for logs.
func (r *Report) String() string {
	return fmt.Sprintf("run %s: %d files, %d renamed, %d skipped, %d dirty", r.RunID, r.Loaded, r.Stats.Renamed, r.Stats.Skipped, len(r.Dirty))
}
