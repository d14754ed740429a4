package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/diagnostics"
	"github.com/oshokin/nativefier/internal/logger"
	"github.com/oshokin/nativefier/internal/service/engine"
)

const (
	scratchPattern = "nativefier-"
	stagedAppDir   = "app"
	iconWorkDir    = "icons"
)

// run is the mutable state of one pipeline execution.
type run struct {
	raw        *config.Options
	opts       *config.Options
	scratchDir string
	appPaths   []string
	diag       *diagnostics.Buffer
	result     *Result
}

type stage struct {
	name StageName
	fn   func(ctx context.Context, st *run) error
}

// StageNames returns the pipeline stages in execution order.
func StageNames() []StageName {
	return []StageName{StageInferring, StageCopying, StageIcons, StagePackaging, StageFinalizing}
}

// stages returns the pipeline in execution order.
func (p *Packager) stages() []stage {
	return []stage{
		{name: StageInferring, fn: p.infer},
		{name: StageCopying, fn: p.copyApp},
		{name: StageIcons, fn: p.buildIcon},
		{name: StagePackaging, fn: p.pack},
		{name: StageFinalizing, fn: p.finalize},
	}
}

// runStages ticks the reporter before each stage and stops at the first
// failure or when ctx is done.
func (p *Packager) runStages(ctx context.Context, st *run) error {
	for _, s := range p.stages() {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: s.name, Err: fmt.Errorf("%w: %w", ErrCanceled, err)}
		}

		p.reporter.Tick(string(s.name))
		logger.DebugKV(ctx, "Stage started", "stage", s.name)

		if err := s.fn(ctx, st); err != nil {
			return &StageError{Stage: s.name, Err: err}
		}
	}

	return nil
}

func (p *Packager) infer(ctx context.Context, st *run) error {
	opts, err := p.inference.Infer(ctx, st.raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInference, err)
	}

	st.opts = opts

	logger.DebugKV(ctx, "Options resolved",
		"name", opts.Name, "url", opts.TargetURL, "platform", opts.Platform, "arch", opts.Arch)

	return nil
}

func (p *Packager) copyApp(ctx context.Context, st *run) error {
	scratchDir, err := os.MkdirTemp(p.scratchRoot, scratchPattern)
	if err != nil {
		return fmt.Errorf("%w: create scratch directory: %w", ErrStaging, err)
	}

	st.scratchDir = scratchDir
	appDir := filepath.Join(scratchDir, stagedAppDir)

	packageName, err := StageApp(ctx, st.opts.AppDir, appDir, st.opts)
	if err != nil {
		return err
	}

	st.opts.AppDir = appDir
	st.result.PackageName = packageName

	return nil
}

func (p *Packager) buildIcon(ctx context.Context, st *run) error {
	workDir := filepath.Join(st.scratchDir, iconWorkDir)
	if err := os.MkdirAll(workDir, stagedDirMode); err != nil {
		logger.WarnKV(ctx, "Icon work directory unavailable, building without an icon", "path", workDir, "error", err)

		st.opts.Icon = ""

		return nil
	}

	opts, err := p.icons.Build(ctx, st.opts, workDir)
	if err != nil {
		logger.WarnKV(ctx, "Icon preparation failed, building without an icon", "icon", st.opts.Icon, "error", err)

		st.opts.Icon = ""

		return nil
	}

	st.opts = opts

	return nil
}

func (p *Packager) pack(ctx context.Context, st *run) error {
	sanitized, warnings := Sanitize(ctx, p.probe, st.opts)
	st.result.Warnings = append(st.result.Warnings, warnings...)

	p.warnIfRunning(ctx, sanitized)

	st.diag.Override()
	paths, err := p.engine.Pack(ctx, sanitized, st.diag)
	st.diag.Restore()

	if err != nil {
		return fmt.Errorf("%w: %w", ErrPackagingEngine, err)
	}

	st.appPaths = paths

	return nil
}

// finalize uses the unsanitized options: the icon is still copied into the
// bundle when the host could not embed it into the executable.
func (p *Packager) finalize(ctx context.Context, st *run) error {
	appPath := pickAppPath(ctx, st.appPaths)
	if appPath == "" {
		logger.Info(ctx, "No app was produced, the output directory probably already exists")

		return nil
	}

	if len(st.appPaths) > 1 {
		st.result.Warnings = append(st.result.Warnings, ErrUnexpectedResultShape.Error())
	}

	st.result.AppPath = appPath

	if err := FinalizeIcon(ctx, st.opts, appPath); err != nil {
		logger.WarnKV(ctx, "Failed to copy the icon into the bundle", "error", err)

		st.result.IconErr = err
	}

	return nil
}

// pickAppPath returns the single produced bundle, the first one when the
// engine built several, or an empty string when it built none.
func pickAppPath(ctx context.Context, paths []string) string {
	switch len(paths) {
	case 0:
		return ""
	case 1:
		return paths[0]
	default:
		logger.WarnKV(ctx, "Using the first produced bundle", "paths", paths, "error", ErrUnexpectedResultShape)

		return paths[0]
	}
}

// warnIfRunning warns when an existing bundle is about to be overwritten
// while its executable is running.
func (p *Packager) warnIfRunning(ctx context.Context, opts *config.Options) {
	if !opts.Overwrite {
		return
	}

	if _, err := os.Stat(engine.ExpectedPath(opts)); err != nil {
		return
	}

	executable := engine.SanitizeFilename(opts.Name)

	running, err := p.probe.IsProcessRunning(executable)
	if err != nil {
		logger.DebugKV(ctx, "Could not list running processes", "error", err)

		return
	}

	if running {
		logger.WarnKV(ctx, "The app is running, overwriting its bundle may fail", "executable", executable)
	}
}
