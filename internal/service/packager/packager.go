package packager

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/diagnostics"
	"github.com/oshokin/nativefier/internal/host"
	"github.com/oshokin/nativefier/internal/logger"
	"github.com/oshokin/nativefier/internal/progress"
	"github.com/oshokin/nativefier/internal/service/engine"
	"github.com/oshokin/nativefier/internal/service/icons"
	"github.com/oshokin/nativefier/internal/service/inference"
)

// Result describes a produced bundle.
type Result struct {
	// AppPath is the directory of the produced bundle.
	AppPath string
	// PackageName is the name written into the staged package manifest.
	PackageName string
	// Warnings lists options dropped because the host could not honour them.
	Warnings []string
	// IconErr is set when the icon could not be placed into the bundle.
	IconErr error
}

// Option configures a Packager.
type Option func(*Packager)

// WithInference replaces the options inference service.
func WithInference(service inference.Service) Option {
	return func(p *Packager) {
		p.inference = service
	}
}

// WithIconBuilder replaces the icon builder.
func WithIconBuilder(builder icons.Builder) Option {
	return func(p *Packager) {
		p.icons = builder
	}
}

// WithEngine replaces the packaging engine.
func WithEngine(e engine.Engine) Option {
	return func(p *Packager) {
		p.engine = e
	}
}

// WithProbe replaces the host capability probe.
func WithProbe(probe host.Probe) Option {
	return func(p *Packager) {
		p.probe = probe
	}
}

// WithReporter sets the progress reporter ticked at every stage.
func WithReporter(reporter progress.Reporter) Option {
	return func(p *Packager) {
		p.reporter = reporter
	}
}

// WithDiagnostics sets where engine diagnostics end up once the engine is done.
// By default they are logged line by line.
func WithDiagnostics(w io.Writer) Option {
	return func(p *Packager) {
		p.diagnostics = w
	}
}

// WithScratchRoot sets the parent directory of per-run scratch directories.
func WithScratchRoot(dir string) Option {
	return func(p *Packager) {
		p.scratchRoot = dir
	}
}

// Packager runs the packaging pipeline.
type Packager struct {
	inference   inference.Service
	icons       icons.Builder
	engine      engine.Engine
	probe       host.Probe
	reporter    progress.Reporter
	diagnostics io.Writer
	scratchRoot string
}

// New creates a Packager wired to the system host, electron-packager and
// the default inference and icon services.
func New(opts ...Option) *Packager {
	probe := host.NewSystem()

	p := &Packager{
		inference: inference.New(),
		icons:     icons.New(probe),
		engine:    engine.New(),
		probe:     probe,
		reporter:  progress.Nop{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run packages raw into a desktop bundle. raw is never modified.
// A nil Result with a nil error means the engine produced nothing, which
// happens when the bundle already exists and overwrite is off. Warnings about
// dropped options are then only logged.
func Run(ctx context.Context, raw *config.Options, opts ...Option) (*Result, error) {
	return New(opts...).Run(ctx, raw)
}

// Run packages raw into a desktop bundle. See the package-level Run.
func (p *Packager) Run(ctx context.Context, raw *config.Options) (*Result, error) {
	ctx = logger.WithName(ctx, "packager")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	target := p.diagnostics
	if target == nil {
		lines := logger.LineWriter(logger.WithName(ctx, "engine"), zapcore.InfoLevel)
		defer lines.Close()

		target = lines
	}

	st := &run{
		raw:    raw,
		diag:   diagnostics.NewBuffer(target),
		result: new(Result),
	}

	defer func() {
		if err := st.diag.Playback(); err != nil {
			logger.WarnKV(ctx, "Failed to replay engine output", "error", err)
		}
	}()

	err := p.runStages(ctx, st)

	defer p.cleanup(ctx, st, err == nil)

	if err != nil {
		logger.ErrorKV(ctx, "Packaging failed", "error", err)

		return nil, err
	}

	if st.result.AppPath == "" {
		return nil, nil //nolint:nilnil // Nothing was produced.
	}

	logger.InfoKV(ctx, "App built", "path", st.result.AppPath)

	return st.result, nil
}

// cleanup removes the scratch directory unless a successful run asked to keep it.
func (p *Packager) cleanup(ctx context.Context, st *run, succeeded bool) {
	if st.scratchDir == "" {
		return
	}

	if succeeded && st.opts != nil && st.opts.KeepStaging {
		logger.InfoKV(ctx, "Keeping the staging directory", "path", st.scratchDir)

		return
	}

	if err := os.RemoveAll(st.scratchDir); err != nil {
		logger.WarnKV(ctx, "Failed to remove the staging directory", "path", st.scratchDir, "error", err)
	}
}
