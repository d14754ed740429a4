package packager

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/service/engine"
)

type fakeProbe struct {
	platform    string
	executables map[string]bool
	running     map[string]bool
	lookups     int
}

func (p *fakeProbe) IsHostPlatform(platform string) bool {
	return p.platform == platform
}

func (p *fakeProbe) HasExecutable(name string) bool {
	p.lookups++

	return p.executables[name]
}

func (p *fakeProbe) IsProcessRunning(name string) (bool, error) {
	return p.running[name], nil
}

type recordingReporter struct {
	labels []string
}

func (r *recordingReporter) Tick(label string) {
	r.labels = append(r.labels, label)
}

// fakeEngine stands in for electron-packager. It records what it received and
// creates the bundle directory at the expected location.
type fakeEngine struct {
	output   string
	err      error
	paths    func(opts *config.Options) []string
	inspect  func(opts *config.Options)
	received *config.Options
}

func (e *fakeEngine) Pack(_ context.Context, opts *config.Options, diag io.Writer) ([]string, error) {
	e.received = opts.Clone()

	if e.inspect != nil {
		e.inspect(opts)
	}

	if e.output != "" {
		_, _ = io.WriteString(diag, e.output)
	}

	if e.err != nil {
		return nil, e.err
	}

	if e.paths != nil {
		return e.paths(opts), nil
	}

	appPath := engine.ExpectedPath(opts)
	if err := os.MkdirAll(appPath, 0o755); err != nil {
		return nil, err
	}

	return []string{appPath}, nil
}

// writeTemplate creates a minimal app template.
func writeTemplate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PackageManifest),
		[]byte(`{"name": "nativefier-placeholder", "main": "lib/main.js", "version": "1.0.0"}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "main.js"), []byte("console.log('main');\n"), 0o644))

	return dir
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func baseOptions(t *testing.T) *config.Options {
	t.Helper()

	return &config.Options{
		AppDir:    writeTemplate(t),
		Out:       t.TempDir(),
		TargetURL: "https://example.com",
		Name:      "Example App",
		Platform:  config.PlatformLinux,
		Arch:      config.ArchX64,
	}
}
