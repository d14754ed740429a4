package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativefier/internal/config"
)

func packOptions(t *testing.T) *config.Options {
	t.Helper()

	return &config.Options{
		AppDir:          t.TempDir(),
		Out:             t.TempDir(),
		Name:            "My App",
		Platform:        config.PlatformLinux,
		Arch:            config.ArchX64,
		ElectronVersion: "1.7.9",
	}
}

// writeScript creates a shell script standing in for electron-packager.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-packager.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return path
}

// TestPackParsesWrittenPath runs a fake engine and reads the produced path from its output.
func TestPackParsesWrittenPath(t *testing.T) {
	t.Parallel()

	opts := packOptions(t)
	bundle := filepath.Join(opts.Out, "custom-location")
	argsFile := filepath.Join(t.TempDir(), "args.txt")

	script := writeScript(t, fmt.Sprintf(`printf '%%s\n' "$@" > '%s'
echo "Packaging app for platform linux x64"
mkdir -p '%s'
echo "Wrote new app to:"
echo '%s'
`, argsFile, bundle, bundle))

	var diag bytes.Buffer

	paths, err := New(WithCommand("/bin/sh", script)).Pack(context.Background(), opts, &diag)
	require.NoError(t, err)
	require.Equal(t, []string{bundle}, paths)
	require.Contains(t, diag.String(), "Packaging app for platform linux x64")

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, Args(opts), strings.Split(strings.TrimSpace(string(recorded)), "\n"))
}

// TestPackFallsBackToExpectedPath uses the conventional output dir when the output has no marker.
func TestPackFallsBackToExpectedPath(t *testing.T) {
	t.Parallel()

	opts := packOptions(t)
	script := writeScript(t, fmt.Sprintf("mkdir -p '%s'\n", ExpectedPath(opts)))

	paths, err := New(WithCommand("/bin/sh", script)).Pack(context.Background(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, []string{ExpectedPath(opts)}, paths)
}

// TestPackSkipsExistingWithoutOverwrite returns no paths and never runs the engine.
func TestPackSkipsExistingWithoutOverwrite(t *testing.T) {
	t.Parallel()

	opts := packOptions(t)
	require.NoError(t, os.MkdirAll(ExpectedPath(opts), 0o755))

	var diag bytes.Buffer

	paths, err := New(WithCommand("/definitely/missing/packager")).Pack(context.Background(), opts, &diag)
	require.NoError(t, err)
	require.Empty(t, paths)
	require.Contains(t, diag.String(), "already exists")
}

// TestPackReportsFailure surfaces a non-zero exit.
func TestPackReportsFailure(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echo 'boom' >&2\nexit 3\n")

	var diag bytes.Buffer

	_, err := New(WithCommand("/bin/sh", script)).Pack(context.Background(), packOptions(t), &diag)
	require.Error(t, err)
	require.Contains(t, diag.String(), "boom")
}

// TestArgs checks flag rendering, including sorted metadata maps.
func TestArgs(t *testing.T) {
	t.Parallel()

	opts := &config.Options{
		AppDir:          "/stage",
		Out:             "/out",
		Name:            "App",
		Platform:        config.PlatformWindows,
		Arch:            config.ArchIA32,
		ElectronVersion: "1.7.9",
		Overwrite:       true,
		Conceal:         true,
		Icon:            "/icons/app.ico",
		AppCopyright:    "ACME",
		Win32Metadata:   map[string]string{"ProductName": "App", "CompanyName": "ACME"},
	}

	require.Equal(t, []string{
		"/stage", "App",
		"--platform=win32", "--arch=ia32", "--out=/out",
		"--electron-version=1.7.9", "--overwrite", "--asar",
		"--icon=/icons/app.ico", "--app-copyright=ACME",
		"--win32metadata.CompanyName=ACME", "--win32metadata.ProductName=App",
	}, Args(opts))
}

// TestParseWrittenPaths covers single-line and multi-line output forms.
func TestParseWrittenPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out := "noise\nWrote new app to " + dir + "\n"
	require.Equal(t, []string{dir}, ParseWrittenPaths(strings.NewReader(out)))

	out = "Wrote new apps to:\n" + dir + "\n" + dir + "\n\ntrailing " + dir + "\n"
	require.Equal(t, []string{dir, dir}, ParseWrittenPaths(strings.NewReader(out)))

	require.Empty(t, ParseWrittenPaths(strings.NewReader("nothing here\n")))
}

// TestSanitizeFilename strips characters that are invalid in file names.
func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "MyApp Work", SanitizeFilename(`My/App: Work?`))
}
