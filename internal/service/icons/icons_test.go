package icons

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativefier/internal/config"
)

type fakeProbe struct {
	platform    string
	executables map[string]bool
}

func (p fakeProbe) IsHostPlatform(platform string) bool { return p.platform == platform }

func (p fakeProbe) HasExecutable(name string) bool { return p.executables[name] }

func (fakeProbe) IsProcessRunning(string) (bool, error) { return false, nil }

func writeIcon(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("icon"), 0o600))

	return path
}

// touchLastArg simulates a converter writing its output to the last argument.
func touchLastArg(calls *[]string) CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, name)

		return os.WriteFile(args[len(args)-1], []byte("converted"), 0o600)
	}
}

// TestBuildNoIcon passes options through when no icon is requested.
func TestBuildNoIcon(t *testing.T) {
	t.Parallel()

	in := &config.Options{Platform: config.PlatformLinux}
	out, err := New(fakeProbe{}).Build(context.Background(), in, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.NotSame(t, in, out)
}

// TestBuildMatchingFormat keeps icons that already fit the platform.
func TestBuildMatchingFormat(t *testing.T) {
	t.Parallel()

	var calls []string

	cases := map[string]string{
		config.PlatformWindows: "app.ico",
		config.PlatformLinux:   "app.PNG",
		config.PlatformDarwin:  "app.icns",
		config.PlatformMAS:     "app.icns",
	}

	for platform, name := range cases {
		icon := writeIcon(t, name)
		out, err := New(fakeProbe{}, WithCommandRunner(touchLastArg(&calls))).
			Build(context.Background(), &config.Options{Platform: platform, Icon: icon}, t.TempDir())
		require.NoError(t, err)
		require.Equal(t, icon, out.Icon)
	}

	require.Empty(t, calls)
}

// TestBuildConvertsWithImageMagick converts a png to ico for Windows.
func TestBuildConvertsWithImageMagick(t *testing.T) {
	t.Parallel()

	var calls []string

	workDir := t.TempDir()
	probe := fakeProbe{platform: config.PlatformLinux, executables: map[string]bool{"convert": true}}
	in := &config.Options{Platform: config.PlatformWindows, Icon: writeIcon(t, "app.png")}

	out, err := New(probe, WithCommandRunner(touchLastArg(&calls))).Build(context.Background(), in, workDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(workDir, "app.ico"), out.Icon)
	require.Equal(t, []string{"convert"}, calls)
	require.Equal(t, ".png", filepath.Ext(in.Icon))
}

// TestBuildKeepsIconWithoutConverter logs and keeps the icon when nothing can convert it.
func TestBuildKeepsIconWithoutConverter(t *testing.T) {
	t.Parallel()

	icon := writeIcon(t, "app.png")

	out, err := New(fakeProbe{platform: config.PlatformLinux}).
		Build(context.Background(), &config.Options{Platform: config.PlatformDarwin, Icon: icon}, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, icon, out.Icon)
}

// TestBuildUsesSipsOnMac converts to icns on a macOS host.
func TestBuildUsesSipsOnMac(t *testing.T) {
	t.Parallel()

	var calls []string

	probe := fakeProbe{platform: config.PlatformDarwin, executables: map[string]bool{"sips": true}}
	out, err := New(probe, WithCommandRunner(touchLastArg(&calls))).
		Build(context.Background(), &config.Options{Platform: config.PlatformDarwin, Icon: writeIcon(t, "app.png")}, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ".icns", filepath.Ext(out.Icon))
	require.Equal(t, []string{"sips"}, calls)
}

// TestBuildMissingIcon reports a missing icon file.
func TestBuildMissingIcon(t *testing.T) {
	t.Parallel()

	_, err := New(fakeProbe{}).Build(context.Background(),
		&config.Options{Platform: config.PlatformLinux, Icon: filepath.Join(t.TempDir(), "none.png")}, t.TempDir())
	require.ErrorIs(t, err, ErrIconNotFound)
}
