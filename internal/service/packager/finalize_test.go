package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativefier/internal/config"
)

// TestFinalizeIconCopies places the icon under resources/app.
func TestFinalizeIconCopies(t *testing.T) {
	t.Parallel()

	appPath := t.TempDir()
	opts := &config.Options{
		Platform: config.PlatformLinux,
		Icon:     writeFile(t, "logo.png", "png-bytes"),
	}

	require.NoError(t, FinalizeIcon(context.Background(), opts, appPath))

	data, err := os.ReadFile(filepath.Join(appPath, "resources", "app", "icon.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))
}

// TestFinalizeIconReplaces overwrites an icon already present in the bundle.
func TestFinalizeIconReplaces(t *testing.T) {
	t.Parallel()

	appPath := t.TempDir()
	opts := &config.Options{
		Platform: config.PlatformWindows,
		Icon:     writeFile(t, "logo.ico", "new-icon"),
	}

	target := IconPath(appPath, opts.Icon)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("old-icon"), 0o644))

	require.NoError(t, FinalizeIcon(context.Background(), opts, appPath))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "new-icon", string(data))

	_, err = os.Stat(target + ".old")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFinalizeIconSkips does nothing without an icon or for macOS targets.
func TestFinalizeIconSkips(t *testing.T) {
	t.Parallel()

	for _, opts := range []*config.Options{
		{Platform: config.PlatformLinux},
		{Platform: config.PlatformDarwin, Icon: "missing.icns"},
		{Platform: config.PlatformMAS, Icon: "missing.icns"},
	} {
		appPath := t.TempDir()
		require.NoError(t, FinalizeIcon(context.Background(), opts, appPath))

		_, err := os.Stat(filepath.Join(appPath, "resources"))
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}

// TestFinalizeIconMissing reports ErrIcon when the icon is gone.
func TestFinalizeIconMissing(t *testing.T) {
	t.Parallel()

	opts := &config.Options{
		Platform: config.PlatformLinux,
		Icon:     filepath.Join(t.TempDir(), "gone.png"),
	}

	require.ErrorIs(t, FinalizeIcon(context.Background(), opts, t.TempDir()), ErrIcon)
}
