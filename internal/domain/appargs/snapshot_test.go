package appargs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/nativefier/internal/config"
)

func fullOptions() *config.Options {
	x, y := 10, 20

	return &config.Options{
		AppDir:            "/tmp/app",
		Out:               "/tmp/out",
		Overwrite:         true,
		TargetURL:         "https://example.com",
		Name:              "My App",
		Platform:          config.PlatformWindows,
		Arch:              config.ArchX64,
		Icon:              "icon.ico",
		Inject:            []string{"a.js"},
		Width:             1280,
		Height:            800,
		MaxWidth:          1920,
		X:                 &x,
		Y:                 &y,
		Zoom:              1.5,
		Tray:              true,
		AppCopyright:      "ACME",
		Win32Metadata:     map[string]string{"ProductName": "My App"},
		ProcessEnvs:       map[string]string{"FOO": "bar"},
		BasicAuthUsername: "user",
		GlobalShortcuts: []config.GlobalShortcut{{
			Key:         "MediaNextTrack",
			InputEvents: []config.InputEvent{{Type: "keyDown", KeyCode: "Right"}},
		}},
	}
}

func decode(t *testing.T, snap Snapshot) map[string]any {
	t.Helper()

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	return doc
}

// TestSelectExactKeys verifies that the document always carries exactly the allow-listed keys.
func TestSelectExactKeys(t *testing.T) {
	t.Parallel()

	for _, opts := range []*config.Options{nil, {}, fullOptions()} {
		doc := decode(t, Select(opts))
		require.Len(t, doc, len(Keys()))

		for _, key := range Keys() {
			require.Contains(t, doc, key)
		}
	}
}

// TestSelectCopiesByValue ensures the snapshot shares no state with the options.
func TestSelectCopiesByValue(t *testing.T) {
	t.Parallel()

	opts := fullOptions()
	snap := Select(opts)

	*snap.X = 99
	snap.Win32Metadata["ProductName"] = "Other"
	snap.GlobalShortcuts[0].InputEvents[0].KeyCode = "Left"

	require.Equal(t, 10, *opts.X)
	require.Equal(t, "My App", opts.Win32Metadata["ProductName"])
	require.Equal(t, "Right", opts.GlobalShortcuts[0].InputEvents[0].KeyCode)
}

// TestSelectIsIdempotent checks that selecting twice yields equal snapshots.
func TestSelectIsIdempotent(t *testing.T) {
	t.Parallel()

	opts := fullOptions()
	require.Equal(t, Select(opts), Select(opts))
}

// TestSelectOmitsHostOnlyFields makes sure build-only settings never leak.
func TestSelectOmitsHostOnlyFields(t *testing.T) {
	t.Parallel()

	doc := decode(t, Select(fullOptions()))

	for _, key := range []string{"icon", "inject", "out", "overwrite", "platform", "arch", "appDir", "dir"} {
		require.NotContains(t, doc, key)
	}

	require.Equal(t, "My App", doc["name"])
	require.Equal(t, "ACME", doc["appCopyright"])
	require.InEpsilon(t, 1920.0, doc["maxWidth"], 0.0001)
}

// TestSelectUnsetAreNull verifies that unset optional values are written as null.
func TestSelectUnsetAreNull(t *testing.T) {
	t.Parallel()

	doc := decode(t, Select(&config.Options{Name: "Plain", TargetURL: "https://example.com"}))

	for _, key := range []string{"appCopyright", "appVersion", "buildVersion", "versionString", "win32metadata", "x", "y", "userAgent"} {
		require.Nil(t, doc[key], "key %s", key)
	}
}
