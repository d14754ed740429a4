package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Target platforms understood by the packaging engine.
const (
	PlatformLinux   = "linux"
	PlatformWindows = "win32"
	PlatformDarwin  = "darwin"
	PlatformMAS     = "mas"
)

// Target architectures understood by the packaging engine.
const (
	ArchX64    = "x64"
	ArchIA32   = "ia32"
	ArchARMv7l = "armv7l"
	ArchARM64  = "arm64"
)

const (
	// DefaultConfigFilename is the default filename for build settings.
	DefaultConfigFilename = "nativefier.yaml"

	// DefaultElectronVersion is the Electron release used when none is requested.
	DefaultElectronVersion = "1.7.9"

	// DefaultWidth and DefaultHeight are the initial window dimensions.
	DefaultWidth  = 1280
	DefaultHeight = 800

	// DefaultZoom is the initial zoom factor of the page.
	DefaultZoom = 1.0

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrTargetURLRequired is returned when the target URL is missing.
	ErrTargetURLRequired = errors.New("target url must be provided")
	// ErrUnknownPlatform is returned for platforms the engine cannot build for.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrUnknownArch is returned for architectures the engine cannot build for.
	ErrUnknownArch = errors.New("unknown architecture")
	// ErrIncompletePosition is returned when only one of x and y is set.
	ErrIncompletePosition = errors.New("x and y must both be specified")
)

// InputEvent is a synthetic input sent to the page when a global shortcut fires.
type InputEvent struct {
	Type    string `json:"type"    yaml:"type"`
	KeyCode string `json:"keyCode" yaml:"key_code"`
}

// GlobalShortcut binds an OS-wide accelerator to a list of input events.
type GlobalShortcut struct {
	Key         string       `json:"key"         yaml:"key"`
	InputEvents []InputEvent `json:"inputEvents" yaml:"input_events"`
}

// Options is the full set of build-time settings for one packaging run.
//
//nolint:tagliatelle // YAML keys follow the CLI flag names.
type Options struct {
	// AppDir is the application template copied into the staging directory.
	AppDir string `yaml:"app_dir"`
	// Out is the directory where the packaged bundle is written.
	Out string `yaml:"out"`
	// Overwrite replaces an existing bundle instead of skipping the build.
	Overwrite bool `yaml:"overwrite"`
	// Conceal packages the app source into an asar archive.
	Conceal bool `yaml:"conceal"`
	// ElectronVersion is the Electron release to package with.
	ElectronVersion string `yaml:"electron_version"`
	// NativefierVersion is the version of this tool recorded in the bundle.
	NativefierVersion string `yaml:"-"`

	TargetURL string   `yaml:"target_url"`
	Name      string   `yaml:"name"`
	Platform  string   `yaml:"platform"`
	Arch      string   `yaml:"arch"`
	Icon      string   `yaml:"icon"`
	Inject    []string `yaml:"inject"`

	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	MinWidth        int     `yaml:"min_width"`
	MinHeight       int     `yaml:"min_height"`
	MaxWidth        int     `yaml:"max_width"`
	MaxHeight       int     `yaml:"max_height"`
	X               *int    `yaml:"x"`
	Y               *int    `yaml:"y"`
	Zoom            float64 `yaml:"zoom"`
	Maximize        bool    `yaml:"maximize"`
	FullScreen      bool    `yaml:"full_screen"`
	HideWindowFrame bool    `yaml:"hide_window_frame"`
	AlwaysOnTop     bool    `yaml:"always_on_top"`
	ShowMenuBar     bool    `yaml:"show_menu_bar"`
	TitleBarStyle   string  `yaml:"title_bar_style"`

	Counter            bool   `yaml:"counter"`
	Bounce             bool   `yaml:"bounce"`
	FastQuit           bool   `yaml:"fast_quit"`
	Tray               bool   `yaml:"tray"`
	SingleInstance     bool   `yaml:"single_instance"`
	ClearCache         bool   `yaml:"clear_cache"`
	DisableContextMenu bool   `yaml:"disable_context_menu"`
	DisableDevTools    bool   `yaml:"disable_dev_tools"`
	DisableGPU         bool   `yaml:"disable_gpu"`
	IgnoreGPUBlacklist bool   `yaml:"ignore_gpu_blacklist"`
	EnableES3APIs      bool   `yaml:"enable_es3_apis"`
	IgnoreCertificate  bool   `yaml:"ignore_certificate"`
	Insecure           bool   `yaml:"insecure"`
	UserAgent          string `yaml:"user_agent"`
	Honest             bool   `yaml:"honest"`
	DiskCacheSize      int    `yaml:"disk_cache_size"`
	InternalURLs       string `yaml:"internal_urls"`
	CrashReporter      string `yaml:"crash_reporter"`
	FlashPluginDir     string `yaml:"flash_plugin_dir"`

	// Windows executable metadata; only applicable when the host can run rcedit.
	AppCopyright  string            `yaml:"app_copyright"`
	AppVersion    string            `yaml:"app_version"`
	BuildVersion  string            `yaml:"build_version"`
	VersionString map[string]string `yaml:"version_string"`
	Win32Metadata map[string]string `yaml:"win32metadata"`

	ProcessEnvs         map[string]string `yaml:"process_envs"`
	FileDownloadOptions map[string]string `yaml:"file_download_options"`
	BasicAuthUsername   string            `yaml:"basic_auth_username"`
	BasicAuthPassword   string            `yaml:"basic_auth_password"`
	// GlobalShortcutsFile is a JSON file the shortcuts are loaded from.
	GlobalShortcutsFile string           `yaml:"global_shortcuts"`
	GlobalShortcuts     []GlobalShortcut `yaml:"-"`

	Verbose bool `yaml:"verbose"`
	// KeepStaging leaves the scratch directory on disk after the run.
	KeepStaging bool `yaml:"keep_staging"`
}

// Clone returns a deep copy of the options so that stages never share
// maps, slices or pointers with the caller's value.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}

	cloned := *o
	cloned.Inject = slices.Clone(o.Inject)
	cloned.X = clonePtr(o.X)
	cloned.Y = clonePtr(o.Y)
	cloned.VersionString = maps.Clone(o.VersionString)
	cloned.Win32Metadata = maps.Clone(o.Win32Metadata)
	cloned.ProcessEnvs = maps.Clone(o.ProcessEnvs)
	cloned.FileDownloadOptions = maps.Clone(o.FileDownloadOptions)

	if o.GlobalShortcuts != nil {
		cloned.GlobalShortcuts = make([]GlobalShortcut, len(o.GlobalShortcuts))
		for i, shortcut := range o.GlobalShortcuts {
			cloned.GlobalShortcuts[i] = GlobalShortcut{
				Key:         shortcut.Key,
				InputEvents: slices.Clone(shortcut.InputEvents),
			}
		}
	}

	return &cloned
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}

// Load reads options from the provided YAML file.
// Values are not validated here: inference fills defaults first.
func Load(path string) (*Options, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var opts Options
	if err = yaml.Unmarshal(contents, &opts); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &opts, nil
}

// Save writes options to the provided path.
func Save(path string, opts *Options) error {
	if opts == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold basic auth credentials.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks a resolved set of options for required fields and formatting.
func Validate(opts *Options) error {
	if opts == nil {
		return errConfigIsNotSet
	}

	if opts.TargetURL == "" {
		return ErrTargetURLRequired
	}

	parsed, err := url.ParseRequestURI(opts.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target url: %w", err)
	}

	if parsed.Host == "" && parsed.Scheme != "file" {
		return fmt.Errorf("invalid target url %q: missing host", opts.TargetURL)
	}

	if !IsKnownPlatform(opts.Platform) {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, opts.Platform)
	}

	if !IsKnownArch(opts.Arch) {
		return fmt.Errorf("%w: %q", ErrUnknownArch, opts.Arch)
	}

	if (opts.X == nil) != (opts.Y == nil) {
		return ErrIncompletePosition
	}

	return nil
}

// IsKnownPlatform reports whether the engine can build for platform.
func IsKnownPlatform(platform string) bool {
	switch platform {
	case PlatformLinux, PlatformWindows, PlatformDarwin, PlatformMAS:
		return true
	default:
		return false
	}
}

// IsKnownArch reports whether the engine can build for arch.
func IsKnownArch(arch string) bool {
	switch arch {
	case ArchX64, ArchIA32, ArchARMv7l, ArchARM64:
		return true
	default:
		return false
	}
}
