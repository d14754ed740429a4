package appargs

import (
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/oshokin/nativefier/internal/config"
)

// Snapshot is the persisted subset of build options and the schema of the
// document shared by Select and the snapshot reader. Every field is always
// serialized; unset optional values are written as null. Readers must treat
// missing or unknown keys as "use default".
type Snapshot struct {
	Name              string `json:"name"`
	TargetURL         string `json:"targetUrl"`
	NativefierVersion string `json:"nativefierVersion"`

	Counter     bool `json:"counter"`
	Bounce      bool `json:"bounce"`
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	MinWidth    *int `json:"minWidth"`
	MinHeight   *int `json:"minHeight"`
	MaxWidth    *int `json:"maxWidth"`
	MaxHeight   *int `json:"maxHeight"`
	X           *int `json:"x"`
	Y           *int `json:"y"`
	ShowMenuBar bool `json:"showMenuBar"`
	FastQuit    bool `json:"fastQuit"`

	UserAgent          *string `json:"userAgent"`
	IgnoreCertificate  bool    `json:"ignoreCertificate"`
	DisableGPU         bool    `json:"disableGpu"`
	IgnoreGPUBlacklist bool    `json:"ignoreGpuBlacklist"`
	EnableES3APIs      bool    `json:"enableEs3Apis"`
	Insecure           bool    `json:"insecure"`
	FlashPluginDir     *string `json:"flashPluginDir"`
	DiskCacheSize      *int    `json:"diskCacheSize"`

	FullScreen         bool    `json:"fullScreen"`
	HideWindowFrame    bool    `json:"hideWindowFrame"`
	Maximize           bool    `json:"maximize"`
	DisableContextMenu bool    `json:"disableContextMenu"`
	DisableDevTools    bool    `json:"disableDevTools"`
	Zoom               float64 `json:"zoom"`
	InternalURLs       *string `json:"internalUrls"`
	CrashReporter      *string `json:"crashReporter"`
	SingleInstance     bool    `json:"singleInstance"`
	ClearCache         bool    `json:"clearCache"`

	AppCopyright  *string           `json:"appCopyright"`
	AppVersion    *string           `json:"appVersion"`
	BuildVersion  *string           `json:"buildVersion"`
	Win32Metadata map[string]string `json:"win32metadata"`
	VersionString map[string]string `json:"versionString"`

	ProcessEnvs         map[string]string       `json:"processEnvs"`
	FileDownloadOptions map[string]string       `json:"fileDownloadOptions"`
	Tray                bool                    `json:"tray"`
	BasicAuthUsername   *string                 `json:"basicAuthUsername"`
	BasicAuthPassword   *string                 `json:"basicAuthPassword"`
	AlwaysOnTop         bool                    `json:"alwaysOnTop"`
	TitleBarStyle       *string                 `json:"titleBarStyle"`
	GlobalShortcuts     []config.GlobalShortcut `json:"globalShortcuts"`
}

// Select copies the allow-listed fields of opts into a new Snapshot.
// A nil opts yields the zero Snapshot.
func Select(opts *config.Options) Snapshot {
	if opts == nil {
		return Snapshot{}
	}

	return Snapshot{
		Name:              opts.Name,
		TargetURL:         opts.TargetURL,
		NativefierVersion: opts.NativefierVersion,

		Counter:     opts.Counter,
		Bounce:      opts.Bounce,
		Width:       opts.Width,
		Height:      opts.Height,
		MinWidth:    positive(opts.MinWidth),
		MinHeight:   positive(opts.MinHeight),
		MaxWidth:    positive(opts.MaxWidth),
		MaxHeight:   positive(opts.MaxHeight),
		X:           copyInt(opts.X),
		Y:           copyInt(opts.Y),
		ShowMenuBar: opts.ShowMenuBar,
		FastQuit:    opts.FastQuit,

		UserAgent:          nonEmpty(opts.UserAgent),
		IgnoreCertificate:  opts.IgnoreCertificate,
		DisableGPU:         opts.DisableGPU,
		IgnoreGPUBlacklist: opts.IgnoreGPUBlacklist,
		EnableES3APIs:      opts.EnableES3APIs,
		Insecure:           opts.Insecure,
		FlashPluginDir:     nonEmpty(opts.FlashPluginDir),
		DiskCacheSize:      positive(opts.DiskCacheSize),

		FullScreen:         opts.FullScreen,
		HideWindowFrame:    opts.HideWindowFrame,
		Maximize:           opts.Maximize,
		DisableContextMenu: opts.DisableContextMenu,
		DisableDevTools:    opts.DisableDevTools,
		Zoom:               opts.Zoom,
		InternalURLs:       nonEmpty(opts.InternalURLs),
		CrashReporter:      nonEmpty(opts.CrashReporter),
		SingleInstance:     opts.SingleInstance,
		ClearCache:         opts.ClearCache,

		AppCopyright:  nonEmpty(opts.AppCopyright),
		AppVersion:    nonEmpty(opts.AppVersion),
		BuildVersion:  nonEmpty(opts.BuildVersion),
		Win32Metadata: maps.Clone(opts.Win32Metadata),
		VersionString: maps.Clone(opts.VersionString),

		ProcessEnvs:         maps.Clone(opts.ProcessEnvs),
		FileDownloadOptions: maps.Clone(opts.FileDownloadOptions),
		Tray:                opts.Tray,
		BasicAuthUsername:   nonEmpty(opts.BasicAuthUsername),
		BasicAuthPassword:   nonEmpty(opts.BasicAuthPassword),
		AlwaysOnTop:         opts.AlwaysOnTop,
		TitleBarStyle:       nonEmpty(opts.TitleBarStyle),
		GlobalShortcuts:     opts.Clone().GlobalShortcuts,
	}
}

// Keys returns the allow-listed document keys in declaration order.
func Keys() []string {
	t := reflect.TypeFor[Snapshot]()
	keys := make([]string, 0, t.NumField())

	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		keys = append(keys, name)
	}

	return slices.Clip(keys)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}

	return &n
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}

	n := *v

	return &n
}
