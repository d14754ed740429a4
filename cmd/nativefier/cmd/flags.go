package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/oshokin/nativefier/internal/config"
)

// bindOptionFlags registers every build option on fs, writing into o.
func bindOptionFlags(fs *pflag.FlagSet, o *config.Options) {
	fs.StringVarP(&o.Name, "name", "n", o.Name, "app name, inferred from the page title when empty")
	fs.StringVarP(&o.Platform, "platform", "p", o.Platform, "target platform: linux, windows, osx or mas (default: host)")
	fs.StringVarP(&o.Arch, "arch", "a", o.Arch, "target architecture: x64, ia32, armv7l or arm64 (default: host)")
	fs.StringVarP(&o.ElectronVersion, "electron-version", "e", o.ElectronVersion, "electron release to package with")
	fs.StringVar(&o.AppDir, "app-dir", o.AppDir, "app template directory")
	fs.BoolVarP(&o.Overwrite, "overwrite", "o", o.Overwrite, "overwrite the output directory if it exists")
	fs.BoolVarP(&o.Conceal, "conceal", "c", o.Conceal, "package the app source into an asar archive")
	fs.StringVarP(&o.Icon, "icon", "i", o.Icon, "app icon (.ico, .png or .icns, converted when needed)")
	fs.StringSliceVar(&o.Inject, "inject", o.Inject, "script (.js) or stylesheet (.css) to inject into every page")

	fs.IntVar(&o.Width, "width", o.Width, "window width (default 1280)")
	fs.IntVar(&o.Height, "height", o.Height, "window height (default 800)")
	fs.IntVar(&o.MinWidth, "min-width", o.MinWidth, "minimum window width")
	fs.IntVar(&o.MinHeight, "min-height", o.MinHeight, "minimum window height")
	fs.IntVar(&o.MaxWidth, "max-width", o.MaxWidth, "maximum window width")
	fs.IntVar(&o.MaxHeight, "max-height", o.MaxHeight, "maximum window height")
	fs.Var(&optionalInt{v: &o.X}, "x", "window x position")
	fs.Var(&optionalInt{v: &o.Y}, "y", "window y position")
	fs.Float64Var(&o.Zoom, "zoom", o.Zoom, "default zoom factor (default 1.0)")
	fs.BoolVar(&o.Maximize, "maximize", o.Maximize, "start with a maximized window")
	fs.BoolVar(&o.FullScreen, "full-screen", o.FullScreen, "start in full screen")
	fs.BoolVar(&o.HideWindowFrame, "hide-window-frame", o.HideWindowFrame, "hide the window frame")
	fs.BoolVar(&o.AlwaysOnTop, "always-on-top", o.AlwaysOnTop, "keep the window above the others")
	fs.BoolVarP(&o.ShowMenuBar, "show-menu-bar", "m", o.ShowMenuBar, "show the menu bar")
	fs.StringVar(&o.TitleBarStyle, "title-bar-style", o.TitleBarStyle, "macOS title bar style: hidden or hiddenInset")

	fs.BoolVar(&o.Counter, "counter", o.Counter, "show the unread count from the page title in the dock/taskbar")
	fs.BoolVar(&o.Bounce, "bounce", o.Bounce, "bounce the dock icon on new notifications (macOS)")
	fs.BoolVarP(&o.FastQuit, "fast-quit", "f", o.FastQuit, "quit when the last window is closed (macOS)")
	fs.BoolVar(&o.Tray, "tray", o.Tray, "keep running in the system tray")
	fs.BoolVar(&o.SingleInstance, "single-instance", o.SingleInstance, "allow only one running instance")
	fs.BoolVar(&o.ClearCache, "clear-cache", o.ClearCache, "clear the cache on start")
	fs.BoolVar(&o.DisableContextMenu, "disable-context-menu", o.DisableContextMenu, "disable the context menu")
	fs.BoolVar(&o.DisableDevTools, "disable-dev-tools", o.DisableDevTools, "disable the developer tools")
	fs.BoolVar(&o.DisableGPU, "disable-gpu", o.DisableGPU, "disable hardware acceleration")
	fs.BoolVar(&o.IgnoreGPUBlacklist, "ignore-gpu-blacklist", o.IgnoreGPUBlacklist, "ignore the GPU blacklist")
	fs.BoolVar(&o.EnableES3APIs, "enable-es3-apis", o.EnableES3APIs, "enable WebGL 2.0")
	fs.BoolVar(&o.IgnoreCertificate, "ignore-certificate", o.IgnoreCertificate, "ignore certificate errors")
	fs.BoolVar(&o.Insecure, "insecure", o.Insecure, "allow mixed content and disable web security")
	fs.StringVarP(&o.UserAgent, "user-agent", "u", o.UserAgent, "user agent sent by the app")
	fs.BoolVar(&o.Honest, "honest", o.Honest, "keep the default electron user agent")
	fs.IntVar(&o.DiskCacheSize, "disk-cache-size", o.DiskCacheSize, "disk cache size in bytes")
	fs.StringVar(&o.InternalURLs, "internal-urls", o.InternalURLs, "regular expression of URLs opened inside the app")
	fs.StringVar(&o.CrashReporter, "crash-reporter", o.CrashReporter, "crash report submission URL")
	fs.StringVar(&o.FlashPluginDir, "flash-path", o.FlashPluginDir, "flash plugin location, implies --insecure")

	fs.StringVar(&o.AppCopyright, "app-copyright", o.AppCopyright, "copyright string of the executable (Windows)")
	fs.StringVar(&o.AppVersion, "app-version", o.AppVersion, "version of the app (Windows)")
	fs.StringVar(&o.BuildVersion, "build-version", o.BuildVersion, "build version of the app (Windows)")
	fs.Var(&jsonMap{m: &o.VersionString}, "version-string", "JSON object of executable version strings (Windows)")
	fs.Var(&jsonMap{m: &o.Win32Metadata}, "win32metadata", "JSON object of executable metadata (Windows)")

	fs.Var(&jsonMap{m: &o.ProcessEnvs}, "process-envs", "JSON object of environment variables for the app")
	fs.Var(&jsonMap{m: &o.FileDownloadOptions}, "file-download-options", "JSON object of file download options")
	fs.StringVar(&o.BasicAuthUsername, "basic-auth-username", o.BasicAuthUsername, "basic http authentication username")
	fs.StringVar(&o.BasicAuthPassword, "basic-auth-password", o.BasicAuthPassword, "basic http authentication password")
	fs.StringVar(&o.GlobalShortcutsFile, "global-shortcuts", o.GlobalShortcutsFile, "JSON file of global shortcuts")

	fs.BoolVar(&o.Verbose, "verbose", o.Verbose, "log everything instead of showing a progress bar")
	fs.BoolVar(&o.KeepStaging, "keep-staging", o.KeepStaging, "keep the staged app directory after the build")
}

// overlayChanged copies the flags the user set in from onto o, leaving the
// other values of o untouched.
func overlayChanged(from *pflag.FlagSet, o *config.Options) error {
	onto := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	bindOptionFlags(onto, o)

	var err error

	from.Visit(func(f *pflag.Flag) {
		target := onto.Lookup(f.Name)
		if target == nil || err != nil {
			return
		}

		if values, ok := f.Value.(pflag.SliceValue); ok {
			err = target.Value.(pflag.SliceValue).Replace(values.GetSlice()) //nolint:forcetypeassert // Same binding.

			return
		}

		if setErr := target.Value.Set(f.Value.String()); setErr != nil {
			err = fmt.Errorf("apply flag --%s: %w", f.Name, setErr)
		}
	})

	return err
}

// jsonMap is a flag holding a JSON object of strings.
type jsonMap struct {
	m *map[string]string
}

func (j *jsonMap) String() string {
	if j.m == nil || *j.m == nil {
		return ""
	}

	data, err := json.Marshal(*j.m)
	if err != nil {
		return ""
	}

	return string(data)
}

func (j *jsonMap) Set(s string) error {
	parsed := make(map[string]string)
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return fmt.Errorf("expected a JSON object of strings: %w", err)
	}

	*j.m = parsed

	return nil
}

func (*jsonMap) Type() string {
	return "json"
}

// optionalInt is an int flag that stays nil until set.
type optionalInt struct {
	v **int
}

func (o *optionalInt) String() string {
	if o.v == nil || *o.v == nil {
		return ""
	}

	return strconv.Itoa(**o.v)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}

	*o.v = &n

	return nil
}

func (*optionalInt) Type() string {
	return "int"
}
