package packager

import (
	"context"
	"fmt"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/host"
	"github.com/oshokin/nativefier/internal/logger"
)

// CompatibilityLayer is the tool needed to edit Windows executables elsewhere.
const CompatibilityLayer = "wine"

// windowsOnlyOption is an option that needs rcedit, and so Wine off Windows.
type windowsOnlyOption struct {
	name  string
	isSet func(*config.Options) bool
	clear func(*config.Options)
}

//nolint:gochecknoglobals // Read-only table.
var windowsOnlyOptions = []windowsOnlyOption{
	{
		name:  "icon",
		isSet: func(o *config.Options) bool { return o.Icon != "" },
		clear: func(o *config.Options) { o.Icon = "" },
	},
	{
		name:  "appCopyright",
		isSet: func(o *config.Options) bool { return o.AppCopyright != "" },
		clear: func(o *config.Options) { o.AppCopyright = "" },
	},
	{
		name:  "appVersion",
		isSet: func(o *config.Options) bool { return o.AppVersion != "" },
		clear: func(o *config.Options) { o.AppVersion = "" },
	},
	{
		name:  "buildVersion",
		isSet: func(o *config.Options) bool { return o.BuildVersion != "" },
		clear: func(o *config.Options) { o.BuildVersion = "" },
	},
	{
		name:  "versionString",
		isSet: func(o *config.Options) bool { return o.VersionString != nil },
		clear: func(o *config.Options) { o.VersionString = nil },
	},
	{
		name:  "win32metadata",
		isSet: func(o *config.Options) bool { return o.Win32Metadata != nil },
		clear: func(o *config.Options) { o.Win32Metadata = nil },
	},
}

// Sanitize returns a copy of opts without the options the host cannot apply.
// Building for Windows elsewhere needs Wine on the search path; without it the
// icon and executable metadata are dropped with one warning per dropped option.
// The lookup is repeated on every call and opts is never modified.
func Sanitize(ctx context.Context, probe host.Probe, opts *config.Options) (*config.Options, []string) {
	sanitized := opts.Clone()

	if sanitized.Platform != config.PlatformWindows ||
		probe.IsHostPlatform(config.PlatformWindows) ||
		probe.HasExecutable(CompatibilityLayer) {
		return sanitized, nil
	}

	var warnings []string

	for _, option := range windowsOnlyOptions {
		if !option.isSet(sanitized) {
			continue
		}

		option.clear(sanitized)

		warning := fmt.Sprintf("%s is required to use the %q option for a Windows app when packaging on a non-Windows host",
			CompatibilityLayer, option.name)
		logger.WarnKV(ctx, warning, "option", option.name)

		warnings = append(warnings, warning)
	}

	return sanitized, warnings
}
