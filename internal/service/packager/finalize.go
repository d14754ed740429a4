package packager

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha512"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/logger"
)

const iconFileMode = 0o644

// selfIconPlatforms embed the icon during packaging and need no copy.
//
//nolint:gochecknoglobals // Read-only list.
var selfIconPlatforms = []string{config.PlatformDarwin, config.PlatformMAS}

// IconPath returns where the icon is placed inside a bundle at appPath.
func IconPath(appPath, icon string) string {
	return filepath.Join(appPath, "resources", "app", "icon"+filepath.Ext(icon))
}

// FinalizeIcon copies the icon into the bundle so the running app can use it
// for its windows. It does nothing without an icon or on macOS targets.
// An existing icon is replaced atomically.
func FinalizeIcon(ctx context.Context, opts *config.Options, appPath string) error {
	if opts.Icon == "" || slices.Contains(selfIconPlatforms, opts.Platform) {
		return nil
	}

	data, err := os.ReadFile(filepath.Clean(opts.Icon))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrIcon, opts.Icon, err)
	}

	target := IconPath(appPath, opts.Icon)
	logger.DebugKV(ctx, "Copying icon into the bundle", "icon", opts.Icon, "target", target)

	if err = os.MkdirAll(filepath.Dir(target), stagedDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrIcon, err)
	}

	if _, err = os.Stat(target); os.IsNotExist(err) {
		if err = os.WriteFile(target, nil, iconFileMode); err != nil {
			return fmt.Errorf("%w: %w", ErrIcon, err)
		}
	}

	checksum := sha512.Sum512(data)

	err = goupdate.Apply(bytes.NewReader(data), goupdate.Options{
		TargetPath: target,
		TargetMode: iconFileMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	})
	if err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIcon, target, err)
	}

	oldTarget := target + ".old"
	if _, err = os.Stat(oldTarget); err == nil {
		_ = os.Remove(oldTarget)
	}

	return nil
}
