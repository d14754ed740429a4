package packager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/domain/appargs"
	"github.com/oshokin/nativefier/internal/domain/naming"
	"github.com/oshokin/nativefier/internal/logger"
	"github.com/oshokin/nativefier/internal/repository/snapshot"
)

const (
	// InjectDir holds the user script and stylesheet inside the staged app.
	InjectDir = "inject"
	// PackageManifest is the app template manifest whose name is rewritten.
	PackageManifest = "package.json"

	injectScript     = "inject.js"
	injectStylesheet = "inject.css"

	stagedDirMode  = 0o755
	stagedFileMode = 0o644
)

var (
	errNotRegularFile = errors.New("not a regular file")
	errInjectMissing  = errors.New("injected asset not found")
)

// StageApp copies the app template from src into dest and prepares the copy
// for packaging: it writes the app args snapshot, places the injected assets
// and renames the package after the app. It returns the package name.
//
// A missing or unreadable injected asset is logged as an ErrStaging error and
// skipped; only the template copy, the snapshot and the manifest are fatal.
func StageApp(ctx context.Context, src, dest string, opts *config.Options) (string, error) {
	if err := copyTree(ctx, src, dest); err != nil {
		return "", fmt.Errorf("%w: copy app template: %w", ErrStaging, err)
	}

	snap := appargs.Select(opts)
	if err := snapshot.NewFileRepository(dest).Save(ctx, &snap); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStaging, err)
	}

	for _, err := range injectAssets(ctx, dest, opts.Inject) {
		logger.ErrorKV(ctx, "Injected asset skipped", "error", fmt.Errorf("%w: %w", ErrStaging, err))
	}

	packageName := naming.Derive(opts.Name, opts.TargetURL)
	logger.DebugKV(ctx, "Package name", "package_name", packageName)

	if err := renamePackage(filepath.Join(dest, PackageManifest), packageName); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStaging, err)
	}

	return packageName, nil
}

// copyTree recursively copies src into dest, keeping file modes and symlinks
// found inside the tree. A symlinked src is resolved and copied as a directory.
func copyTree(ctx context.Context, src, dest string) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dest, rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			return fmt.Errorf("%s: %w", path, errNotRegularFile)
		}
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}

// injectTarget maps an injected asset to its fixed name inside InjectDir.
// Unknown extensions map to an empty string.
func injectTarget(asset string) string {
	switch strings.ToLower(filepath.Ext(asset)) {
	case ".js":
		return injectScript
	case ".css":
		return injectStylesheet
	default:
		return ""
	}
}

// injectAssets copies at most one script and one stylesheet into the staged
// app. The first asset of each kind wins. Problems are returned, not fatal.
func injectAssets(ctx context.Context, dest string, assets []string) []error {
	var (
		problems []error
		placed   = make(map[string]bool, 2)
	)

	for _, asset := range assets {
		target := injectTarget(asset)

		switch {
		case target == "":
			logger.DebugKV(ctx, "Skipping injected asset with unsupported extension", "file", asset)

			continue
		case placed[target]:
			problems = append(problems, fmt.Errorf("%s: only one %s can be injected", asset, target))

			continue
		}

		if _, err := os.Stat(asset); err != nil {
			problems = append(problems, fmt.Errorf("%w: %s", errInjectMissing, asset))

			continue
		}

		if err := os.MkdirAll(filepath.Join(dest, InjectDir), stagedDirMode); err != nil {
			problems = append(problems, fmt.Errorf("create inject directory: %w", err))

			continue
		}

		if err := copyFile(asset, filepath.Join(dest, InjectDir, target), stagedFileMode); err != nil {
			problems = append(problems, fmt.Errorf("copy %s: %w", asset, err))

			continue
		}

		placed[target] = true
	}

	return problems
}

// renamePackage sets the name field of the manifest, keeping the other fields.
func renamePackage(manifestPath, packageName string) error {
	contents, err := os.ReadFile(filepath.Clean(manifestPath))
	if err != nil {
		return fmt.Errorf("read %s: %w", PackageManifest, err)
	}

	manifest := make(map[string]json.RawMessage)
	if err = json.Unmarshal(contents, &manifest); err != nil {
		return fmt.Errorf("parse %s: %w", PackageManifest, err)
	}

	name, err := json.Marshal(packageName)
	if err != nil {
		return err
	}

	manifest["name"] = name

	contents, err = json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", PackageManifest, err)
	}

	return os.WriteFile(manifestPath, append(contents, '\n'), stagedFileMode)
}
