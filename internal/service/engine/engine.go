package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oshokin/nativefier/internal/config"
)

// Engine packages a prepared app directory and returns the produced bundle
// paths. Zero paths means the bundle already exists and overwrite is off.
// Engine output is written to diag.
type Engine interface {
	Pack(ctx context.Context, opts *config.Options, diag io.Writer) ([]string, error)
}

// writtenMarker starts the block of produced paths in electron-packager output.
const writtenMarker = "Wrote new app"

// defaultCommand runs electron-packager through npx.
//
//nolint:gochecknoglobals // Read-only default.
var defaultCommand = []string{"npx", "--yes", "electron-packager"}

var errEmptyCommand = errors.New("packaging command is empty")

// Option configures the electron-packager engine.
type Option func(*ElectronPackager)

// WithCommand replaces the command used to run electron-packager. The packaging
// arguments are appended to it.
func WithCommand(command ...string) Option {
	return func(e *ElectronPackager) {
		if len(command) > 0 {
			e.command = slices.Clone(command)
		}
	}
}

// ElectronPackager runs the electron-packager command line.
type ElectronPackager struct {
	command []string
}

// New creates the electron-packager engine.
func New(opts ...Option) *ElectronPackager {
	e := &ElectronPackager{
		command: slices.Clone(defaultCommand),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Pack implements Engine.
func (e *ElectronPackager) Pack(ctx context.Context, opts *config.Options, diag io.Writer) ([]string, error) {
	if len(e.command) == 0 {
		return nil, errEmptyCommand
	}

	if diag == nil {
		diag = io.Discard
	}

	expected := ExpectedPath(opts)
	if _, err := os.Stat(expected); err == nil && !opts.Overwrite {
		_, _ = fmt.Fprintf(diag, "Skipping %s %s (output dir already exists, use --overwrite to force)\n",
			opts.Platform, opts.Arch)

		return nil, nil
	}

	var captured bytes.Buffer

	output := io.MultiWriter(diag, &captured)

	args := append(slices.Clone(e.command[1:]), Args(opts)...)
	cmd := exec.CommandContext(ctx, e.command[0], args...) //nolint:gosec // The command is configured by the user.
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", strings.Join(e.command, " "), err)
	}

	paths := ParseWrittenPaths(&captured)
	if len(paths) == 0 {
		if _, err := os.Stat(expected); err == nil {
			paths = []string{expected}
		}
	}

	return paths, nil
}

// ExpectedPath returns the directory electron-packager writes for opts.
func ExpectedPath(opts *config.Options) string {
	return filepath.Join(opts.Out, fmt.Sprintf("%s-%s-%s", SanitizeFilename(opts.Name), opts.Platform, opts.Arch))
}

// SanitizeFilename drops the characters electron-packager strips from app names.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\?<>:*|"`, r) {
			return -1
		}

		return r
	}, name)
}

// Args builds the electron-packager command line for opts.
func Args(opts *config.Options) []string {
	args := []string{
		opts.AppDir,
		opts.Name,
		"--platform=" + opts.Platform,
		"--arch=" + opts.Arch,
		"--out=" + opts.Out,
	}

	if opts.ElectronVersion != "" {
		args = append(args, "--electron-version="+opts.ElectronVersion)
	}

	if opts.Overwrite {
		args = append(args, "--overwrite")
	}

	if opts.Conceal {
		args = append(args, "--asar")
	}

	if opts.Icon != "" {
		args = append(args, "--icon="+opts.Icon)
	}

	if opts.AppCopyright != "" {
		args = append(args, "--app-copyright="+opts.AppCopyright)
	}

	if opts.AppVersion != "" {
		args = append(args, "--app-version="+opts.AppVersion)
	}

	if opts.BuildVersion != "" {
		args = append(args, "--build-version="+opts.BuildVersion)
	}

	args = appendDotted(args, "--version-string", opts.VersionString)
	args = appendDotted(args, "--win32metadata", opts.Win32Metadata)

	return args
}

// appendDotted renders a map as sorted --flag.key=value arguments.
func appendDotted(args []string, flag string, values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		args = append(args, fmt.Sprintf("%s.%s=%s", flag, key, values[key]))
	}

	return args
}

// ParseWrittenPaths extracts bundle paths from electron-packager output:
// the rest of the "Wrote new app(s) to" line and every following line that
// names an existing path.
func ParseWrittenPaths(r io.Reader) []string {
	var (
		paths   []string
		inBlock bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if _, rest, found := strings.Cut(line, writtenMarker); found {
			inBlock = true

			if _, after, ok := strings.Cut(rest, " to"); ok {
				if candidate := strings.TrimSpace(strings.TrimPrefix(after, ":")); candidate != "" {
					paths = append(paths, candidate)
				}
			}

			continue
		}

		if !inBlock {
			continue
		}

		if _, err := os.Stat(line); line == "" || err != nil {
			inBlock = false
			continue
		}

		paths = append(paths, line)
	}

	return paths
}
