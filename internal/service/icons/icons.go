package icons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/host"
	"github.com/oshokin/nativefier/internal/logger"
)

// Builder attaches a platform-appropriate icon to the options.
// It must pass options through unchanged when no icon is requested.
type Builder interface {
	Build(ctx context.Context, opts *config.Options, workDir string) (*config.Options, error)
}

// CommandRunner runs an external conversion command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Option configures the default builder.
type Option func(*Default)

// WithCommandRunner replaces the function used to run conversion tools.
func WithCommandRunner(run CommandRunner) Option {
	return func(d *Default) {
		if run != nil {
			d.run = run
		}
	}
}

// Default converts icons with tools found on the host.
type Default struct {
	probe host.Probe
	run   CommandRunner
}

var (
	// ErrIconNotFound is returned when the configured icon does not exist.
	ErrIconNotFound = errors.New("icon file not found")
	// errNoConverter is returned when no tool on the host can convert the icon.
	errNoConverter = errors.New("no icon converter available")
)

// New creates the default icon builder.
func New(probe host.Probe, opts ...Option) *Default {
	d := &Default{
		probe: probe,
		run:   runCommand,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Extension returns the icon extension the engine expects for platform.
func Extension(platform string) string {
	switch platform {
	case config.PlatformWindows:
		return ".ico"
	case config.PlatformLinux:
		return ".png"
	default:
		return ".icns"
	}
}

// Build implements Builder. The returned options point at the converted icon
// when a conversion happened; the input options are never modified.
// A conversion failure is logged and the original icon is kept.
func (d *Default) Build(ctx context.Context, opts *config.Options, workDir string) (*config.Options, error) {
	out := opts.Clone()
	if out.Icon == "" {
		return out, nil
	}

	if _, err := os.Stat(out.Icon); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrIconNotFound, out.Icon, err)
	}

	want := Extension(out.Platform)
	if strings.EqualFold(filepath.Ext(out.Icon), want) {
		return out, nil
	}

	converted, err := d.convert(ctx, out.Icon, want, workDir)
	if err != nil {
		logger.WarnKV(ctx, "Skipping icon conversion",
			"icon", out.Icon, "format", want, "error", err)

		return out, nil
	}

	logger.DebugKV(ctx, "Icon converted", "from", out.Icon, "to", converted)
	out.Icon = converted

	return out, nil
}

func (d *Default) convert(ctx context.Context, src, ext, workDir string) (string, error) {
	if workDir == "" {
		workDir = os.TempDir()
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create icon directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(workDir, base+ext)

	name, args, err := d.converterFor(src, dst, ext)
	if err != nil {
		return "", err
	}

	if err = d.run(ctx, name, args...); err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}

	if _, err = os.Stat(dst); err != nil {
		return "", fmt.Errorf("%s produced no icon: %w", name, err)
	}

	return dst, nil
}

// converterFor picks the tool and arguments converting src into dst.
func (d *Default) converterFor(src, dst, ext string) (string, []string, error) {
	if ext == ".icns" {
		if d.probe.IsHostPlatform(config.PlatformDarwin) && d.probe.HasExecutable("sips") {
			return "sips", []string{"-s", "format", "icns", src, "--out", dst}, nil
		}

		return "", nil, fmt.Errorf("%w: conversion to .icns is only supported on macOS", errNoConverter)
	}

	magick := ""

	switch {
	case d.probe.HasExecutable("magick"):
		magick = "magick"
	case d.probe.HasExecutable("convert"):
		magick = "convert"
	default:
		return "", nil, fmt.Errorf("%w: install ImageMagick to convert to %s", errNoConverter, ext)
	}

	if ext == ".ico" {
		return magick, []string{src, "-define", "icon:auto-resize=256,128,64,48,32,16", dst}, nil
	}

	// Take the first (largest) frame of multi-image sources such as .ico.
	return magick, []string{src + "[0]", dst}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}
