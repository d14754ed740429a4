package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/host"
	"github.com/oshokin/nativefier/internal/logger"
	"github.com/oshokin/nativefier/internal/version"
)

// Service resolves raw user options into a fully populated configuration.
type Service interface {
	Infer(ctx context.Context, raw *config.Options) (*config.Options, error)
}

const (
	// AppDirEnv overrides the location of the app template.
	AppDirEnv = "NATIVEFIER_APP_DIR"

	// DefaultTitleTimeout bounds the request used to read the page title.
	DefaultTitleTimeout = 10 * time.Second

	// fallbackName is used when neither the page title nor the host give a name.
	fallbackName = "App"

	// maxTitleBody limits how much of the page is read while looking for <title>.
	maxTitleBody = 1 << 20

	// titleUserAgent is sent when fetching the page title.
	titleUserAgent = "Mozilla/5.0 (compatible; nativefier)"
)

var (
	errAppDirMissing = errors.New("app template directory not found")
	errBadStatus     = errors.New("unexpected http status")
	errNoTitle       = errors.New("page has no title")
)

// Option configures the default inference service.
type Option func(*Default)

// WithHTTPClient sets the client used to fetch the page title.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Default) {
		if client != nil {
			d.client = client
		}
	}
}

// WithTitleTimeout bounds the page title request.
func WithTitleTimeout(timeout time.Duration) Option {
	return func(d *Default) {
		if timeout > 0 {
			d.titleTimeout = timeout
		}
	}
}

// Default is the built-in inference service.
type Default struct {
	client       *http.Client
	titleTimeout time.Duration
}

// New creates the built-in inference service.
func New(opts ...Option) *Default {
	d := &Default{
		client:       http.DefaultClient,
		titleTimeout: DefaultTitleTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Infer implements Service. The raw options are never modified.
func (d *Default) Infer(ctx context.Context, raw *config.Options) (*config.Options, error) {
	if raw == nil {
		return nil, config.ErrTargetURLRequired
	}

	opts := raw.Clone()

	targetURL, err := NormalizeURL(opts.TargetURL)
	if err != nil {
		return nil, err
	}

	opts.TargetURL = targetURL
	opts.Platform = NormalizePlatform(opts.Platform)
	opts.Arch = NormalizeArch(opts.Arch)
	opts.NativefierVersion = version.Short()

	if opts.ElectronVersion == "" {
		opts.ElectronVersion = config.DefaultElectronVersion
	}

	if err = d.resolvePaths(opts); err != nil {
		return nil, err
	}

	applyWindowDefaults(opts)

	if opts.FlashPluginDir != "" {
		opts.Insecure = true
	}

	if opts.Honest {
		opts.UserAgent = ""
	}

	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = d.inferName(ctx, opts.TargetURL)
	}

	if opts.Platform == config.PlatformWindows && opts.Win32Metadata == nil {
		opts.Win32Metadata = map[string]string{
			"ProductName":     opts.Name,
			"InternalName":    opts.Name,
			"FileDescription": opts.Name,
		}
	}

	if opts.GlobalShortcutsFile != "" {
		if opts.GlobalShortcuts, err = loadShortcuts(opts.GlobalShortcutsFile); err != nil {
			return nil, err
		}
	}

	if err = config.Validate(opts); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Options inferred",
		"name", opts.Name, "platform", opts.Platform, "arch", opts.Arch, "out", opts.Out)

	return opts, nil
}

// NormalizeURL adds a scheme when missing and checks that the result parses.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", config.ErrTargetURLRequired
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid target url %q: %w", raw, err)
	}

	return parsed.String(), nil
}

// NormalizePlatform maps user spellings to engine platform names;
// an empty value selects the host platform.
func NormalizePlatform(platform string) string {
	switch p := strings.ToLower(strings.TrimSpace(platform)); p {
	case "":
		return host.Platform()
	case "windows", "win", "win32":
		return config.PlatformWindows
	case "osx", "mac", "macos", "darwin":
		return config.PlatformDarwin
	default:
		return p
	}
}

// NormalizeArch maps Go and user spellings to engine architecture names;
// an empty value selects the host architecture.
func NormalizeArch(arch string) string {
	switch a := strings.ToLower(strings.TrimSpace(arch)); a {
	case "":
		return host.Arch()
	case "amd64", "x86_64", "x64":
		return config.ArchX64
	case "386", "x86", "ia32":
		return config.ArchIA32
	case "arm", "armv7l":
		return config.ArchARMv7l
	case "aarch64", "arm64":
		return config.ArchARM64
	default:
		return a
	}
}

func (d *Default) resolvePaths(opts *config.Options) error {
	if opts.Out == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}

		opts.Out = cwd
	}

	if opts.AppDir == "" {
		opts.AppDir = defaultAppDir()
	}

	info, err := os.Stat(opts.AppDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", errAppDirMissing, opts.AppDir)
	}

	return nil
}

// defaultAppDir looks for the template in $NATIVEFIER_APP_DIR, next to the
// executable, then in the working directory.
func defaultAppDir() string {
	if dir := os.Getenv(AppDirEnv); dir != "" {
		return dir
	}

	if executable, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(executable), "app")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate
		}
	}

	return "app"
}

func applyWindowDefaults(opts *config.Options) {
	if opts.Width <= 0 {
		opts.Width = config.DefaultWidth
	}

	if opts.Height <= 0 {
		opts.Height = config.DefaultHeight
	}

	if opts.Zoom <= 0 {
		opts.Zoom = config.DefaultZoom
	}

	if opts.MaxWidth > 0 && opts.Width > opts.MaxWidth {
		opts.Width = opts.MaxWidth
	}

	if opts.MaxHeight > 0 && opts.Height > opts.MaxHeight {
		opts.Height = opts.MaxHeight
	}
}

// inferName reads the page title, falling back to a name derived from the host.
func (d *Default) inferName(ctx context.Context, targetURL string) string {
	title, err := d.fetchTitle(ctx, targetURL)
	if err == nil {
		return title
	}

	name := NameFromHost(targetURL)
	logger.WarnKV(ctx, "Unable to infer app name from page title, using host name",
		"error", err, "name", name)

	return name
}

func (d *Default) fetchTitle(ctx context.Context, targetURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.titleTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build title request: %w", err)
	}

	req.Header.Set("User-Agent", titleUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", errBadStatus, resp.Status)
	}

	return ExtractTitle(io.LimitReader(resp.Body, maxTitleBody))
}

// ExtractTitle returns the trimmed text of the first <title> element.
func ExtractTitle(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	inTitle := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) {
				return "", errNoTitle
			}

			return "", fmt.Errorf("parse page: %w", tokenizer.Err())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = atom.Lookup(name) == atom.Title
		case html.TextToken:
			if inTitle {
				if title := strings.Join(strings.Fields(string(tokenizer.Text())), " "); title != "" {
					return title, nil
				}
			}
		case html.EndTagToken:
			inTitle = false
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
		}
	}
}

// NameFromHost derives a display name from the URL host:
// "https://www.mail.example.com" becomes "Mail".
func NameFromHost(targetURL string) string {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Hostname() == "" {
		return fallbackName
	}

	labels := strings.Split(strings.TrimPrefix(parsed.Hostname(), "www."), ".")
	first := labels[0]

	if first == "" {
		return fallbackName
	}

	return strings.ToUpper(first[:1]) + first[1:]
}

func loadShortcuts(path string) ([]config.GlobalShortcut, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read global shortcuts: %w", err)
	}

	var shortcuts []config.GlobalShortcut
	if err = json.Unmarshal(contents, &shortcuts); err != nil {
		return nil, fmt.Errorf("decode global shortcuts: %w", err)
	}

	return shortcuts, nil
}
