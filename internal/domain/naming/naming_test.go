package naming

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var derivedPattern = regexp.MustCompile(`^[a-z0-9-]+-nativefier-[0-9a-f]{6}$`)

// TestNormalize covers word splitting, case folding and diacritics.
func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"My App":          "my-app",
		"my_app":          "my-app",
		"myApp":           "my-app",
		"HTMLPage":        "html-page",
		"  Gmail  ":       "gmail",
		"Café Déjà Vu":    "cafe-deja-vu",
		"Slack (Work)!":   "slack-work",
		"app2Go":          "app2-go",
		"__FOO__BAR__":    "foo-bar",
		"日本":              "",
		"WhatsApp Web 2.0": "whats-app-web-2-0",
	}

	for input, want := range cases {
		require.Equal(t, want, Normalize(input), "input %q", input)
	}
}

// TestDeriveShape verifies the identifier shape and determinism.
func TestDeriveShape(t *testing.T) {
	t.Parallel()

	names := []string{"My App", "Gmail", "日本", "", "Déjà_vu-Now"}
	for _, name := range names {
		got := Derive(name, "https://example.com")
		require.Regexp(t, derivedPattern, got)
		require.Equal(t, got, Derive(name, "https://example.com"))
	}

	require.Equal(t, "app-nativefier-"+Digest("https://x.org"), Derive("日本", "https://x.org"))
}

// TestDeriveDistinctURLs checks that different URLs never collide within a representative set.
func TestDeriveDistinctURLs(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://example.com",
		"https://example.com/",
		"http://example.com",
		"https://example.org",
		"https://mail.google.com",
		"https://calendar.google.com",
		"https://app.slack.com/client",
		"https://web.whatsapp.com",
		"https://github.com",
		"https://github.com/notifications",
	}

	seen := make(map[string]string, len(urls))
	for _, url := range urls {
		derived := Derive("My App", url)
		prev, dup := seen[derived]
		require.False(t, dup, "%s collides with %s", url, prev)

		seen[derived] = url
	}
}
