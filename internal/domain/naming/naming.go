package naming

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// ProductSuffix separates the normalized name from the digest.
	ProductSuffix = "nativefier"

	// DigestLength is the number of hex characters kept from the URL digest.
	DigestLength = 6

	// fallbackName is used when nothing usable is left of the display name.
	fallbackName = "app"
)

// Derive returns "{normalized-name}-nativefier-{digest}" for the given display
// name and target URL. The result is deterministic and matches ^[a-z0-9-]+$.
func Derive(name, targetURL string) string {
	normalized := Normalize(name)
	if normalized == "" {
		normalized = fallbackName
	}

	return normalized + "-" + ProductSuffix + "-" + Digest(targetURL)
}

// Digest returns the first DigestLength hex characters of the BLAKE3 hash of url.
func Digest(url string) string {
	sum := blake3.Sum256([]byte(url))

	return hex.EncodeToString(sum[:])[:DigestLength]
}

// Normalize kebab-cases and lower-cases name. Diacritics are folded to their
// base letters, word boundaries (spaces, underscores, punctuation and camel
// case humps) become single hyphens and anything outside [a-z0-9] is dropped.
func Normalize(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	words := splitWords(folded)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}

	return strings.Join(words, "-")
}

// splitWords breaks s into ASCII alphanumeric words, splitting on every other
// rune and on lower-to-upper case transitions ("myApp" -> "my", "App").
// An upper-case run followed by a lower-case letter keeps the last upper-case
// letter with the next word ("HTMLPage" -> "HTML", "Page").
func splitWords(s string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	src := []rune(s)
	for i, r := range src {
		if !isASCIIAlnum(r) {
			flush()
			continue
		}

		if len(current) > 0 && isUpper(r) {
			prev := current[len(current)-1]
			nextIsLower := i+1 < len(src) && isLower(src[i+1])

			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextIsLower) {
				flush()
			}
		}

		current = append(current, r)
	}

	flush()

	return words
}

func isASCIIAlnum(r rune) bool {
	return isLower(r) || isUpper(r) || isDigit(r)
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
