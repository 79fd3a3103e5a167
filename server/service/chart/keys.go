package chart

import "strings"

// DefaultArrangementStyle is the canonical label stored and keyed for
// requests that don't name a style.
const DefaultArrangementStyle = "Standard"

var storageIDReplacer = strings.NewReplacer("/", "-", ":", "-")

// NormalizeStyle maps an empty style to the default label. Any other value
// passes through unchanged.
func NormalizeStyle(style string) string {
	if style == "" {
		return DefaultArrangementStyle
	}
	return style
}

// ChartCacheKey derives the logical cache key for a chord chart. The style
// suffix is appended only for non-default arrangements, so "uri" and
// "uri"+Standard resolve to the same entry.
func ChartCacheKey(songURI, style string) string {
	style = NormalizeStyle(style)
	if style == DefaultArrangementStyle {
		return songURI
	}
	return songURI + "-" + style
}

// FretboardCacheKey derives the cache key for a fretboard shape. Shapes are
// style-independent, keyed by the chord name alone.
func FretboardCacheKey(chordName string) string {
	return chordName
}

// AccompanimentCacheKey derives the cache key for an accompaniment
// suggestion from the chart's unique chords and the arrangement style. The
// style label is always part of the key, including the default.
func AccompanimentCacheKey(uniqueChords []string, style string) string {
	return strings.Join(uniqueChords, "-") + "-" + NormalizeStyle(style)
}

// SanitizeStorageID rewrites a logical key into a form safe for use as a
// storage identifier by replacing every "/" and ":" with "-". The mapping is
// not injective; distinct logical keys that collide after sanitization share
// one entry.
func SanitizeStorageID(key string) string {
	return storageIDReplacer.Replace(key)
}

// SearchTokens builds the lower-cased token set stored alongside a chart
// entry for exact-match lookup. Order follows first appearance.
func SearchTokens(title string, artists []string) []string {
	seen := make(map[string]bool, len(artists)+1)
	tokens := make([]string, 0, len(artists)+1)
	for _, raw := range append([]string{title}, artists...) {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}
