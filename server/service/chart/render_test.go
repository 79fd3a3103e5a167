package chart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martin635579763/chordsync/store"
)

func TestRenderAccompanimentHTML(t *testing.T) {
	html, err := RenderAccompanimentHTML(&store.Accompaniment{
		PlayingStyle:       "Relaxed fingerpicking with a light swing feel.",
		StrummingPattern:   "D-DU-UDU",
		AdvancedTechniques: "Try hammer-ons into the Am.",
	})
	require.NoError(t, err)
	require.Contains(t, html, "<h3>Playing Style</h3>")
	require.Contains(t, html, "<code>D-DU-UDU</code>")
	require.Contains(t, html, "<h3>Advanced Techniques</h3>")
}

func TestRenderAccompanimentHTMLOmitsEmptySections(t *testing.T) {
	html, err := RenderAccompanimentHTML(&store.Accompaniment{
		PlayingStyle:     "Steady downstrokes.",
		StrummingPattern: "D-D-D-D",
	})
	require.NoError(t, err)
	require.NotContains(t, html, "Advanced Techniques")

	_, err = RenderAccompanimentHTML(nil)
	require.Error(t, err)
}
