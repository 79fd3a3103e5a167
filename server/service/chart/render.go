package chart

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/martin635579763/chordsync/store"
)

var accompanimentMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderAccompanimentHTML formats an accompaniment suggestion as an HTML
// fragment for embedding. The model output is plain text; sectioning and
// emphasis are applied here.
func RenderAccompanimentHTML(a *store.Accompaniment) (string, error) {
	if a == nil {
		return "", errors.New("no accompaniment to render")
	}

	var doc strings.Builder
	doc.WriteString("### Playing Style\n\n")
	doc.WriteString(a.PlayingStyle)
	doc.WriteString("\n\n### Strumming Pattern\n\n`")
	doc.WriteString(a.StrummingPattern)
	doc.WriteString("`\n")
	if a.AdvancedTechniques != "" {
		doc.WriteString("\n### Advanced Techniques\n\n")
		doc.WriteString(a.AdvancedTechniques)
		doc.WriteString("\n")
	}

	var buf bytes.Buffer
	if err := accompanimentMarkdown.Convert([]byte(doc.String()), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render accompaniment")
	}
	return buf.String(), nil
}
