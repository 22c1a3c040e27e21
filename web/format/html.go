package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// AnswerToHTML renders a chatbot answer as HTML for the widget. Raw HTML in
// the answer is escaped and links open in a new tab.
func AnswerToHTML(answer string) string {
	text := normalizeMarkdownLists(PreprocessAnswerText(answer))
	if text == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Autolink)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.HrefTargetBlank | mdhtml.NofollowLinks,
	})

	html := string(markdown.ToHTML([]byte(text), p, renderer))
	return strings.TrimSpace(html)
}
