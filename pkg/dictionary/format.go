package dictionary

import (
	"html"
	"strings"

	"github.com/k3a/html2text"

	"github.com/japaniel/easydict/pkg/db"
)

// Markup renders a result for a list row: the headword in bold followed by
// the translation on an indented second line. lang is the searched language.
func Markup(r db.Result, lang db.Lang) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(r.Headword(lang)))
	b.WriteString("</b>\n ")
	b.WriteString(html.EscapeString(r.Translation(lang)))
	return b.String()
}

// PlainText strips markup produced by Markup.
func PlainText(markup string) string {
	// html2text folds raw newlines; keep the line break as <br>.
	markup = strings.ReplaceAll(markup, "\n", "<br>")
	return html2text.HTML2TextWithOptions(markup, html2text.WithUnixLineBreaks())
}
