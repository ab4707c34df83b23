// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/cerevo/cerevo-tui/internal/model"
)

// FormatHTML is a standalone page with embedded CSS.
const FormatHTML = "html"

// codeStyle is the chroma style for highlighted code blocks.
const codeStyle = "dracula"

var codeFence = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")

// ExportHTML renders a session as a self-contained HTML page. Fenced code is
// highlighted with inline styles; everything else is escaped text.
func ExportHTML(s model.Session) string {
	title := s.Title
	if title == "" {
		title = s.ID
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("<meta name=\"generator\" content=\"cerevo\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n<body>\n<div class=\"container\">\n")

	sb.WriteString("<header>\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(title))
	fmt.Fprintf(&sb, "<p class=\"meta\">%s &middot; %d messages &middot; <code>%s</code></p>\n",
		s.CreatedAt.Format(time.RFC3339), len(s.Messages), html.EscapeString(s.ID))
	sb.WriteString("</header>\n<main>\n")

	for _, msg := range s.Messages {
		fmt.Fprintf(&sb, "<section class=\"message %s\">\n", html.EscapeString(msg.Role.String()))
		fmt.Fprintf(&sb, "<div class=\"role\">%s <span class=\"time\">%s</span></div>\n",
			msg.Role.DisplayName(), msg.Timestamp.Format("15:04"))
		sb.WriteString("<div class=\"content\">")
		sb.WriteString(formatHTMLContent(msg.Content))
		sb.WriteString("</div>\n</section>\n")
	}

	sb.WriteString("</main>\n</div>\n</body>\n</html>\n")
	return sb.String()
}

// formatHTMLContent escapes text and turns fenced blocks into highlighted
// <pre> elements.
func formatHTMLContent(content string) string {
	var sb strings.Builder
	last := 0
	for _, m := range codeFence.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(paragraphs(content[last:m[0]]))
		lang, code := content[m[2]:m[3]], content[m[4]:m[5]]
		sb.WriteString(highlightHTML(code, lang))
		last = m[1]
	}
	sb.WriteString(paragraphs(content[last:]))
	return sb.String()
}

// paragraphs escapes text and splits it on blank lines.
func paragraphs(text string) string {
	var sb strings.Builder
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		escaped := strings.ReplaceAll(html.EscapeString(p), "\n", "<br>\n")
		sb.WriteString("<p>" + escaped + "</p>\n")
	}
	return sb.String()
}

// highlightHTML renders code with chroma, falling back to an escaped block.
func highlightHTML(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(codeStyle)
	if style == nil {
		style = styles.Fallback
	}

	plain := "<pre><code>" + html.EscapeString(code) + "</code></pre>\n"
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}
	var sb strings.Builder
	f := chromahtml.New(chromahtml.Standalone(false), chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	if err := f.Format(&sb, style, it); err != nil {
		return plain
	}
	return sb.String() + "\n"
}

const htmlCSS = `<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  background: #1e1e2e; color: #cdd6f4; line-height: 1.6;
}
.container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
header { border-bottom: 1px solid #45475a; margin-bottom: 1.5rem; padding-bottom: 1rem; }
h1 { font-size: 1.5rem; color: #cba6f7; }
.meta { color: #6c7086; font-size: 0.85rem; }
.message { border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
.message.user { background: #313244; border-left: 3px solid #89b4fa; }
.message.assistant { background: #181825; border-left: 3px solid #cba6f7; }
.role { font-weight: 600; margin-bottom: 0.5rem; }
.time { color: #6c7086; font-weight: normal; font-size: 0.8rem; }
.content p { margin-bottom: 0.75rem; white-space: pre-wrap; }
pre { border-radius: 6px; padding: 0.75rem; margin-bottom: 0.75rem; overflow-x: auto;
  font-family: "Fira Code", "SF Mono", monospace; font-size: 0.9rem; }
code { font-family: "Fira Code", "SF Mono", monospace; }
</style>
`
