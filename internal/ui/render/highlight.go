// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style used for highlighting.
const DefaultCodeStyle = "monokai"

// Highlight applies terminal syntax highlighting to code. An unknown
// language is guessed from the code. It returns code unchanged on failure.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(DefaultCodeStyle)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// IsJSON reports whether text is a JSON object or array.
func IsJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}

// Reply renders an assistant reply for a terminal: JSON objects from the
// structured-analysis mode are highlighted, everything else goes through md.
// A nil md leaves non-JSON replies as plain text.
func Reply(md *Markdown, text string) string {
	if IsJSON(text) {
		return Highlight(text, "json")
	}
	if md == nil {
		return text
	}
	return md.Render(text)
}
