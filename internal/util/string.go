// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended by the truncation helpers when text is cut.
const Ellipsis = "..."

// UNICODE: Rune-aware truncation preserves multi-byte characters.

// TruncateRunes keeps the first maxRunes characters of s and appends "..."
// when anything was dropped. The ellipsis is not counted against maxRunes.
// Characters are counted after NFC normalization, so composed and decomposed
// spellings cut at the same place. Text that fits is returned unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if RuneLen(s) <= maxRunes {
		return s
	}
	runes := []rune(norm.NFC.String(s))
	return string(runes[:maxRunes]) + Ellipsis
}

// TruncateWidth truncates s to fit in maxWidth terminal columns, counting
// wide (CJK) characters as two. The ellipsis is included in the width.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(Ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// RuneLen returns the number of characters in s after NFC normalization.
func RuneLen(s string) int {
	return len([]rune(norm.NFC.String(s)))
}
