// Package grapheme wraps uniseg with the cluster operations the view
// layer needs: columns are grapheme indices, never bytes or runes.
package grapheme

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Split returns text's grapheme clusters in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	n := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		n++
	}
	return n
}

// Slice returns the substring covering grapheme columns [start, end),
// clamped to the text's bounds.
func Slice(text string, start, end int) string {
	if text == "" || end <= start {
		return ""
	}
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if col >= end {
			break
		}
		if col >= start {
			sb.WriteString(g.Str())
		}
		col++
	}
	return sb.String()
}
