package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// titleCase renders a kind or label like "built-in" as "Built-In".
func titleCase(s string) string {
	return titleCaser.String(s)
}

// truncateText shortens text to fit width display cells, ending with "...".
func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}

// wrapText word-wraps text to width cells and returns at most maxLines lines.
// The last line gets an ellipsis when content was dropped.
func wrapText(text string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return []string{""}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	truncated := false

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
			if len(lines) == maxLines {
				truncated = true
				break
			}
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += wordWidth
	}
	if !truncated && line.Len() > 0 {
		lines = append(lines, line.String())
	}

	for i, l := range lines {
		if runewidth.StringWidth(l) > width {
			lines[i] = truncateText(l, width)
		}
	}
	if truncated {
		last := lines[len(lines)-1]
		if runewidth.StringWidth(last)+3 > width {
			last = runewidth.Truncate(last, max(width-3, 0), "")
		}
		lines[len(lines)-1] = last + "..."
	}
	return lines
}

// padLines extends lines with empty strings up to count.
func padLines(lines []string, count int) []string {
	for len(lines) < count {
		lines = append(lines, "")
	}
	return lines
}
