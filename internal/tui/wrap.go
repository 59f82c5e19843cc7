package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type textRune struct {
	r       rune
	width   int
	isSpace bool
}

func toTextRunes(s string) []textRune {
	out := make([]textRune, 0, len(s))
	for _, r := range s {
		out = append(out, textRune{r: r, width: runewidth.RuneWidth(r), isSpace: r == ' '})
	}
	return out
}

func renderTextRunes(runes []textRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteRune(item.r)
	}
	return b.String()
}

// wrapText breaks each paragraph of s at the last space that keeps a line
// within width cells. Words wider than width are split.
func wrapText(s string, width int) string {
	paragraphs := strings.Split(s, "\n")
	for i, p := range paragraphs {
		paragraphs[i] = wrapLine(toTextRunes(p), width)
	}
	return strings.Join(paragraphs, "\n")
}

func wrapLine(runes []textRune, width int) string {
	if width <= 0 {
		return renderTextRunes(runes)
	}
	var out strings.Builder
	line := make([]textRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderTextRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				out.WriteString(renderTextRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]textRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderTextRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderTextRunes(line))
	return out.String()
}

func lineWidthOf(line []textRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []textRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
