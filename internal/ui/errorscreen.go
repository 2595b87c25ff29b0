package ui

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// errorTextRatio is the share of the screen width used for the message.
const errorTextRatio = 0.8

// ShowError fills the screen red with message centered in white and waits
// for any key or for ctx to end.
func ShowError(ctx context.Context, term *Terminal, message string) error {
	for {
		drawError(term.Screen(), message)
		term.Screen().Show()

		ev, err := term.PollEvent(DefaultPollInterval)
		if err != nil {
			return err
		}
		switch ev.(type) {
		case *tcell.EventKey:
			return nil
		case *tcell.EventResize:
			term.Screen().Sync()
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func drawError(s tcell.Screen, message string) {
	width, height := s.Size()
	fill(s, rect{0, 0, width, height}, styleErrorPanel)

	lines := wrapText(message, max(int(float64(width)*errorTextRatio), 1))
	top := max((height-len(lines))/2, 0)
	for i, line := range lines {
		if top+i >= height {
			break
		}
		x := max((width-uniseg.StringWidth(line))/2, 0)
		drawText(s, x, top+i, line, styleErrorPanel)
	}
}

// wrapText breaks message into lines no wider than width, keeping explicit
// line breaks. Words longer than width are split.
func wrapText(message string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(message, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lineWidth := 0
		for _, word := range words {
			for _, part := range splitWord(word, width) {
				w := uniseg.StringWidth(part)
				if lineWidth > 0 && lineWidth+1+w > width {
					lines = append(lines, line.String())
					line.Reset()
					lineWidth = 0
				}
				if lineWidth > 0 {
					line.WriteByte(' ')
					lineWidth++
				}
				line.WriteString(part)
				lineWidth += w
			}
		}
		lines = append(lines, line.String())
	}
	return lines
}

// splitWord cuts word into pieces of at most width display cells.
func splitWord(word string, width int) []string {
	if uniseg.StringWidth(word) <= width {
		return []string{word}
	}
	var parts []string
	var part strings.Builder
	partWidth := 0
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		w := g.Width()
		if partWidth > 0 && partWidth+w > width {
			parts = append(parts, part.String())
			part.Reset()
			partWidth = 0
		}
		part.WriteString(g.Str())
		partWidth += w
	}
	return append(parts, part.String())
}
