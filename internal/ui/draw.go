package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// barSymbols are the partial block glyphs for one eighth to seven eighths of a cell.
var barSymbols = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	colorTrace      = tcell.NewRGBColor(206, 224, 220)
	colorMirror     = tcell.NewRGBColor(185, 207, 212)
	styleTrace      = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(colorTrace)
	styleMirror     = tcell.StyleDefault.Background(colorMirror).Foreground(tcell.ColorBlack)
	styleFooter     = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(colorMirror)
	styleRecording  = styleFooter.Foreground(tcell.ColorRed)
	stylePaused     = styleFooter.Foreground(tcell.ColorYellow)
	stylePeakAlert  = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite)
	styleErrorPanel = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite)
)

// rect is a region of the screen in cells.
type rect struct {
	x, y, w, h int
}

// fill paints every cell of r with a blank in style.
func fill(s tcell.Screen, r rect, style tcell.Style) {
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawText writes text from (x, y) without wrapping and returns the next column.
// Wide graphemes such as the pause glyph advance by their display width.
func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
	return x
}

// drawSparkline draws one bar per value growing up from the bottom of r.
// Values at or above ceiling fill the full height.
func drawSparkline(s tcell.Screen, r rect, data []uint64, ceiling uint64, style tcell.Style) {
	fill(s, r, style)
	if r.h <= 0 || ceiling == 0 {
		return
	}
	for col := 0; col < r.w && col < len(data); col++ {
		eighths := min(data[col], ceiling) * uint64(r.h) * 8 / ceiling
		for row := r.h - 1; row >= 0 && eighths > 0; row-- {
			level := min(eighths, 8)
			s.SetContent(r.x+col, r.y+row, barSymbols[level], nil, style)
			eighths -= level
		}
	}
}

// formatClock renders d as m:ss.
func formatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// view is everything needed to draw one recording frame.
type view struct {
	data          []uint64
	ceiling       uint64
	elapsed       time.Duration
	volume        uint8
	peak          uint8
	paused        bool
	peakThreshold uint8
}

// drawRecording draws the mirrored trace and the status footer.
func drawRecording(s tcell.Screen, v view) {
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}

	const footerHeight = 1
	content := max(height-footerHeight, 0)
	topHeight := content / 3 * 2

	mirrored := make([]uint64, len(v.data))
	for i, value := range v.data {
		mirrored[i] = 100 - min(value, 100)
	}
	drawSparkline(s, rect{0, 0, width, topHeight}, v.data, v.ceiling, styleTrace)
	drawSparkline(s, rect{0, topHeight, width, content - topHeight}, mirrored, v.ceiling, styleMirror)

	footerY := height - footerHeight
	fill(s, rect{0, footerY, width, footerHeight}, styleFooter)

	volume, peak := v.volume, v.peak
	x := 0
	if v.paused {
		volume, peak = 0, 0
		x = drawText(s, x, footerY, "⏸ ", stylePaused)
	} else {
		x = drawText(s, x, footerY, "● ", styleRecording)
	}
	x = drawText(s, x, footerY, fmt.Sprintf("%s / %d%% / ", formatClock(v.elapsed), volume), styleFooter)

	peakStyle := styleFooter
	if peak >= v.peakThreshold {
		peakStyle = stylePeakAlert
	}
	drawText(s, x, footerY, fmt.Sprintf("%d%%", peak), peakStyle)
}
