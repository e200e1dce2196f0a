package theme

import (
	"fmt"
	"image/color"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) LaneColor(lane int) color.RGBA {
	if lane < 0 {
		return fallback
	}
	return laneColors[lane%len(laneColors)]
}

func (t *DefaultTheme) RenderNote(lane int) string {
	return paint(t.LaneColor(lane), noteSym)
}

func (t *DefaultTheme) RenderHitField(lane int) string {
	c := t.LaneColor(lane)
	// dimmed so notes stand out against the bar
	c.R, c.G, c.B = c.R/3, c.G/3, c.B/3
	return paint(c, barSym)
}

func (t *DefaultTheme) RenderHitSplash(lane int) string {
	return paint(t.LaneColor(lane), splashSym)
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	noteSym   = "⬤"
	barSym    = "━"
	splashSym = "✶"
)

var (
	fallback   = color.RGBA{255, 255, 255, 255}
	laneColors = [...]color.RGBA{
		{0, 220, 0, 255},    // green
		{220, 40, 40, 255},  // red
		{240, 220, 0, 255},  // yellow
		{40, 120, 255, 255}, // blue
		{255, 140, 0, 255},  // orange
	}
)

var _ Theme = &DefaultTheme{}
