package theme

import "image/color"

type Theme interface {
	LaneColor(lane int) color.RGBA
	RenderNote(lane int) string
	RenderHitField(lane int) string
	RenderHitSplash(lane int) string
}
