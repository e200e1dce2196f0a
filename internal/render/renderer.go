package render

import (
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (cols, rows int)
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(framePeriod time.Duration, render func(dt time.Duration) bool)
	Clear()
	Fill(row, column int, message string)
	FillColor(row, column int, color color.RGBA, message string)
}
