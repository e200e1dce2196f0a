package render

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

type DefaultRenderer struct {
	Out io.Writer // os.Stdout when nil
	fd  int

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) out() io.Writer {
	if nil == r.Out {
		return os.Stdout
	}
	return r.Out
}

func (r *DefaultRenderer) Init() error {
	r.fd = int(os.Stdout.Fd())
	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return fmt.Errorf("unable to enter raw mode: %w", err)
	}
	r.restoreState = state

	fmt.Fprintf(r.out(), "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out(), "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

// Size of the terminal, 80x24 when it cannot be read
func (r *DefaultRenderer) Size() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err || cols <= 0 || rows <= 0 {
		return 80, 24
	}
	return cols, rows
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
}

// Decorations are drawn on top of the frame until their frames run out
func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames <= 0 {
			continue
		}
		r.Fill(d.Y, d.X, d.Content)
		d.Frames--
		nd = append(nd, d)
	}
	r.decorations = nd
}

// RenderLoop calls render once per frame period with the time since the
// previous frame, until render returns false
func (r *DefaultRenderer) RenderLoop(framePeriod time.Duration, render func(dt time.Duration) bool) {
	last := time.Now()
	for {
		now := time.Now()
		deadline := now.Add(framePeriod)

		r.Clear()
		cont := render(now.Sub(last))
		last = now

		r.tickDecorations()
		r.flush()

		if !cont {
			return
		}
		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[H\033[2J")
}

func (r *DefaultRenderer) moveTo(row, column int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	if row < 1 || column < 1 {
		return
	}
	r.moveTo(row, column)
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c color.RGBA, message string) {
	if row < 1 || column < 1 {
		return
	}
	r.moveTo(row, column)
	r.buffer.WriteString("\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	if _, err := io.WriteString(r.out(), r.buffer.String()); nil != err {
		log.Println("unable to write frame", err)
	}
	r.buffer.Reset()
}

var _ Renderer = &DefaultRenderer{}
