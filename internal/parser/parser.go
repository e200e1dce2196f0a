package parser

import (
	"io"

	"git.lost.host/meutraa/hero/internal/game"
)

type Parser interface {
	// Parse reads a chart file, a missing file is an empty chart
	Parse(file string) (game.Chart, error)
	Write(file string, chart game.Chart) error

	Decode(r io.Reader) (game.Chart, int)
	Encode(w io.Writer, chart game.Chart) error
}
