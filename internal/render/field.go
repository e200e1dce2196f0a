package render

import (
	"math"
	"time"

	"git.lost.host/meutraa/hero/internal/game"
)

// Field maps game space onto a rectangle of terminal cells. The far edge is
// the spawn line, the near edge is where a note sits when it is retired.
type Field struct {
	Top, Bottom, Left, Right int

	farY, nearY float64
	minX, maxX  float64
	t           game.Tuning
}

func NewField(t game.Tuning, top, bottom, left, right int) *Field {
	f := &Field{Top: top, Bottom: bottom, Left: left, Right: right, t: t}

	f.farY = t.SpawnY
	f.nearY = t.HitY + (t.HitY-t.SpawnY)*float64(t.Grace)/float64(t.LeadTime)

	f.minX, f.maxX = math.Inf(1), math.Inf(-1)
	for _, l := range t.Lanes {
		f.minX = math.Min(f.minX, math.Min(l.SpawnX, l.HitX))
		f.maxX = math.Max(f.maxX, math.Max(l.SpawnX, l.HitX))
	}
	return f
}

func lerp(v, from, to float64, a, b int) int {
	if from == to {
		return (a + b) / 2
	}
	return a + int(math.Round((v-from)/(to-from)*float64(b-a)))
}

// ToCell returns the cell for a game-space point, ok is false outside the field
func (f *Field) ToCell(x, y float64) (col, row int, ok bool) {
	row = lerp(y, f.farY, f.nearY, f.Top, f.Bottom)
	col = lerp(x, f.minX, f.maxX, f.Left, f.Right)
	ok = row >= f.Top && row <= f.Bottom && col >= f.Left && col <= f.Right
	return col, row, ok
}

func (f *Field) HitRow() int {
	return lerp(f.t.HitY, f.farY, f.nearY, f.Top, f.Bottom)
}

func (f *Field) HitCol(lane int) int {
	return lerp(f.t.Lanes[lane].HitX, f.minX, f.maxX, f.Left, f.Right)
}

// NoteCell positions a note at songTime
func (f *Field) NoteCell(n game.Note, songTime time.Duration) (col, row int, ok bool) {
	x, y := n.Position(f.t, songTime)
	return f.ToCell(x, y)
}
