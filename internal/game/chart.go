package game

import "sort"

// Chart is a time ordered sequence of notes for a song.
type Chart []Note

func (c Chart) IsSorted() bool {
	return sort.SliceIsSorted(c, func(i, j int) bool { return c[i].Time < c[j].Time })
}

// Sanitize returns a copy holding only notes in [0, lanes), stably sorted
// by time, and the number of notes dropped.
func (c Chart) Sanitize(lanes int) (Chart, int) {
	out := make(Chart, 0, len(c))
	for _, n := range c {
		if n.Lane < 0 || n.Lane >= lanes {
			continue
		}
		out = append(out, n)
	}
	if !out.IsSorted() {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	}
	return out, len(c) - len(out)
}

// ActiveNotes holds the notes currently in play, in spawn order.
type ActiveNotes struct {
	notes []Note
}

func (a *ActiveNotes) Add(n Note) {
	a.notes = append(a.notes, n)
}

func (a *ActiveNotes) Len() int {
	return len(a.notes)
}

func (a *ActiveNotes) At(i int) Note {
	return a.notes[i]
}

// Remove deletes the note at i, keeping the order of the rest.
func (a *ActiveNotes) Remove(i int) Note {
	n := a.notes[i]
	a.notes = append(a.notes[:i], a.notes[i+1:]...)
	return n
}

func (a *ActiveNotes) Clear() {
	a.notes = a.notes[:0]
}

// Notes returns a copy safe to hand to a renderer.
func (a *ActiveNotes) Notes() []Note {
	out := make([]Note, len(a.notes))
	copy(out, a.notes)
	return out
}
