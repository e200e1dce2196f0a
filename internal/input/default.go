package input

import (
	"errors"
	"fmt"
	"log"
	"unicode"

	"github.com/eiannone/keyboard"
)

var ErrDuplicateKey = errors.New("key bound to more than one lane")

type Action int

const (
	ActionNone Action = iota
	ActionLane
	ActionUp
	ActionDown
	ActionSelect // Enter, also starts playback of a fresh recording
	ActionBack
	ActionQuit
	ActionRecord
	ActionLoad
	ActionDelete
	ActionYes
	ActionNo
	ActionSave
	ActionPause
)

// Event is a key translated for the current context
type Event struct {
	Action Action
	Lane   int
}

// KeyMap binds one rune per lane
type KeyMap struct {
	keys []rune
}

func NewKeyMap(keys string) (*KeyMap, error) {
	seen := map[rune]bool{}
	km := &KeyMap{}
	for _, r := range keys {
		r = unicode.ToLower(r)
		if seen[r] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, r)
		}
		seen[r] = true
		km.keys = append(km.keys, r)
	}
	return km, nil
}

func (km *KeyMap) Lanes() int {
	return len(km.keys)
}

// Lane returns the lane bound to r, -1 when none is
func (km *KeyMap) Lane(r rune) int {
	r = unicode.ToLower(r)
	for i, c := range km.keys {
		if r == c {
			return i
		}
	}
	return -1
}

func (km *KeyMap) Names() []string {
	names := make([]string, len(km.keys))
	for i, r := range km.keys {
		names[i] = string(unicode.ToUpper(r))
	}
	return names
}

// Translate maps a key press to an action. In game, lane keys take priority
// over letter commands so a lane bound to 's' still plays.
func (km *KeyMap) Translate(ev keyboard.KeyEvent, inGame bool) Event {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Event{Action: ActionQuit}
	case keyboard.KeyArrowUp:
		return Event{Action: ActionUp}
	case keyboard.KeyArrowDown:
		return Event{Action: ActionDown}
	case keyboard.KeyEnter:
		return Event{Action: ActionSelect}
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		return Event{Action: ActionBack}
	case keyboard.KeySpace:
		return Event{Action: ActionPause}
	}

	if inGame {
		if lane := km.Lane(ev.Rune); lane >= 0 {
			return Event{Action: ActionLane, Lane: lane}
		}
		if unicode.ToLower(ev.Rune) == 's' {
			return Event{Action: ActionSave}
		}
		return Event{}
	}

	switch unicode.ToLower(ev.Rune) {
	case 'r':
		return Event{Action: ActionRecord}
	case 'l':
		return Event{Action: ActionLoad}
	case 'd':
		return Event{Action: ActionDelete}
	case 'y':
		return Event{Action: ActionYes}
	case 'n':
		return Event{Action: ActionNo}
	}
	return Event{}
}

// Reader owns the keyboard for the lifetime of the program
type Reader struct {
	Keys <-chan keyboard.KeyEvent
}

func Open(buffer int) (*Reader, error) {
	keys, err := keyboard.GetKeys(buffer)
	if nil != err {
		return nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return &Reader{Keys: keys}, nil
}

// Drain returns every key press queued so far without blocking
func (r *Reader) Drain() []keyboard.KeyEvent {
	events := []keyboard.KeyEvent{}
	for {
		select {
		case ev, ok := <-r.Keys:
			if !ok {
				return events
			}
			if nil != ev.Err {
				log.Println("keyboard error", ev.Err)
				continue
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (r *Reader) Close() {
	if err := keyboard.Close(); nil != err {
		log.Println("unable to close keyboard", err)
	}
}
