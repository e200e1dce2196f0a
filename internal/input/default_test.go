package input

import (
	"testing"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMap(t *testing.T) {
	km, err := NewKeyMap("YUiop")
	require.NoError(t, err)
	assert.Equal(t, 5, km.Lanes())
	assert.Equal(t, 0, km.Lane('y'))
	assert.Equal(t, 2, km.Lane('I'))
	assert.Equal(t, -1, km.Lane('q'))
	assert.Equal(t, []string{"Y", "U", "I", "O", "P"}, km.Names())

	_, err = NewKeyMap("aba")
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

var translateTests = []struct {
	ev     keyboard.KeyEvent
	inGame bool
	out    Event
}{
	{keyboard.KeyEvent{Rune: 'y'}, true, Event{Action: ActionLane, Lane: 0}},
	{keyboard.KeyEvent{Rune: 'y'}, false, Event{Action: ActionYes}},
	{keyboard.KeyEvent{Rune: 'P'}, true, Event{Action: ActionLane, Lane: 4}},
	{keyboard.KeyEvent{Rune: 's'}, true, Event{Action: ActionSave}},
	{keyboard.KeyEvent{Rune: 's'}, false, Event{}},
	{keyboard.KeyEvent{Rune: 'r'}, false, Event{Action: ActionRecord}},
	{keyboard.KeyEvent{Rune: 'r'}, true, Event{}},
	{keyboard.KeyEvent{Rune: 'l'}, false, Event{Action: ActionLoad}},
	{keyboard.KeyEvent{Rune: 'd'}, false, Event{Action: ActionDelete}},
	{keyboard.KeyEvent{Rune: 'n'}, false, Event{Action: ActionNo}},
	{keyboard.KeyEvent{Key: keyboard.KeyEsc}, true, Event{Action: ActionQuit}},
	{keyboard.KeyEvent{Key: keyboard.KeySpace}, true, Event{Action: ActionPause}},
	{keyboard.KeyEvent{Key: keyboard.KeyEnter}, false, Event{Action: ActionSelect}},
	{keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, false, Event{Action: ActionUp}},
	{keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, false, Event{Action: ActionDown}},
	{keyboard.KeyEvent{Key: keyboard.KeyBackspace2}, false, Event{Action: ActionBack}},
}

func TestTranslate(t *testing.T) {
	km, err := NewKeyMap("yuiop")
	require.NoError(t, err)

	for _, test := range translateTests {
		out := km.Translate(test.ev, test.inGame)
		if out != test.out {
			t.Log("event   ", test.ev, "in game", test.inGame)
			t.Log("out     ", out)
			t.Log("expected", test.out)
			t.Fail()
		}
	}
}

func TestLaneBoundToCommandLetter(t *testing.T) {
	km, err := NewKeyMap("asdfg")
	require.NoError(t, err)
	assert.Equal(t, Event{Action: ActionLane, Lane: 1}, km.Translate(keyboard.KeyEvent{Rune: 's'}, true))
}

func TestDrain(t *testing.T) {
	keys := make(chan keyboard.KeyEvent, 4)
	keys <- keyboard.KeyEvent{Rune: 'a'}
	keys <- keyboard.KeyEvent{Rune: 'b'}
	r := &Reader{Keys: keys}

	events := r.Drain()
	assert.Len(t, events, 2)
	assert.Empty(t, r.Drain(), "an empty channel does not block")
}
