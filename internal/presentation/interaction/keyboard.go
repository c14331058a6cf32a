// Package interaction reads keyboard input from a raw-mode terminal.
package interaction

import (
	"os"

	"golang.org/x/term"

	"github.com/mboven/canvass-replay/internal/util"
)

// KeyType classifies a keyboard event.
type KeyType int

const (
	// KeyChar is a plain printable key, carried in KeyEvent.Key.
	KeyChar KeyType = iota
	// KeyEscape is a bare ESC press.
	KeyEscape
	// KeyLeft is the left arrow.
	KeyLeft
	// KeyRight is the right arrow.
	KeyRight
)

// KeyEvent is one decoded key press.
type KeyEvent struct {
	Type KeyType
	Key  rune
}

// KeyboardReader puts the terminal into raw mode and decodes key presses,
// including the arrow escape sequences.
type KeyboardReader struct {
	events   chan KeyEvent
	done     chan struct{}
	oldState *term.State
}

// NewKeyboardReader switches stdin to raw mode and starts the read loop.
func NewKeyboardReader() (*KeyboardReader, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}

	r := &KeyboardReader{
		events:   make(chan KeyEvent, 8),
		done:     make(chan struct{}),
		oldState: oldState,
	}
	go r.readLoop()
	return r, nil
}

// Events returns the decoded key stream.
func (r *KeyboardReader) Events() <-chan KeyEvent {
	return r.events
}

// Close restores the terminal state. The read loop exits on the next read.
func (r *KeyboardReader) Close() {
	close(r.done)
	if r.oldState != nil {
		if err := term.Restore(int(os.Stdin.Fd()), r.oldState); err != nil {
			util.LogWarnf("Failed to restore terminal state: %v", err)
		}
	}
}

func (r *KeyboardReader) readLoop() {
	buf := make([]byte, 16)
	var pending []byte
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		select {
		case <-r.done:
			return
		default:
		}
		pending = append(pending, buf[:n]...)
		var events []KeyEvent
		events, pending = decode(pending)
		for _, ev := range events {
			select {
			case r.events <- ev:
			case <-r.done:
				return
			}
		}
	}
}

// decode turns buffered input into key events. Arrow keys arrive as
// ESC [ C / ESC [ D; other ESC [ sequences are swallowed. A sequence can be
// split across reads, so an incomplete escape prefix at the end of the
// buffer is returned as rest for the caller to prepend to the next read.
// A lone ESC press therefore resolves on the next key.
func decode(b []byte) (events []KeyEvent, rest []byte) {
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != 0x1b {
			events = append(events, KeyEvent{Type: KeyChar, Key: rune(c)})
			continue
		}
		if i+1 >= len(b) {
			return events, b[i:]
		}
		if b[i+1] != '[' {
			events = append(events, KeyEvent{Type: KeyEscape})
			continue
		}
		if i+2 >= len(b) {
			return events, b[i:]
		}
		switch b[i+2] {
		case 'C':
			events = append(events, KeyEvent{Type: KeyRight})
		case 'D':
			events = append(events, KeyEvent{Type: KeyLeft})
		}
		i += 2
	}
	return events, nil
}
