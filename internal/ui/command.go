package ui

import "github.com/gdamore/tcell/v2"

// Command is the outcome of one input poll.
type Command int

const (
	// Continue keeps recording.
	Continue Command = iota
	// Transcribe stops recording and hands the audio on.
	Transcribe
	// Cancel stops recording and discards the audio.
	Cancel
	// TogglePause pauses or resumes recording.
	TogglePause
)

func (c Command) String() string {
	switch c {
	case Continue:
		return "continue"
	case Transcribe:
		return "transcribe"
	case Cancel:
		return "cancel"
	case TogglePause:
		return "toggle_pause"
	default:
		return "unknown"
	}
}

// KeyCommand maps a key press to a command.
// Enter transcribes; Esc, q and Ctrl+C cancel; Space toggles pause.
func KeyCommand(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEnter:
		return Transcribe
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Cancel
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return Cancel
		case ' ':
			return TogglePause
		}
	}
	return Continue
}
