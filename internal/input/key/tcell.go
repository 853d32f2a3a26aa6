package key

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
}

// FromTcell converts a terminal key event. Backtab becomes Shift+Tab and
// control characters become Ctrl plus the lowercase letter. Keys with no
// equivalent convert to KeyNone.
func FromTcell(ev *tcell.EventKey) Event {
	out := Event{Modifiers: fromTcellMods(ev.Modifiers()), Timestamp: ev.When()}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case k == tcell.KeyBacktab:
		out.Key = KeyTab
		out.Modifiers |= ModShift
	case k == tcell.KeyCtrlSpace:
		out.Key = KeyRune
		out.Rune = ' '
		out.Modifiers |= ModCtrl
	default:
		if mapped, ok := tcellKeys[k]; ok {
			out.Key = mapped
		} else if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			out.Key = KeyRune
			out.Rune = 'a' + rune(k-tcell.KeyCtrlA)
			out.Modifiers |= ModCtrl
		}
	}
	return out
}

func fromTcellMods(m tcell.ModMask) Modifier {
	var out Modifier
	if m&tcell.ModShift != 0 {
		out |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= ModMeta
	}
	return out
}
