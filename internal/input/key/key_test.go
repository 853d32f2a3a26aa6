package key

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		key  Key
		r    rune
		mods Modifier
	}{
		{"Tab", KeyTab, 0, ModNone},
		{"tab", KeyTab, 0, ModNone},
		{"Shift+Tab", KeyTab, 0, ModShift},
		{"<S-Tab>", KeyTab, 0, ModShift},
		{"<Esc>", KeyEscape, 0, ModNone},
		{"Escape", KeyEscape, 0, ModNone},
		{"Enter", KeyEnter, 0, ModNone},
		{"<CR>", KeyEnter, 0, ModNone},
		{"Ctrl+Space", KeyRune, ' ', ModCtrl},
		{"<C-Space>", KeyRune, ' ', ModCtrl},
		{"Ctrl+N", KeyRune, 'n', ModCtrl},
		{"a", KeyRune, 'a', ModNone},
		{"A", KeyRune, 'A', ModShift},
		{"+", KeyRune, '+', ModNone},
		{"Down", KeyDown, 0, ModNone},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.spec, err)
			continue
		}
		if got.Key != tt.key || got.Rune != tt.r || got.Modifiers != tt.mods {
			t.Errorf("Parse(%q) = %#v, want key %v rune %q mods %v", tt.spec, got, tt.key, tt.r, tt.mods)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("  "); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("Parse(blank) error = %v, want ErrEmptySpec", err)
	}
	for _, spec := range []string{"Hyper+Tab", "Shift+Nope", "<X-a>", "Shift+"} {
		if _, err := Parse(spec); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidSpec", spec, err)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewSpecialEvent(KeyTab, ModNone), "Tab"},
		{NewSpecialEvent(KeyTab, ModShift), "Shift+Tab"},
		{NewSpecialEvent(KeyEscape, ModNone), "Esc"},
		{NewRuneEvent(' ', ModCtrl), "Ctrl+Space"},
		{NewRuneEvent('A', ModShift), "A"},
		{NewRuneEvent('x', ModCtrl|ModAlt), "Ctrl+Alt+x"},
	}

	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if !tt.event.Matches(tt.want) {
			t.Errorf("%q does not match its own string", tt.want)
		}
	}
}

func TestEventEquals(t *testing.T) {
	if !NewRuneEvent('A', ModShift).Equals(NewRuneEvent('A', ModNone)) {
		t.Error("shift should not distinguish characters")
	}
	if NewSpecialEvent(KeyTab, ModShift).Equals(NewSpecialEvent(KeyTab, ModNone)) {
		t.Error("shift should distinguish special keys")
	}
	if !NewRuneEvent('a', ModNone).IsChar() || NewRuneEvent('a', ModCtrl).IsChar() {
		t.Error("IsChar mismatch")
	}
}

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
	}{
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "Tab"},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "Shift+Tab"},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "Esc"},
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "q"},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlN, 0, tcell.ModCtrl), "Ctrl+n"},
		{"ctrl space", tcell.NewEventKey(tcell.KeyCtrlSpace, 0, tcell.ModCtrl), "Ctrl+Space"},
		{"arrow", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), "Down"},
	}

	for _, tt := range tests {
		got := FromTcell(tt.ev)
		if got.String() != tt.want {
			t.Errorf("%s: FromTcell = %q, want %q", tt.name, got.String(), tt.want)
		}
		if got.Timestamp.IsZero() {
			t.Errorf("%s: missing timestamp", tt.name)
		}
	}
}

func TestModifierString(t *testing.T) {
	if got := (ModShift | ModCtrl).String(); got != "Ctrl+Shift" {
		t.Errorf("String() = %q, want Ctrl+Shift", got)
	}
	if ModifierFromName("CMD") != ModMeta {
		t.Error("cmd should name Meta")
	}
}
