package key

import (
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification.
//
// Accepted forms are a single character ("a"), a key name ("Tab", "Esc"),
// modifiers joined with "+" ("Shift+Tab", "Ctrl+Space") and Vim notation
// ("<S-Tab>", "<Esc>", "<C-Space>").
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	sep := "+"
	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		spec = spec[1 : len(spec)-1]
		sep = "-"
	}

	parts := []string{spec}
	if len(spec) > 1 {
		parts = strings.Split(spec, sep)
	}
	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, errors.Errorf("%w: unknown modifier %q in %q", ErrInvalidSpec, p, spec)
		}
		mods |= mod
	}
	return parseKey(parts[len(parts)-1], mods, spec)
}

func parseKey(name string, mods Modifier, spec string) (Event, error) {
	if name == "" {
		return Event{}, errors.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	if strings.EqualFold(name, "space") {
		return NewRuneEvent(' ', mods), nil
	}
	if k := KeyFromName(name); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	runes := []rune(name)
	if len(runes) != 1 {
		return Event{}, errors.Errorf("%w: unknown key %q in %q", ErrInvalidSpec, name, spec)
	}
	r := runes[0]
	if mods.Has(ModCtrl) {
		r = unicode.ToLower(r)
	} else if unicode.IsUpper(r) {
		mods |= ModShift
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse is like Parse but panics on an invalid spec.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return ev
}
