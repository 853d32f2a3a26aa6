package keymap

import (
	"errors"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/dshills/snipstorm/internal/input/key"
	"github.com/dshills/snipstorm/internal/input/mode"
)

func TestKeymapBuilders(t *testing.T) {
	km := NewKeymap("test").
		ForMode(mode.ModeSnippet).
		WithPriority(10).
		WithSource("test-source").
		Add("Tab", ActionNext).
		AddBinding(NewBinding("Shift+Tab", ActionPrev).WithDescription("back"))

	if km.Mode != mode.ModeSnippet {
		t.Errorf("Mode = %q, want %q", km.Mode, mode.ModeSnippet)
	}
	if km.Priority != 10 || km.Source != "test-source" {
		t.Errorf("Priority/Source = %d/%q", km.Priority, km.Source)
	}
	if len(km.Bindings) != 2 {
		t.Errorf("len(Bindings) = %d, want 2", len(km.Bindings))
	}
	if err := km.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestKeymapValidate(t *testing.T) {
	tests := []struct {
		name    string
		keymap  *Keymap
		wantErr error
	}{
		{
			name:   "valid keymap",
			keymap: NewKeymap("ok").Add("Tab", ActionNext).Add("<C-n>", ActionChoiceNext),
		},
		{
			name:    "empty action",
			keymap:  NewKeymap("bad").Add("Tab", ""),
			wantErr: ErrEmptyAction,
		},
		{
			name:    "empty keys",
			keymap:  NewKeymap("bad").Add("", ActionNext),
			wantErr: key.ErrEmptySpec,
		},
		{
			name:    "invalid keys",
			keymap:  NewKeymap("bad").Add("Hyper+Tab", ActionNext),
			wantErr: key.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.keymap.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeymapClone(t *testing.T) {
	km := NewKeymap("orig").AddBinding(NewBinding("Tab", ActionNext).WithArgs(map[string]any{"n": 1}))
	clone := km.Clone()

	clone.Bindings[0].Args["n"] = 2
	clone.Bindings[0].Action = ActionPrev

	if km.Bindings[0].Args["n"] != 1 {
		t.Error("Clone() shares Args with the original")
	}
	if km.Bindings[0].Action != ActionNext {
		t.Error("Clone() shares Bindings with the original")
	}
}

func TestParsedKeymapLookupPriority(t *testing.T) {
	km := NewKeymap("p").
		AddBinding(NewBinding("Tab", "low")).
		AddBinding(NewBinding("Tab", "high").WithPriority(5)).
		AddBinding(NewBinding("Tab", "also-low"))

	parsed, err := km.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pb, ok := parsed.Lookup(key.NewSpecialEvent(key.KeyTab, key.ModNone))
	if !ok || pb.Action != "high" {
		t.Errorf("Lookup(Tab) = %v, %v; want high", pb, ok)
	}
	if _, ok := parsed.Lookup(key.NewSpecialEvent(key.KeyEnter, key.ModNone)); ok {
		t.Error("Lookup(Enter) should not match")
	}
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	if err := LoadDefaults(r); err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}

	tests := []struct {
		mode string
		spec string
		want string
	}{
		{mode.ModeInsert, "Tab", ActionExpand},
		{mode.ModeSnippet, "Tab", ActionNext},
		{mode.ModeSnippet, "Shift+Tab", ActionPrev},
		{mode.ModeSnippet, "<Esc>", ActionCancel},
		{mode.ModeChoice, "Ctrl+n", ActionChoiceNext},
		{mode.ModeChoice, "Enter", ActionChoiceAccept},
		{mode.ModeChoice, "Esc", ActionChoiceDismiss},
		{mode.ModeInsert, "Esc", ""},
		{mode.ModeSnippet, "Enter", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.spec, func(t *testing.T) {
			b := r.Lookup(tt.mode, key.MustParse(tt.spec))
			got := ""
			if b != nil {
				got = b.Action
			}
			if got != tt.want {
				t.Errorf("Lookup(%s, %s) = %q, want %q", tt.mode, tt.spec, got, tt.want)
			}
		})
	}
}

func TestRegistryPrecedence(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewKeymap("global").Add("Ctrl+J", "global.action"))
	_ = r.Register(NewKeymap("defaults").ForMode(mode.ModeSnippet).Add("Tab", ActionNext))
	_ = r.Register(NewKeymap("user").ForMode(mode.ModeSnippet).Add("Tab", "user.next"))

	ev := key.MustParse("Tab")
	if b := r.Lookup(mode.ModeSnippet, ev); b == nil || b.Action != "user.next" {
		t.Errorf("later keymap should win, got %v", b)
	}

	_ = r.Register(NewKeymap("defaults").ForMode(mode.ModeSnippet).WithPriority(1).Add("Tab", ActionNext))
	if b := r.Lookup(mode.ModeSnippet, ev); b == nil || b.Action != ActionNext {
		t.Errorf("higher priority should win, got %v", b)
	}

	if b := r.Lookup(mode.ModeSnippet, key.MustParse("Ctrl+J")); b == nil || b.Action != "global.action" {
		t.Errorf("global keymap should apply, got %v", b)
	}

	r.Unregister("global")
	if b := r.Lookup(mode.ModeSnippet, key.MustParse("Ctrl+J")); b != nil {
		t.Errorf("unregistered keymap still matches: %v", b)
	}
	if got := r.Names(); !slices.Equal(got, []string{"user", "defaults"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistryBindingsForMode(t *testing.T) {
	r := NewRegistry()
	_ = LoadDefaults(r)
	_ = r.Register(NewKeymap("user").ForMode(mode.ModeSnippet).Add("Tab", "user.next"))

	var actions []string
	for _, b := range r.BindingsForMode(mode.ModeSnippet) {
		actions = append(actions, b.Action)
	}
	want := []string{"user.next", ActionCancel, ActionPrev}
	if !slices.Equal(actions, want) {
		t.Errorf("BindingsForMode() = %v, want %v", actions, want)
	}
}

func TestLoaderFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/keys/a.toml", []byte(`
mode = "snippet"
priority = 3

[[bindings]]
keys = "Ctrl+J"
action = "snippet.next"
`), 0o644)
	_ = afero.WriteFile(fs, "/keys/b.yaml", []byte(`
name: jumps
mode: snippet
bindings:
  - keys: Ctrl+K
    action: snippet.prev
`), 0o644)
	_ = afero.WriteFile(fs, "/keys/c.json", []byte(`{"name":"broken","bindings":[{"keys":"Tab"}]}`), 0o644)
	_ = afero.WriteFile(fs, "/keys/notes.txt", []byte("ignored"), 0o644)

	l := NewLoader(fs)
	l.AddSearchPath("/keys")

	keymaps, errs := l.LoadAll()
	if len(errs) != 0 {
		t.Fatalf("LoadAll() errors = %v", errs)
	}
	if len(keymaps) != 3 {
		t.Fatalf("len(keymaps) = %d, want 3", len(keymaps))
	}
	if keymaps[0].Name != "a" || keymaps[0].Source != "user" || keymaps[0].Priority != 3 {
		t.Errorf("toml keymap = %+v", keymaps[0])
	}
	if keymaps[1].Name != "jumps" {
		t.Errorf("yaml keymap name = %q", keymaps[1].Name)
	}

	r := NewRegistry()
	errs = l.LoadInto(r)
	if len(errs) != 1 || !errors.Is(errs[0], ErrEmptyAction) {
		t.Errorf("LoadInto() errors = %v, want one ErrEmptyAction", errs)
	}
	if b := r.Lookup(mode.ModeSnippet, key.MustParse("Ctrl+K")); b == nil || b.Action != ActionPrev {
		t.Errorf("Lookup(Ctrl+K) = %v", b)
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte("x"), "ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(ini) error = %v", err)
	}
}
