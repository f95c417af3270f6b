package form

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/userbook/internal/kv"
	"github.com/smileynet/userbook/internal/record"
	"github.com/smileynet/userbook/internal/userstore"
)

// fakePicker returns canned picker results.
type fakePicker struct {
	uri string
	ok  bool
	err error
}

func (p fakePicker) PickFromLibrary(context.Context) (string, bool, error) {
	return p.uri, p.ok, p.err
}

func (p fakePicker) CaptureFromCamera(context.Context) (string, bool, error) {
	return p.uri, p.ok, p.err
}

// newTestStore returns an empty synchronous store closed at test end.
func newTestStore(t *testing.T) *userstore.Store {
	t.Helper()
	s := userstore.New(kv.NewMemoryStorage(), userstore.WithSyncPersist())
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// loadedModel returns a model over store that has finished loading.
func loadedModel(t *testing.T, store *userstore.Store, opts ...Option) Model {
	t.Helper()
	m := NewModel(store, opts...)
	n := store.Load(context.Background())
	return update(m, LoadedMsg{Count: n})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, k tea.KeyType) Model {
	return update(m, tea.KeyMsg{Type: k})
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// fillForm types name, email and phone, leaving focus on the phone input.
func fillForm(m Model, name, email, phone string) Model {
	m = typeText(m, name)
	m = press(m, tea.KeyTab)
	m = typeText(m, email)
	m = press(m, tea.KeyTab)
	return typeText(m, phone)
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

func jane() record.Fields {
	return record.Fields{Name: "Jane", Email: "jane@x.com", Phone: "+1234567890"}
}
