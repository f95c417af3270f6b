package form

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/userbook/internal/photo"
	"github.com/smileynet/userbook/internal/record"
	"github.com/smileynet/userbook/internal/userstore"
	"github.com/smileynet/userbook/internal/validate"
)

// Notices shown once after a denied photo action.
const (
	noticeLibraryDenied = "Photo library access is required."
	noticeCameraDenied  = "Camera access is required."
)

// Model is the root Bubble Tea model for the user form.
type Model struct {
	store   Store
	picker  photo.Picker
	changes <-chan userstore.Change
	cancel  func()

	inputs   [fieldCount]textinput.Model
	photoURI string
	focus    Focus

	users     []record.UserRecord
	cursor    int    // Selected row in the user list.
	editingID string // Mirrors the store's editing cursor.

	loading bool
	err     string // Validation or store error, shown until the next submit.
	notice  string // One-shot message, cleared on the next key.

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
}

// Option configures a Model.
type Option func(*Model)

// WithPicker sets the photo picker. Without one, photo actions are denied.
func WithPicker(p photo.Picker) Option {
	return func(m *Model) { m.picker = p }
}

// WithTheme sets the initial theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// NewModel creates a form over store in the loading state, subscribed to
// store changes.
func NewModel(store Store, opts ...Option) Model {
	placeholders := [fieldCount]string{"Name", "Email", "Phone"}
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Prompt = ""
		in.Width = 40
		inputs[i] = in
	}
	inputs[FocusName].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	changes, cancel := store.Subscribe()
	m := Model{
		store:   store,
		changes: changes,
		cancel:  cancel,
		inputs:  inputs,
		focus:   FocusName,
		loading: true,
		theme:   LightTheme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init loads the store and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadStore(m.store), waitForChange(m.changes), textinput.Blink)
}

// loadStore returns a tea.Cmd that loads the store and reports completion.
func loadStore(store Store) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Count: store.Load(context.Background())}
	}
}

// waitForChange returns a tea.Cmd that blocks until the next store change.
// It yields nil once the subscription is closed.
func waitForChange(ch <-chan userstore.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return StoreChangedMsg{Change: c}
	}
}

// pickPhoto returns a tea.Cmd running the picker action for source.
func pickPhoto(p photo.Picker, source PhotoSource) tea.Cmd {
	return func() tea.Msg {
		if p == nil {
			return PhotoMsg{Source: source, Err: photo.ErrPermissionDenied}
		}
		var (
			uri string
			ok  bool
			err error
		)
		if source == SourceCamera {
			uri, ok, err = p.CaptureFromCamera(context.Background())
		} else {
			uri, ok, err = p.PickFromLibrary(context.Background())
		}
		return PhotoMsg{Source: source, URI: uri, OK: ok, Err: err}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case LoadedMsg:
		m.loading = false
		m.refresh()
		return m, nil

	case StoreChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case PhotoMsg:
		return m.applyPhoto(msg), nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

// handleKey routes keys: global bindings first, then by focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if msg.String() == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % (fieldCount + 1))
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + fieldCount) % (fieldCount + 1))
	case key.Matches(msg, m.keys.Cancel):
		if m.editingID != "" {
			m.store.ClearEdit()
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Library):
		return m, pickPhoto(m.picker, SourceLibrary)
	case key.Matches(msg, m.keys.Camera):
		return m, pickPhoto(m.picker, SourceCamera)
	case key.Matches(msg, m.keys.NoPhoto):
		m.photoURI = ""
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.toggle()
		return m, nil
	}

	if m.focus == FocusList {
		return m.handleListKey(msg)
	}
	if msg.Type == tea.KeyEnter {
		m.submit()
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if len(m.users) > 0 {
			m.cursor = (m.cursor - 1 + len(m.users)) % len(m.users)
		}
	case key.Matches(msg, m.keys.Down):
		if len(m.users) > 0 {
			m.cursor = (m.cursor + 1) % len(m.users)
		}
	case key.Matches(msg, m.keys.Edit):
		if u, ok := m.selected(); ok {
			if err := m.store.StartEdit(u.ID); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.refresh()
			return m, m.setFocus(FocusName)
		}
	case key.Matches(msg, m.keys.Delete):
		if u, ok := m.selected(); ok {
			if err := m.store.Remove(u.ID); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.refresh()
		}
	}
	return m, nil
}

// updateInput forwards msg to the focused text input.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus == FocusList {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the form and adds or saves the record.
func (m *Model) submit() {
	f, err := validate.Form(
		m.inputs[FocusName].Value(),
		m.inputs[FocusEmail].Value(),
		m.inputs[FocusPhone].Value(),
		m.photoURI,
	)
	if err != nil {
		m.err = validate.Message(err)
		return
	}
	if _, err := m.store.Submit(f); err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.resetForm()
	m.refresh()
}

// applyPhoto handles a picker result. Denials become a one-shot notice and
// leave the current photo untouched.
func (m Model) applyPhoto(msg PhotoMsg) Model {
	switch {
	case errors.Is(msg.Err, photo.ErrPermissionDenied):
		if msg.Source == SourceCamera {
			m.notice = noticeCameraDenied
		} else {
			m.notice = noticeLibraryDenied
		}
	case msg.Err != nil:
		m.notice = msg.Err.Error()
	case msg.OK:
		m.photoURI = msg.URI
	}
	return m
}

// refresh re-reads the store. Entering edit mode fills the form from the
// edited record; leaving it clears the form.
func (m *Model) refresh() {
	m.users = m.store.Users()
	if m.cursor >= len(m.users) {
		m.cursor = len(m.users) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	prev := m.editingID
	m.editingID = m.store.EditingID()
	switch {
	case m.editingID != "" && m.editingID != prev:
		if u, ok := m.store.Editing(); ok {
			m.fill(u)
		}
	case m.editingID == "" && prev != "":
		m.resetForm()
	}
}

func (m *Model) fill(u record.UserRecord) {
	m.inputs[FocusName].SetValue(u.Name)
	m.inputs[FocusEmail].SetValue(u.Email)
	m.inputs[FocusPhone].SetValue(u.Phone)
	m.photoURI = u.Photo()
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.photoURI = ""
}

// setFocus moves focus, blurring every input but the focused one.
func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if Focus(i) == f {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) selected() (record.UserRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.users) {
		return record.UserRecord{}, false
	}
	return m.users[m.cursor], true
}

// shutdown cancels the store subscription.
func (m Model) shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Err returns the message currently shown for a rejected submit.
func (m Model) Err() string { return m.err }

// Notice returns the one-shot notice, if any.
func (m Model) Notice() string { return m.notice }

// Values returns the current name, email, phone and photo values.
func (m Model) Values() (name, email, phone, photoURI string) {
	return m.inputs[FocusName].Value(), m.inputs[FocusEmail].Value(), m.inputs[FocusPhone].Value(), m.photoURI
}

// Editing reports whether the form is bound to an existing record.
func (m Model) Editing() bool { return m.editingID != "" }
