// Package form implements the user form TUI: three input fields and a photo
// slot on top, the saved user list below. Submitting adds a new user or saves
// the one being edited; edits and deletes are started from the list.
package form

import (
	"context"

	"github.com/smileynet/userbook/internal/record"
	"github.com/smileynet/userbook/internal/userstore"
)

// Focus represents which part of the screen receives keys.
type Focus int

const (
	FocusName  Focus = iota // Name input.
	FocusEmail              // Email input.
	FocusPhone              // Phone input.
	FocusList               // User list.
)

// fieldCount is the number of text inputs, which occupy the first Focus values.
const fieldCount = 3

// --- Consumer-side interfaces ---

// Store is the part of userstore.Store the form drives.
type Store interface {
	Load(ctx context.Context) int
	Users() []record.UserRecord
	Editing() (record.UserRecord, bool)
	EditingID() string
	Submit(f record.Fields) (record.UserRecord, error)
	StartEdit(id string) error
	ClearEdit()
	Remove(id string) error
	Subscribe() (<-chan userstore.Change, func())
}

var _ Store = (*userstore.Store)(nil)

// --- tea.Msg types ---

// LoadedMsg signals that the store finished loading.
type LoadedMsg struct {
	Count int
}

// StoreChangedMsg carries a change notification from the store.
type StoreChangedMsg struct {
	Change userstore.Change
}

// PhotoSource identifies which picker action produced a PhotoMsg.
type PhotoSource string

const (
	SourceLibrary PhotoSource = "library"
	SourceCamera  PhotoSource = "camera"
)

// PhotoMsg carries the result of a photo picker action.
type PhotoMsg struct {
	Source PhotoSource
	URI    string
	OK     bool
	Err    error
}
