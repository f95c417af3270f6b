// Package record defines the user record and its persisted snapshot format.
package record

import "github.com/google/uuid"

// Fields holds the user-editable values of a record, already validated.
type Fields struct {
	Name     string
	Email    string
	Phone    string
	PhotoURI *string // nil when no photo is attached.
}

// UserRecord is a single entry in the user list.
type UserRecord struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	PhotoURI *string
}

// New creates a record with a freshly generated ID.
func New(f Fields) UserRecord {
	return WithID(NewID(), f)
}

// WithID creates a record carrying an existing ID.
func WithID(id string, f Fields) UserRecord {
	return UserRecord{
		ID:       id,
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		PhotoURI: clonePhoto(f.PhotoURI),
	}
}

// NewID returns a new random record identifier.
func NewID() string {
	return uuid.NewString()
}

// Fields returns the editable values of r.
func (r UserRecord) Fields() Fields {
	return Fields{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		PhotoURI: clonePhoto(r.PhotoURI),
	}
}

// HasPhoto reports whether a photo reference is attached.
func (r UserRecord) HasPhoto() bool {
	return r.PhotoURI != nil && *r.PhotoURI != ""
}

// Photo returns the photo reference, or "" when absent.
func (r UserRecord) Photo() string {
	if r.PhotoURI == nil {
		return ""
	}
	return *r.PhotoURI
}

// Equal reports whether two records carry the same values, comparing photo
// references by value.
func (r UserRecord) Equal(o UserRecord) bool {
	if r.ID != o.ID || r.Name != o.Name || r.Email != o.Email || r.Phone != o.Phone {
		return false
	}
	if r.PhotoURI == nil || o.PhotoURI == nil {
		return r.PhotoURI == nil && o.PhotoURI == nil
	}
	return *r.PhotoURI == *o.PhotoURI
}

// Clone returns a deep copy of r.
func (r UserRecord) Clone() UserRecord {
	r.PhotoURI = clonePhoto(r.PhotoURI)
	return r
}

// PhotoRef returns a pointer to uri, or nil when uri is empty.
func PhotoRef(uri string) *string {
	if uri == "" {
		return nil
	}
	return &uri
}

func clonePhoto(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
