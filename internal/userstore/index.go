package userstore

import (
	"fmt"

	"github.com/smileynet/userbook/internal/record"
)

// Positional variants of the ID-based operations, for callers that address
// records by their place in the list (list rows, CLI arguments).

// UpdateAt replaces the record at index, keeping its ID.
func (s *Store) UpdateAt(index int, f record.Fields) error {
	id, err := s.idAt(index)
	if err != nil {
		return err
	}
	return s.Update(id, f)
}

// RemoveAt deletes the record at index. A cursor on index is cleared; a
// cursor after index moves down by one since it still tracks the same record.
func (s *Store) RemoveAt(index int) error {
	id, err := s.idAt(index)
	if err != nil {
		return err
	}
	return s.Remove(id)
}

// StartEditAt sets the editing cursor to the record at index.
func (s *Store) StartEditAt(index int) error {
	id, err := s.idAt(index)
	if err != nil {
		return err
	}
	return s.StartEdit(id)
}

// EditingIndex returns the list position of the edited record.
func (s *Store) EditingIndex() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.editing)
	return i, i >= 0
}

// IndexOf returns the list position of the record with id, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id)
}

func (s *Store) idAt(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.users) {
		return "", fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, index, len(s.users))
	}
	return s.users[index].ID, nil
}
