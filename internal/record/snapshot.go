package record

import (
	"encoding/json"
	"fmt"
)

// entry is the persisted shape of a single record.
// photoUri is always written, as null when no photo is attached.
type entry struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	PhotoURI *string `json:"photoUri"`
}

// EncodeSnapshot serializes records as a JSON array in list order.
// An empty or nil list encodes as "[]".
func EncodeSnapshot(records []UserRecord) ([]byte, error) {
	entries := make([]entry, len(records))
	for i, r := range records {
		entries[i] = entry{
			ID:       r.ID,
			Name:     r.Name,
			Email:    r.Email,
			Phone:    r.Phone,
			PhotoURI: normalizePhoto(r.PhotoURI),
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("record: encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
// Entries without an id get a fresh one, so snapshots written before IDs
// existed still load. Empty photo references decode as nil.
func DecodeSnapshot(data []byte) ([]UserRecord, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("record: decoding snapshot: %w", err)
	}

	records := make([]UserRecord, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		id := e.ID
		if id == "" || seen[id] {
			id = NewID()
		}
		seen[id] = true
		records = append(records, UserRecord{
			ID:       id,
			Name:     e.Name,
			Email:    e.Email,
			Phone:    e.Phone,
			PhotoURI: normalizePhoto(e.PhotoURI),
		})
	}
	return records, nil
}

func normalizePhoto(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return clonePhoto(p)
}
