package notion

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// CursorVersion is the current cursor schema version.
const CursorVersion = 1

// Cursor records the sync position of a source.
type Cursor struct {
	// Version is the schema version for future migrations.
	Version int `json:"v"`

	// LastEdited is the latest last_edited_time seen.
	LastEdited time.Time `json:"last_edited,omitempty"`

	// Pages are the IDs of live pages seen by the last sync, used to
	// detect pages that disappeared.
	Pages []string `json:"pages,omitempty"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{Version: CursorVersion}
}

// Encode serialises the cursor to a base64-encoded JSON string.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor deserialises a cursor from a base64-encoded JSON string.
// Returns a new empty cursor if the input is empty.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, ErrInvalidCursor
	}
	if cursor.Version > CursorVersion {
		return nil, ErrInvalidCursor
	}
	return &cursor, nil
}

// Observe advances LastEdited.
func (c *Cursor) Observe(t time.Time) {
	if t.After(c.LastEdited) {
		c.LastEdited = t
	}
}
