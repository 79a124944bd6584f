package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingReferenceRow is returned when a row that the calculation needs
// as its schema reference (or as a required sibling) cannot be located by
// serial-prefix search.
var ErrMissingReferenceRow = errors.New("schedule: missing reference row")

// Schedule is one named hierarchical survey block: a block title mapped to
// an ordered set of rows. Row keys follow the external "<serial>. <label>"
// contract; insertion order is preserved but is not guaranteed to match
// numeric serial order, so all serial lookups go through prefix search.
type Schedule struct {
	title string
	rows  *Node
}

// New returns an empty schedule for the given block title.
func New(title string) *Schedule {
	return &Schedule{title: title, rows: NewObject()}
}

// Title returns the block title this schedule carries.
func (s *Schedule) Title() string { return s.title }

// Rows returns the ordered row mapping.
func (s *Schedule) Rows() *Node { return s.rows }

// Clone returns a deep copy so engines can mutate without side effects on
// the caller's document.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	return &Schedule{title: s.title, rows: s.rows.Clone()}
}

// SerialOf extracts the integer serial from a row key of the form
// "<serial>. <label>".
func SerialOf(key string) (int, bool) {
	head, _, found := strings.Cut(key, ".")
	if !found {
		return 0, false
	}
	serial, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return serial, true
}

// RowKey returns the first row key whose serial prefix matches the given
// serial ("N.").
func (s *Schedule) RowKey(serial int) (string, bool) {
	prefix := fmt.Sprintf("%d.", serial)
	for _, key := range s.rows.Keys() {
		if strings.HasPrefix(key, prefix) {
			return key, true
		}
	}
	return "", false
}

// Row returns the body of the first row whose serial matches.
func (s *Schedule) Row(serial int) (*Node, bool) {
	key, ok := s.RowKey(serial)
	if !ok {
		return nil, false
	}
	return s.rows.children[key], true
}

// FirstRow returns the first row in insertion order, used as the schema
// reference when computing aggregate rows. An empty schedule is a fatal
// input-shape violation.
func (s *Schedule) FirstRow() (*Node, error) {
	if s.rows.Len() == 0 {
		return nil, fmt.Errorf("%w: schedule %q has no rows", ErrMissingReferenceRow, s.title)
	}
	first, _ := s.rows.Child(s.rows.Keys()[0])
	return first, nil
}

// MarshalJSON renders the schedule as {"<title>": {rows...}} with row order
// preserved.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	doc := NewObject()
	doc.Set(s.title, s.rows)
	return doc.MarshalJSON()
}

// UnmarshalJSON reads a {"<title>": {rows...}} document. The title is taken
// from the document's single top-level key.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var doc Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if !doc.IsObject() || doc.Len() != 1 {
		return fmt.Errorf("schedule: expected a single block title at the top level, got %d keys", doc.Len())
	}
	title := doc.Keys()[0]
	rows, _ := doc.Child(title)
	if !rows.IsObject() {
		return fmt.Errorf("schedule: block %q does not contain a row mapping", title)
	}
	s.title = title
	s.rows = rows
	return nil
}

// Encode serializes the schedule as two-space-indented JSON, the persisted
// form the rest of the pipeline exchanges between stages. json.Indent keeps
// key order, which is all the byte-stability contract needs.
func (s *Schedule) Encode() ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a persisted schedule document.
func Decode(data []byte) (*Schedule, error) {
	var s Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
