package overseerr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// isNull reports whether data is the JSON null literal
func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// normalizeEmptyStrings re-encodes a JSON document with every empty string,
// at any depth, replaced by null.
func normalizeEmptyStrings(data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []byte("null"), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	return json.Marshal(nullifyEmpty(doc))
}

func nullifyEmpty(v any) any {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
	case map[string]any:
		for k, e := range t {
			t[k] = nullifyEmpty(e)
		}
	case []any:
		for i, e := range t {
			t[i] = nullifyEmpty(e)
		}
	}
	return v
}

// requireFields fails when any of fields is absent from the object or null
func requireFields(object string, data []byte, fields ...string) error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return fmt.Errorf("%s: %w", object, err)
	}
	for _, f := range fields {
		raw, ok := present[f]
		if !ok || isNull(raw) {
			return &MissingFieldError{Object: object, Field: f}
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date as sent by TMDB ("2010-07-15"). Full timestamps are
// accepted as well and truncated to the day.
type Date struct {
	time.Time
}

// UnmarshalJSON parses either a plain date or an RFC 3339 timestamp
func (d *Date) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
		t = ts.UTC().Truncate(24 * time.Hour)
	}

	d.Time = t
	return nil
}

// MarshalJSON encodes the date in its wire layout
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearString returns the four digit year, or an empty string for a nil date
func (d *Date) YearString() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("2006")
}
