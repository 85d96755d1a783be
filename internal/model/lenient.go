package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a scalar the backend sends as a JSON number, a numeric
// string, or null. Unparseable and non-finite values ("NaN", "Infinity")
// decode as invalid instead of failing.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number.
func Num(f float64) Number {
	return Number{Value: f, Valid: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	s := string(bytes.TrimSpace(data))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(str), ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Num(f)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.Value, 'f', -1, 64), nil
}

// String returns the shortest decimal form, or "" when invalid.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Or returns the value, or def when invalid.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Flag is a behavioral flag: either a plain string or a
// {"pattern": ..., "message": ...} object.
type Flag struct {
	Pattern string `json:"pattern,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"-"`
	raw     json.RawMessage
}

// TextFlag returns a plain-string flag.
func TextFlag(s string) Flag {
	return Flag{Text: s}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		return nil
	case trimmed[0] == '"':
		return json.Unmarshal(trimmed, &f.Text)
	case trimmed[0] == '{':
		var obj struct {
			Pattern string `json:"pattern"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			f.Text = string(trimmed)
			return nil
		}
		f.Pattern, f.Message = obj.Pattern, obj.Message
		f.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	default:
		f.Text = string(trimmed)
		return nil
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f.Pattern == "" && f.Message == "" {
		return json.Marshal(f.Text)
	}
	type plain struct {
		Pattern string `json:"pattern,omitempty"`
		Message string `json:"message,omitempty"`
	}
	return json.Marshal(plain{Pattern: f.Pattern, Message: f.Message})
}

// Title is the flag heading, defaulting to "Behavioral Pattern".
func (f Flag) Title() string {
	if f.Pattern != "" {
		return f.Pattern
	}
	return "Behavioral Pattern"
}

// Body is the flag message: the object message, else the plain string,
// else a structural dump.
func (f Flag) Body() string {
	switch {
	case f.Message != "":
		return f.Message
	case f.Text != "":
		return f.Text
	case len(f.raw) > 0:
		return string(f.raw)
	}
	return f.Pattern
}

// Entry is a calendar event, news item or trade description that the
// backend sends either as a string or as an object with varying keys.
type Entry struct {
	Text   string
	Fields map[string]any
	raw    json.RawMessage
}

// TextEntry returns a plain-string entry.
func TextEntry(s string) Entry {
	return Entry{Text: s}
}

// ObjectEntry returns an object entry.
func ObjectEntry(fields map[string]any) Entry {
	return Entry{Fields: fields}
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	*e = Entry{}
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		return nil
	case trimmed[0] == '"':
		return json.Unmarshal(trimmed, &e.Text)
	case trimmed[0] == '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			e.Text = string(trimmed)
			return nil
		}
		e.Fields = fields
		e.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	default:
		e.Text = string(trimmed)
		return nil
	}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Fields != nil {
		return json.Marshal(e.Fields)
	}
	if e.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(e.Text)
}

// IsZero reports whether the entry carries nothing.
func (e Entry) IsZero() bool {
	return e.Fields == nil && e.Text == ""
}

// IsObject reports whether the entry was sent as an object.
func (e Entry) IsObject() bool {
	return e.Fields != nil
}

// Field returns a scalar field rendered as a string, or "".
func (e Entry) Field(name string) string {
	v, ok := e.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// First returns the first non-empty field among names.
func (e Entry) First(names ...string) string {
	for _, name := range names {
		if v := e.Field(name); v != "" {
			return v
		}
	}
	return ""
}

// Dump returns the raw structural form of an object entry.
func (e Entry) Dump() string {
	if len(e.raw) > 0 {
		return string(e.raw)
	}
	if e.Fields == nil {
		return e.Text
	}
	data, err := json.Marshal(e.Fields)
	if err != nil {
		return ""
	}
	return string(data)
}

// Label returns the display text: the string form, else the first
// non-empty candidate field, else the structural dump.
func (e Entry) Label(candidates ...string) string {
	if !e.IsObject() {
		return e.Text
	}
	if v := e.First(candidates...); v != "" {
		return v
	}
	return e.Dump()
}
