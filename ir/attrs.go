package ir

import (
	"fmt"
	"io"
	"strings"
)

// Attr is an attribute value in the IR's attribute tree.
//
// The set of implementations is closed by convention: the kinds defined in
// this package plus custom record attributes defined by dialect packages
// (e.g. GPU device metadata). Readers inspect an Attr with a type switch over
// the concrete kinds and must handle the unexpected-kind case explicitly.
type Attr interface {
	// Write writes the attribute in its MLIR-flavored textual form.
	Write(w io.Writer) error
}

// ToString renders an attribute in its textual form.
func ToString(a Attr) string {
	if a == nil {
		return "<<nil attribute>>"
	}
	var sb strings.Builder
	_ = a.Write(&sb)
	return sb.String()
}

// StringAttr holds a string value, rendered quoted.
type StringAttr string

// BoolAttr holds a boolean value.
type BoolAttr bool

// I32Attr holds a 32-bit signed integer value.
type I32Attr int32

// I64Attr holds a 64-bit signed integer value.
type I64Attr int64

// F32Attr holds a 32-bit float value.
type F32Attr float32

// ArrayAttr holds an ordered list of attributes, not necessarily of the
// same kind.
type ArrayAttr []Attr

// NamedAttr is one entry of a DictionaryAttr or of a Module's attribute
// table: an attribute value with a name.
type NamedAttr struct {
	Name  string
	Value Attr
}

// DictionaryAttr is an ordered collection of named attributes. Iteration
// order is insertion order; lookups are linear, which is fine for the small
// dictionaries the IR carries.
type DictionaryAttr []NamedAttr

// Get returns the value stored under name, or nil if the dictionary has no
// such entry.
func (d DictionaryAttr) Get(name string) Attr {
	for _, entry := range d {
		if entry.Name == name {
			return entry.Value
		}
	}
	return nil
}

func (a StringAttr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%q", string(a))
	return err
}

func (a BoolAttr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%v", bool(a))
	return err
}

func (a I32Attr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d : i32", int32(a))
	return err
}

func (a I64Attr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d : i64", int64(a))
	return err
}

func (a F32Attr) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%e : f32", float32(a))
	return err
}

func (a ArrayAttr) Write(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	w("[")
	for i, element := range a {
		if i > 0 {
			w(", ")
		}
		if err != nil {
			return err
		}
		err = element.Write(writer)
	}
	w("]")
	return err
}

func (d DictionaryAttr) Write(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	w("{")
	for i, entry := range d {
		if i > 0 {
			w(", ")
		}
		w("%s = ", maybeQuoteName(entry.Name))
		if err != nil {
			return err
		}
		err = entry.Value.Write(writer)
	}
	w("}")
	return err
}

// maybeQuoteName returns name quoted unless it is a bare identifier
// (letter or underscore followed by letters, digits, underscores and dots).
func maybeQuoteName(name string) string {
	if !isBareIdentifier(name) {
		return fmt.Sprintf("%q", name)
	}
	return name
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '.'):
		default:
			return false
		}
	}
	return true
}
