package ir

import (
	"fmt"
	"io"
	"strings"
)

// Module is a compilation unit: it owns an ordered table of named attributes
// that passes use to carry metadata alongside the IR.
//
// A Module is exclusively owned by whichever pass currently holds it; it
// performs no locking and must not be mutated concurrently.
type Module struct {
	name  string
	attrs []NamedAttr
}

// NewModule creates an empty module. The name may be empty for anonymous
// modules.
func NewModule(name string) *Module {
	return &Module{name: name}
}

// Name returns the module's name, possibly empty.
func (m *Module) Name() string { return m.name }

// Attr returns the attribute stored under name, or nil if the module has no
// such attribute.
func (m *Module) Attr(name string) Attr {
	for _, entry := range m.attrs {
		if entry.Name == name {
			return entry.Value
		}
	}
	return nil
}

// SetAttr stores value under name, replacing any previous value. Setting a
// new name appends it, so the attribute table keeps insertion order.
func (m *Module) SetAttr(name string, value Attr) {
	for i, entry := range m.attrs {
		if entry.Name == name {
			m.attrs[i].Value = value
			return
		}
	}
	m.attrs = append(m.attrs, NamedAttr{Name: name, Value: value})
}

// RemoveAttr removes the attribute stored under name and reports whether it
// was present.
func (m *Module) RemoveAttr(name string) bool {
	for i, entry := range m.attrs {
		if entry.Name == name {
			m.attrs = append(m.attrs[:i], m.attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Attrs returns the module's attribute table in insertion order. The returned
// slice is owned by the module and must not be modified.
func (m *Module) Attrs() []NamedAttr {
	return m.attrs
}

// Write writes the module in its MLIR-flavored textual form.
func (m *Module) Write(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	w("module")
	if m.name != "" {
		w(" @%s", m.name)
	}
	if len(m.attrs) > 0 {
		w(" attributes ")
		if err != nil {
			return err
		}
		err = DictionaryAttr(m.attrs).Write(writer)
	}
	w(" {\n}\n")
	return err
}

// String returns the module in its MLIR-flavored textual form.
func (m *Module) String() string {
	var sb strings.Builder
	_ = m.Write(&sb)
	return sb.String()
}
