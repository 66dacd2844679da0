package ir

// Kind identifies the concrete type of an Attr, mostly for diagnostics.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindI32
	KindI64
	KindF32
	KindArray
	KindDictionary

	// KindCustom covers record attributes defined outside this package.
	KindCustom
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindString:     "string",
	KindBool:       "bool",
	KindI32:        "i32",
	KindI64:        "i64",
	KindF32:        "f32",
	KindArray:      "array",
	KindDictionary: "dictionary",
	KindCustom:     "custom",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// KindOf returns the Kind of the given attribute. A nil attribute reports
// KindInvalid; attributes implemented outside this package report KindCustom.
func KindOf(a Attr) Kind {
	switch a.(type) {
	case nil:
		return KindInvalid
	case StringAttr:
		return KindString
	case BoolAttr:
		return KindBool
	case I32Attr:
		return KindI32
	case I64Attr:
		return KindI64
	case F32Attr:
		return KindF32
	case ArrayAttr:
		return KindArray
	case DictionaryAttr:
		return KindDictionary
	default:
		return KindCustom
	}
}
