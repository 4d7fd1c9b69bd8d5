package links

import "fmt"

// Symbol is the atomic value derived from one pixel: the four 8-bit channels
// packed as R | G<<8 | B<<16 | A<<24.
type Symbol uint32

// SymbolFromRGBA packs 8-bit channels into a Symbol.
func SymbolFromRGBA(r, g, b, a uint8) Symbol {
	return Symbol(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24)
}

// RGBA unpacks the channels of a Symbol.
func (s Symbol) RGBA() (r, g, b, a uint8) {
	return uint8(s), uint8(s >> 8), uint8(s >> 16), uint8(s >> 24)
}

// String formats the symbol as "#RRGGBBAA".
func (s Symbol) String() string {
	r, g, b, a := s.RGBA()
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a)
}

// MarshalText encodes the symbol as its String form.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Link is a relation identifier assigned by a Store.
type Link uint64

// String formats the link as "L<id>".
func (l Link) String() string {
	return fmt.Sprintf("L%d", uint64(l))
}

// Kind discriminates the variants of Element.
type Kind uint8

const (
	// InvalidKind is the kind of the zero Element.
	InvalidKind Kind = iota
	// SymbolKind marks a raw symbol.
	SymbolKind
	// LinkKind marks a relation identifier.
	LinkKind
	// AnyKind marks the query wildcard.
	AnyKind
)

// Element is either a Symbol or a Link. The zero value is invalid.
// Elements are comparable and can be used as map keys.
type Element struct {
	kind  Kind
	value uint64
}

// Any matches every element in a Query.
var Any = Element{kind: AnyKind}

// SymbolElement wraps a Symbol.
func SymbolElement(s Symbol) Element {
	return Element{kind: SymbolKind, value: uint64(s)}
}

// LinkElement wraps a Link.
func LinkElement(l Link) Element {
	return Element{kind: LinkKind, value: uint64(l)}
}

// Kind reports which variant e holds.
func (e Element) Kind() Kind { return e.kind }

// IsSymbol reports whether e holds a raw symbol.
func (e Element) IsSymbol() bool { return e.kind == SymbolKind }

// IsLink reports whether e holds a relation identifier.
func (e Element) IsLink() bool { return e.kind == LinkKind }

// IsAny reports whether e is the wildcard.
func (e Element) IsAny() bool { return e.kind == AnyKind }

// IsValid reports whether e is a symbol or a link.
func (e Element) IsValid() bool { return e.kind == SymbolKind || e.kind == LinkKind }

// Symbol returns the symbol held by e.
func (e Element) Symbol() (Symbol, bool) {
	if e.kind != SymbolKind {
		return 0, false
	}
	return Symbol(e.value), true
}

// Link returns the link held by e.
func (e Element) Link() (Link, bool) {
	if e.kind != LinkKind {
		return 0, false
	}
	return Link(e.value), true
}

// Raw returns the untyped payload; use Kind to interpret it.
func (e Element) Raw() uint64 { return e.value }

// FromRaw rebuilds an element from its kind and payload, as stored by
// snapshots.
func FromRaw(kind Kind, value uint64) (Element, error) {
	switch kind {
	case SymbolKind:
		if value > 0xFFFFFFFF {
			return Element{}, fmt.Errorf("symbol value %d out of range", value)
		}
		return Element{kind: kind, value: value}, nil
	case LinkKind:
		if value == 0 {
			return Element{}, fmt.Errorf("link id must be positive")
		}
		return Element{kind: kind, value: value}, nil
	default:
		return Element{}, fmt.Errorf("unsupported element kind %d", kind)
	}
}

func (e Element) String() string {
	switch e.kind {
	case SymbolKind:
		return Symbol(e.value).String()
	case LinkKind:
		return Link(e.value).String()
	case AnyKind:
		return "*"
	default:
		return "<invalid>"
	}
}

// MarshalText encodes the element as its String form, so elements read as
// "L12" or "#RRGGBBAA" in JSON output.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// matches reports whether e satisfies the query slot q.
func (e Element) matches(q Element) bool {
	return q.kind == AnyKind || q == e
}
