package object

import "github.com/tinyjs/corevm/value"

// KeyKind discriminates the three forms a property name may take (spec
// §3: "A property name is either an integer-index string, an ordinary
// string, or a symbol").
type KeyKind uint8

const (
	KeyString KeyKind = iota
	KeySymbol
	KeyIndex
)

// Key is a property name. Exactly one of (Str, Index) is meaningful,
// selected by Kind.
type Key struct {
	Kind  KeyKind
	Str   value.Value // KeyString: a string value.Value; KeySymbol: a symbol value.Value
	Index uint32      // KeyIndex only
}

// StringKey builds a string property key.
func StringKey(v value.Value) Key { return Key{Kind: KeyString, Str: v} }

// SymbolKey builds a symbol property key.
func SymbolKey(v value.Value) Key { return Key{Kind: KeySymbol, Str: v} }

// IndexKey builds an integer-index property key.
func IndexKey(i uint32) Key { return Key{Kind: KeyIndex, Index: i} }
