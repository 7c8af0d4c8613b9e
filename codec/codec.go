// Package codec converts typed values to the opaque payload stored inside a
// cache envelope. Use it through autocache.Typed.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
