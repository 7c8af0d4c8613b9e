package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var errNilMessage = errors.New("codec: protobuf constructor returned nil")

// Protobuf encodes proto messages deterministically, so an unchanged
// message rewrites identical bytes. ctor returns a fresh message to decode
// into, e.g. func() *pb.Cart { return &pb.Cart{} }.
type Protobuf[T proto.Message] struct {
	ctor func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{ctor: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

// Decode keeps unknown fields, so a reader built from an older schema
// passes newer entries through intact.
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.ctor()
	if !m.ProtoReflect().IsValid() {
		var zero T
		return zero, errNilMessage
	}
	err := proto.Unmarshal(b, m)
	return m, err
}
