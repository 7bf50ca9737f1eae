package mailbox

import "encoding/json"

// Codec encodes values for the persistence mirror.
type Codec[T any] interface {
	// Encode serializes a value for storage.
	Encode(value T) ([]byte, error)

	// Decode reconstructs a value from its stored form.
	Decode(data []byte) (T, error)
}

// JSONCodec is the default Codec, using encoding/json.
// T must round-trip through JSON for persistence to be faithful.
type JSONCodec[T any] struct{}

// Compile-time interface check.
var _ Codec[int] = JSONCodec[int]{}

// Encode implements Codec.
func (JSONCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

// Decode implements Codec.
func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}
