package query

import "encoding/json"

// Opt is a sparse-update field that remembers whether its key appeared in
// the payload at all. Set is false for an absent key; Set true with a nil
// Value means the key was sent as an explicit JSON null, which updates
// translate into SET col = NULL.
type Opt[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Opt holding v, as if the field had been sent with that
// value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: &v}
}

// Null reports whether the field was sent as an explicit null.
func (o Opt[T]) Null() bool {
	return o.Set && o.Value == nil
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	o.Value = v
	return nil
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
