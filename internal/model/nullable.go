package model

import "encoding/json"

// Nullable is a JSON field wrapper that can tell three states apart:
//
//	{"title": "x"}   → Set=true,  Valid=true,  Value="x"
//	{"title": null}  → Set=true,  Valid=false
//	{}               → Set=false
//
// Partial updates need this distinction: an omitted field must not touch the
// stored value, while an explicit null clears it (where clearing is
// allowed). A plain pointer field collapses the first two cases into one.
//
// HOW IT WORKS:
// encoding/json only calls UnmarshalJSON for keys that are actually present
// in the payload, so Set flips to true exactly when the field appeared.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(data, &n.Value)
}

// Provided reports whether the field was present with a non-null value.
func (n Nullable[T]) Provided() bool { return n.Set && n.Valid }

// Cleared reports whether the field was present as an explicit null.
func (n Nullable[T]) Cleared() bool { return n.Set && !n.Valid }
