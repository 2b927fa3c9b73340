package mysql

import "encoding/json"

// jsonOrEmpty marshals v, falling back to an empty object on failure so
// non-nullable JSON columns always get valid content.
func jsonOrEmpty(v any) []byte {
	b, err := json.Marshal(v)
	// Nil maps marshal to "null", which the column does not want.
	if err != nil || string(b) == "null" {
		return []byte("{}")
	}
	return b
}

// jsonOrEmptyList is jsonOrEmpty for list-shaped columns.
func jsonOrEmptyList(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return []byte("[]")
	}
	return b
}
