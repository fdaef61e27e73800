package favorites

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Encode serializes a collection to UTF-8 JSON and base64-encodes it,
// producing the transportable snapshot token.
func Encode(c Collection) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("favorites: encode snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. Invalid base64 or JSON yields an error the
// loader treats as a fall-through to the next persistence source.
func Decode(token string) (Collection, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Collection{}, fmt.Errorf("favorites: decode snapshot base64: %w", err)
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return Collection{}, fmt.Errorf("favorites: decode snapshot json: %w", err)
	}
	return normalize(c), nil
}
