package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// jsonMarshal is a variable to allow testing of marshal errors.
var jsonMarshal = json.Marshal

// HashBytes computes the SHA-256 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashString computes the SHA-256 hash of a string and returns it as a hex string.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashDocument computes the SHA-256 hash of a Document by serializing to
// JSON. Structurally equal documents with equal source info hash equally,
// which makes the hash usable for change detection and roundtrip checks.
func HashDocument(d *Document) (string, error) {
	data, err := jsonMarshal(d)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashNode computes the SHA-256 hash of a node subtree via JSON.
func HashNode(n *Node) (string, error) {
	data, err := jsonMarshal(n)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}
