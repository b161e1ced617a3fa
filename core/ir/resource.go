package ir

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	apperrors "github.com/docfold/docfold/core/errors"
)

// Resource is an embedded binary asset (image, font, data file) referenced
// from node properties by its id. Deleting the referencing node does not
// delete the resource; an orphaned resource is valid.
type Resource struct {
	// ID is the identifier, unique within one ResourceMap.
	ID string `json:"id"`

	// MediaType is the MIME type (e.g. "image/png").
	MediaType string `json:"media_type"`

	// Data holds the resource bytes. Sourcing bytes from disk or network is
	// the calling format module's responsibility.
	Data []byte `json:"data,omitempty"`

	// URI is the original location, if the resource came from an external
	// reference.
	URI string `json:"uri,omitempty"`
}

// Checksum returns the BLAKE3 hash of the resource bytes as a hex string.
func (r *Resource) Checksum() string {
	sum := blake3.Sum256(r.Data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the resource.
func (r *Resource) Clone() *Resource {
	out := &Resource{ID: r.ID, MediaType: r.MediaType, URI: r.URI}
	if r.Data != nil {
		out.Data = make([]byte, len(r.Data))
		copy(out.Data, r.Data)
	}
	return out
}

// Equal reports whether two resources carry the same id, type, bytes, and URI.
func (r *Resource) Equal(o *Resource) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.ID == o.ID && r.MediaType == o.MediaType &&
		r.URI == o.URI && bytes.Equal(r.Data, o.Data)
}

// ResourceMap is a keyed store of resources with ids unique within one
// Document. Iteration order is insertion order, stable within a process run.
type ResourceMap struct {
	ids []string
	res map[string]*Resource
}

// NewResourceMap creates an empty resource map.
func NewResourceMap() *ResourceMap {
	return &ResourceMap{res: make(map[string]*Resource)}
}

// Insert adds a resource and returns its id. If the resource has no id, a
// unique one is generated. A caller-supplied id that collides with an
// existing entry fails with a DuplicateIDError.
func (m *ResourceMap) Insert(r *Resource) (string, error) {
	if m.res == nil {
		m.res = make(map[string]*Resource)
	}
	if r.ID == "" {
		r.ID = "res-" + uuid.NewString()
	} else if _, exists := m.res[r.ID]; exists {
		return "", &apperrors.DuplicateIDError{ID: r.ID}
	}
	m.res[r.ID] = r
	m.ids = append(m.ids, r.ID)
	return r.ID, nil
}

// Get returns the resource stored under id.
func (m *ResourceMap) Get(id string) (*Resource, bool) {
	if m == nil {
		return nil, false
	}
	r, ok := m.res[id]
	return r, ok
}

// Remove deletes the resource stored under id, reporting whether it existed.
func (m *ResourceMap) Remove(id string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.res[id]; !ok {
		return false
	}
	delete(m.res, id)
	for i, existing := range m.ids {
		if existing == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the resource ids in insertion order.
func (m *ResourceMap) IDs() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// Len returns the number of stored resources.
func (m *ResourceMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

// Clone returns a deep copy of the map.
func (m *ResourceMap) Clone() *ResourceMap {
	if m == nil {
		return nil
	}
	out := NewResourceMap()
	out.ids = make([]string, len(m.ids))
	copy(out.ids, m.ids)
	for id, r := range m.res {
		out.res[id] = r.Clone()
	}
	return out
}

// Equal reports whether two maps hold equal resources under the same ids.
// Insertion order does not participate.
func (m *ResourceMap) Equal(o *ResourceMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m == nil || o == nil {
		// Both empty: a nil map and an empty map hold the same resources.
		return true
	}
	for id, r := range m.res {
		or, ok := o.res[id]
		if !ok || !r.Equal(or) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object keyed by id, in insertion order.
func (m *ResourceMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.res[id])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of id to resource, replacing any
// existing contents.
func (m *ResourceMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("resource map must be a JSON object, got %v", tok)
	}
	out := NewResourceMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected resource key %v", keyTok)
		}
		var r Resource
		if err := dec.Decode(&r); err != nil {
			return err
		}
		if r.ID == "" {
			r.ID = id
		}
		if _, err := out.Insert(&r); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return err
	}
	*m = *out
	return nil
}
