// Package jsmodule aggregates extracted samples and writes them as the
// JavaScript data file loaded by the visualizer.
package jsmodule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Noofbiz/lrimviz/datasets"
)

// Bundle is the record stored per dataset key. Size and Sigma are the raw
// filename segments, never reformatted.
type Bundle struct {
	Size    string               `json:"s"`
	Sigma   string               `json:"g"`
	Samples []datasets.Extracted `json:"d"`
}

// Collection maps dataset keys to bundles and remembers insertion order, so
// the generated file lists datasets in the order they were processed.
type Collection struct {
	keys    []string
	bundles map[string]Bundle
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{bundles: map[string]Bundle{}}
}

// Add stores b under key. When key is already present the bundle is replaced
// in place, keeping its original position, and replaced is true.
func (c *Collection) Add(key string, b Bundle) (replaced bool) {
	if c.bundles == nil {
		c.bundles = map[string]Bundle{}
	}
	if _, ok := c.bundles[key]; ok {
		replaced = true
	} else {
		c.keys = append(c.keys, key)
	}
	c.bundles[key] = b
	return replaced
}

// Get returns the bundle stored under key.
func (c *Collection) Get(key string) (Bundle, bool) {
	b, ok := c.bundles[key]
	return b, ok
}

// Keys returns the keys in insertion order.
func (c *Collection) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of bundles.
func (c *Collection) Len() int {
	return len(c.keys)
}

// MarshalJSON writes the collection as an object with keys in insertion order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.bundles[key])
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of bundles, preserving the key order found in
// the input.
func (c *Collection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	out := NewCollection()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		var b Bundle
		if err := dec.Decode(&b); err != nil {
			return fmt.Errorf("bundle %s: %w", key, err)
		}
		out.Add(key, b)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = *out
	return nil
}
