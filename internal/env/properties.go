package env

import "sort"

// Properties is a string-keyed bag of arbitrary values attached to an object.
// Typed getters return the zero value of their type when the key is absent
// or holds a value of another type.
type Properties struct {
	values map[string]any
}

// NewProperties creates an empty bag.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// Set stores value under key, replacing any previous value.
func (p *Properties) Set(key string, value any) {
	p.values[key] = value
}

// Get returns the raw value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present.
func (p *Properties) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Delete removes key.
func (p *Properties) Delete(key string) {
	delete(p.values, key)
}

// Bool returns the boolean stored under key, false when absent.
func (p *Properties) Bool(key string) bool {
	v, _ := p.values[key].(bool)
	return v
}

// Int returns the int stored under key, 0 when absent.
func (p *Properties) Int(key string) int {
	v, _ := p.values[key].(int)
	return v
}

// String returns the string stored under key, "" when absent.
func (p *Properties) String(key string) string {
	v, _ := p.values[key].(string)
	return v
}

// Keys returns the keys in sorted order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.values)
}
