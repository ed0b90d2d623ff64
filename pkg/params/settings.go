package params

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Settings is an ordered section of the engine parameters. Keys keep their
// insertion order, which is the order the input renderer writes them in for
// systems and components.
//
// Values are normalized on Set to one of: bool, int, float64, string,
// []interface{} (a list of those scalars) or *Settings (a per-system map,
// only legal inside a component).
type Settings struct {
	keys   []string
	values map[string]interface{}
}

// NewSettings returns an empty section.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]interface{})}
}

// Set stores v under key. A new key is appended, an existing key keeps its
// position.
func (s *Settings) Set(key string, v interface{}) {
	if s.values == nil {
		s.values = make(map[string]interface{})
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = normalize(v)
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Settings) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Delete removes key. It is a no-op if key is absent.
func (s *Settings) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// SortedKeys returns the keys in lexicographic order.
func (s *Settings) SortedKeys() []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns a deep copy of the section.
func (s *Settings) Clone() *Settings {
	c := NewSettings()
	if s == nil {
		return c
	}
	for _, k := range s.keys {
		c.keys = append(c.keys, k)
		c.values[k] = cloneValue(s.values[k])
	}
	return c
}

func cloneValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		return append([]interface{}(nil), v...)
	case *Settings:
		return v.Clone()
	default:
		return v
	}
}

// Map returns the nested per-system map stored under key.
func (s *Settings) Map(key string) (*Settings, bool) {
	v, ok := s.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Settings)
	return m, ok
}

// Int returns the value under key as an int. Floats without a fractional
// part and numeric strings are accepted.
func (s *Settings) Int(key string) (int, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, fmt.Errorf("%s is missing", key)
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s is not an integer (%g)", key, v)
		}
		return int(v), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%s is not a number (%T)", key, v)
}

// Float returns the value under key as a float64.
func (s *Settings) Float(key string) (float64, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, fmt.Errorf("%s is missing", key)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// Str returns the value under key as a string.
func (s *Settings) Str(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("%s is missing", key)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s is not a string (%T)", key, v)
	}
	return str, nil
}

// Floats returns the value under key as a list of floats. Both a list and
// a space separated string ("25 25 25") are accepted.
func (s *Settings) Floats(key string) ([]float64, error) {
	v, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("%s is missing", key)
	}
	var items []interface{}
	switch v := v.(type) {
	case []interface{}:
		items = v
	case string:
		for _, f := range strings.Fields(v) {
			items = append(items, f)
		}
	default:
		items = []interface{}{v}
	}

	fs := make([]float64, 0, len(items))
	for _, it := range items {
		f, err := toFloat(it)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		fs = append(fs, f)
	}
	return fs, nil
}

func toFloat(v interface{}) (float64, error) {
	switch v := v.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("not a number (%T)", v)
}

func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return float64(v)
	case []int:
		l := make([]interface{}, len(v))
		for i, x := range v {
			l[i] = x
		}
		return l
	case []float64:
		l := make([]interface{}, len(v))
		for i, x := range v {
			l[i] = x
		}
		return l
	case []string:
		l := make([]interface{}, len(v))
		for i, x := range v {
			l[i] = x
		}
		return l
	case []interface{}:
		l := make([]interface{}, len(v))
		for i, x := range v {
			l[i] = normalize(x)
		}
		return l
	}
	return v
}

// checkValue reports whether v is a value the renderer knows how to write.
func checkValue(v interface{}, nested bool) error {
	switch v := v.(type) {
	case bool, int, float64, string:
		return nil
	case []interface{}:
		for _, x := range v {
			switch x.(type) {
			case bool, int, float64, string:
			default:
				return fmt.Errorf("list item of type %T is not supported", x)
			}
		}
		return nil
	case *Settings:
		if !nested {
			return fmt.Errorf("nested mappings are only allowed as per-system maps of a component")
		}
		for _, k := range v.keys {
			if err := checkValue(v.values[k], false); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		return nil
	}
	return fmt.Errorf("value of type %T is not supported", v)
}
