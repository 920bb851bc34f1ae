// Package hostdata loads ctx/memory fixtures for the CLI from YAML,
// converting decoded Go values into runtimevalue.Value trees.
package hostdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

// LoadFile reads path as YAML and converts its top-level document into a
// runtimevalue.Value. Callers pass an empty path when no fixture was
// supplied and get back an empty map.
func LoadFile(path string) (*runtimevalue.PersistentMap, error) {
	if path == "" {
		return runtimevalue.EmptyMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hostdata: reading %s: %w", path, err)
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("hostdata: parsing %s: %w", path, err)
	}
	v := Convert(doc)
	m, ok := v.(*runtimevalue.PersistentMap)
	if !ok {
		return nil, fmt.Errorf("hostdata: %s must decode to a YAML mapping at the top level", path)
	}
	return m, nil
}

// Convert turns a value produced by yaml.v3's generic decode (map[string]
// interface{}, []interface{}, string, int, float64, bool, nil) into the
// matching runtimevalue.Value shape. Map keys become keywords, the
// natural reading of a YAML mapping key as a PTC-Lisp ctx/memory key;
// flexible key access then makes the string form reachable too.
func Convert(doc interface{}) runtimevalue.Value {
	switch v := doc.(type) {
	case nil:
		return runtimevalue.NilValue
	case bool:
		return runtimevalue.BoolOf(v)
	case int:
		return runtimevalue.IntFromInt64(int64(v))
	case int64:
		return runtimevalue.IntFromInt64(v)
	case float64:
		return runtimevalue.Float{Value: v}
	case string:
		return runtimevalue.String{Value: v}
	case []interface{}:
		items := make([]runtimevalue.Value, len(v))
		for i, item := range v {
			items[i] = Convert(item)
		}
		return runtimevalue.NewVector(items)
	case map[string]interface{}:
		m := runtimevalue.EmptyMap()
		for k, val := range v {
			m = m.Put(runtimevalue.Keyword{Name: k}, Convert(val))
		}
		return m
	case map[interface{}]interface{}:
		m := runtimevalue.EmptyMap()
		for k, val := range v {
			m = m.Put(keyFromYAML(k), Convert(val))
		}
		return m
	default:
		return runtimevalue.String{Value: fmt.Sprintf("%v", v)}
	}
}

func keyFromYAML(k interface{}) runtimevalue.Value {
	if s, ok := k.(string); ok {
		return runtimevalue.Keyword{Name: s}
	}
	return Convert(k)
}
