package space

import "strings"

// DefaultSeparator joins nested keys when flattening
const DefaultSeparator = "_"

// FlattenSpace returns a single level Dict space whose keys are the
// paths to the leaves of s joined by sep. A leaf root is returned
// unchanged.
func FlattenSpace(s Space, sep string) Space {
	if s.kind != Dict {
		return s
	}
	out := make(map[string]Space)
	flattenSpace(s, nil, sep, out)
	return NewDict(out)
}

func flattenSpace(s Space, path []string, sep string, out map[string]Space) {
	if s.kind != Dict {
		out[strings.Join(path, sep)] = s
		return
	}
	for _, k := range s.Keys() {
		flattenSpace(s.children[k], append(path, k), sep, out)
	}
}

// FlattenValue flattens an observation tree the way FlattenSpace
// flattens its space
func FlattenValue(v Value, sep string) Value {
	if !v.IsNode() {
		return v
	}
	out := make(map[string]Value)
	flattenValue(v, nil, sep, out)
	return Value{children: out}
}

func flattenValue(v Value, path []string, sep string, out map[string]Value) {
	if !v.IsNode() {
		out[strings.Join(path, sep)] = v
		return
	}
	for k, child := range v.children {
		flattenValue(child, append(path, k), sep, out)
	}
}
