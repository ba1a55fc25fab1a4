package space

import (
	"fmt"
	"sort"

	"gorgonia.org/tensor"
)

// Value is a node of an observation tree. A Value is exactly one of:
// a frame leaf holding an image tensor of shape H×W×C, a vector leaf
// holding RAM readings, or an internal node holding named children.
//
// Values are treated as immutable by the wrappers in this module: a
// wrapper that changes an observation builds a new tree with With and
// Without instead of mutating the tree it received.
type Value struct {
	frame    *tensor.Dense
	data     []float64
	children map[string]Value
}

// Frame returns a frame leaf
func Frame(t *tensor.Dense) Value {
	if t == nil {
		panic("frame: tensor must not be nil")
	}
	return Value{frame: t}
}

// Vector returns a vector leaf. A single argument returns a scalar
// reading.
func Vector(data ...float64) Value {
	return Value{data: append([]float64{}, data...)}
}

// Ints returns a vector leaf holding the given integers
func Ints(data ...int) Value {
	v := make([]float64, len(data))
	for i, d := range data {
		v[i] = float64(d)
	}
	return Value{data: v}
}

// Node returns an internal node with the given children
func Node(children map[string]Value) Value {
	c := make(map[string]Value, len(children))
	for k, v := range children {
		c[k] = v
	}
	return Value{children: c}
}

// IsFrame returns whether the value is a frame leaf
func (v Value) IsFrame() bool {
	return v.frame != nil
}

// IsNode returns whether the value is an internal node
func (v Value) IsNode() bool {
	return v.frame == nil && v.children != nil
}

// IsVector returns whether the value is a vector leaf
func (v Value) IsVector() bool {
	return v.frame == nil && v.children == nil
}

// Frame returns the image tensor of a frame leaf
func (v Value) Frame() *tensor.Dense {
	return v.frame
}

// Data returns the readings of a vector leaf. The returned slice must
// not be modified.
func (v Value) Data() []float64 {
	return v.data
}

// Int returns element i of a vector leaf as an integer
func (v Value) Int(i int) int {
	return int(v.data[i])
}

// Keys returns the sorted keys of a node
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.children))
	for k := range v.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Child returns the child of a node stored at key
func (v Value) Child(key string) (Value, bool) {
	c, ok := v.children[key]
	return c, ok
}

// Lookup returns the value found by following path from the root
func (v Value) Lookup(path ...string) (Value, bool) {
	current := v
	for _, key := range path {
		if !current.IsNode() {
			return Value{}, false
		}
		next, ok := current.children[key]
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// With returns a copy of the node with key set to child
func (v Value) With(key string, child Value) Value {
	if !v.IsNode() {
		panic(fmt.Sprintf("with: cannot set key %q on a leaf", key))
	}
	c := make(map[string]Value, len(v.children)+1)
	for k, val := range v.children {
		c[k] = val
	}
	c[key] = child
	return Value{children: c}
}

// Without returns a copy of the node with the given keys removed
func (v Value) Without(keys ...string) Value {
	if !v.IsNode() {
		panic("without: cannot remove keys from a leaf")
	}
	c := make(map[string]Value, len(v.children))
	for k, val := range v.children {
		c[k] = val
	}
	for _, k := range keys {
		delete(c, k)
	}
	return Value{children: c}
}

// Clone returns a deep copy of the value
func (v Value) Clone() Value {
	switch {
	case v.IsFrame():
		return Value{frame: v.frame.Clone().(*tensor.Dense)}

	case v.IsNode():
		c := make(map[string]Value, len(v.children))
		for k, val := range v.children {
			c[k] = val.Clone()
		}
		return Value{children: c}
	}
	return Value{data: append([]float64{}, v.data...)}
}

// String returns a string representation of the value
func (v Value) String() string {
	switch {
	case v.IsFrame():
		return fmt.Sprintf("Frame%v", v.frame.Shape())

	case v.IsNode():
		s := "{"
		for i, k := range v.Keys() {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%v: %v", k, v.children[k])
		}
		return s + "}"
	}
	return fmt.Sprintf("%v", v.data)
}

// WithPath returns a copy of the node with the value at path set to
// child. Missing intermediate nodes are created.
func (v Value) WithPath(path []string, child Value) Value {
	if len(path) == 0 {
		return child
	}
	if len(path) == 1 {
		return v.With(path[0], child)
	}
	next, ok := v.Child(path[0])
	if !ok || !next.IsNode() {
		next = Node(nil)
	}
	return v.With(path[0], next.WithPath(path[1:], child))
}
