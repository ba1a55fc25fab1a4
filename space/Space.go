// Package space implements the observation and action spaces of arena
// environments, together with the observation trees that they describe.
//
// A Space is an immutable tagged tree. Leaves are Discrete, MultiDiscrete
// or Box spaces and internal nodes are Dict spaces. Every method which
// changes a Space returns a new Space, so that a wrapper can derive its
// own space from the space of the environment it wraps without touching
// the wrapped environment.
package space

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Kind determines what kind of space a Space is
type Kind int

const (
	Discrete Kind = iota
	MultiDiscrete
	Box
	Dict
)

func (k Kind) String() string {
	switch k {
	case Discrete:
		return "Discrete"
	case MultiDiscrete:
		return "MultiDiscrete"
	case Box:
		return "Box"
	case Dict:
		return "Dict"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Space describes the layout of an observation or action. Only the
// fields relevant to the Space's Kind are set.
type Space struct {
	kind Kind

	// Discrete
	n int

	// MultiDiscrete
	nvec []int

	// Box. Bounds with a single element are broadcast over the whole
	// shape, which keeps image spaces small.
	shape []int
	low   *mat.VecDense
	high  *mat.VecDense
	dtype tensor.Dtype

	// Dict
	children map[string]Space
}

// NewDiscrete returns a space of the integers {0, 1, ..., n-1}
func NewDiscrete(n int) Space {
	if n < 1 {
		panic(fmt.Sprintf("newDiscrete: n must be positive, got %v", n))
	}
	return Space{kind: Discrete, n: n}
}

// NewMultiDiscrete returns a space of integer vectors, where element i
// lies in {0, 1, ..., nvec[i]-1}
func NewMultiDiscrete(nvec []int) Space {
	if len(nvec) == 0 {
		panic("newMultiDiscrete: nvec must not be empty")
	}
	for i, n := range nvec {
		if n < 1 {
			panic(fmt.Sprintf("newMultiDiscrete: nvec[%v] must be positive, "+
				"got %v", i, n))
		}
	}
	return Space{kind: MultiDiscrete, nvec: append([]int(nil), nvec...)}
}

// NewBox returns a bounded box space with the given shape. The low and
// high bounds must either have one element per element of the shape or
// have a single element which bounds every element of the box.
func NewBox(shape []int, low, high *mat.VecDense, dtype tensor.Dtype) Space {
	size := prod(shape)
	if low.Len() != high.Len() {
		panic(fmt.Sprintf("newBox: lower bound length %v must match upper "+
			"bound length %v", low.Len(), high.Len()))
	}
	if low.Len() != 1 && low.Len() != size {
		panic(fmt.Sprintf("newBox: bounds length %v must be 1 or match "+
			"shape size %v", low.Len(), size))
	}
	for i := 0; i < low.Len(); i++ {
		if low.AtVec(i) > high.AtVec(i) {
			panic(fmt.Sprintf("newBox: lower bound %v exceeds upper bound %v",
				low.AtVec(i), high.AtVec(i)))
		}
	}

	return Space{
		kind:  Box,
		shape: append([]int(nil), shape...),
		low:   mat.VecDenseCopyOf(low),
		high:  mat.VecDenseCopyOf(high),
		dtype: dtype,
	}
}

// NewUniformBox returns a Box whose elements all share the bounds
// [low, high]
func NewUniformBox(shape []int, low, high float64, dtype tensor.Dtype) Space {
	return NewBox(shape, mat.NewVecDense(1, []float64{low}),
		mat.NewVecDense(1, []float64{high}), dtype)
}

// NewDict returns a space composed of named sub-spaces
func NewDict(children map[string]Space) Space {
	c := make(map[string]Space, len(children))
	for k, v := range children {
		if k == "" {
			panic("newDict: keys must not be empty")
		}
		c[k] = v
	}
	return Space{kind: Dict, children: c}
}

// Kind returns the kind of the space
func (s Space) Kind() Kind {
	return s.kind
}

// N returns the number of values of a Discrete space
func (s Space) N() int {
	return s.n
}

// Nvec returns the number of values of each element of a MultiDiscrete
// space
func (s Space) Nvec() []int {
	return append([]int(nil), s.nvec...)
}

// Shape returns the shape of a Box space
func (s Space) Shape() []int {
	return append([]int(nil), s.shape...)
}

// Rank returns the number of dimensions of a Box space
func (s Space) Rank() int {
	return len(s.shape)
}

// Dtype returns the element type of a Box space
func (s Space) Dtype() tensor.Dtype {
	return s.dtype
}

// IsImage returns whether the space describes an image, which is any
// Box of rank 3 or higher
func (s Space) IsImage() bool {
	return s.kind == Box && len(s.shape) >= 3
}

// Low returns the lower bound of element i of a Box space
func (s Space) Low(i int) float64 {
	if s.low.Len() == 1 {
		return s.low.AtVec(0)
	}
	return s.low.AtVec(i)
}

// High returns the upper bound of element i of a Box space
func (s Space) High(i int) float64 {
	if s.high.Len() == 1 {
		return s.high.AtVec(0)
	}
	return s.high.AtVec(i)
}

// Bounds returns copies of the raw lower and upper bounds of a Box space
func (s Space) Bounds() (low, high *mat.VecDense) {
	return mat.VecDenseCopyOf(s.low), mat.VecDenseCopyOf(s.high)
}

// Size returns the number of scalar elements in a leaf space. Discrete
// spaces have size 1.
func (s Space) Size() int {
	switch s.kind {
	case Discrete:
		return 1
	case MultiDiscrete:
		return len(s.nvec)
	case Box:
		return prod(s.shape)
	case Dict:
		return 0
	}
	panic(fmt.Sprintf("size: unknown kind %v", s.kind))
}

// Keys returns the sorted keys of a Dict space
func (s Space) Keys() []string {
	keys := make([]string, 0, len(s.children))
	for k := range s.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Child returns the sub-space stored at key in a Dict space
func (s Space) Child(key string) (Space, bool) {
	c, ok := s.children[key]
	return c, ok
}

// Lookup returns the sub-space found by following path from the root
func (s Space) Lookup(path ...string) (Space, bool) {
	current := s
	for _, key := range path {
		if current.kind != Dict {
			return Space{}, false
		}
		next, ok := current.children[key]
		if !ok {
			return Space{}, false
		}
		current = next
	}
	return current, true
}

// With returns a copy of the Dict space with key set to child
func (s Space) With(key string, child Space) Space {
	if s.kind != Dict {
		panic(fmt.Sprintf("with: cannot set key %q on %v space", key, s.kind))
	}
	c := make(map[string]Space, len(s.children)+1)
	for k, v := range s.children {
		c[k] = v
	}
	c[key] = child
	return Space{kind: Dict, children: c}
}

// Without returns a copy of the Dict space with the given keys removed
func (s Space) Without(keys ...string) Space {
	if s.kind != Dict {
		panic(fmt.Sprintf("without: cannot remove keys from %v space", s.kind))
	}
	c := make(map[string]Space, len(s.children))
	for k, v := range s.children {
		c[k] = v
	}
	for _, k := range keys {
		delete(c, k)
	}
	return Space{kind: Dict, children: c}
}

// Equal returns whether two spaces describe identical layouts
func (s Space) Equal(other Space) bool {
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case Discrete:
		return s.n == other.n

	case MultiDiscrete:
		return equalInts(s.nvec, other.nvec)

	case Box:
		if !equalInts(s.shape, other.shape) || s.dtype != other.dtype {
			return false
		}
		for i := 0; i < s.Size(); i++ {
			if s.Low(i) != other.Low(i) || s.High(i) != other.High(i) {
				return false
			}
		}
		return true

	case Dict:
		if len(s.children) != len(other.children) {
			return false
		}
		for k, v := range s.children {
			o, ok := other.children[k]
			if !ok || !v.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns a string representation of the space
func (s Space) String() string {
	switch s.kind {
	case Discrete:
		return fmt.Sprintf("Discrete(%v)", s.n)

	case MultiDiscrete:
		return fmt.Sprintf("MultiDiscrete(%v)", s.nvec)

	case Box:
		return fmt.Sprintf("Box(%v, %v)", s.shape, s.dtype)

	case Dict:
		parts := make([]string, 0, len(s.children))
		for _, k := range s.Keys() {
			parts = append(parts, fmt.Sprintf("%v: %v", k, s.children[k]))
		}
		return "Dict(" + strings.Join(parts, ", ") + ")"
	}
	return s.kind.String()
}

func prod(ints []int) int {
	p := 1
	for _, v := range ints {
		p *= v
	}
	return p
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// WithPath returns a copy of the Dict space with the sub-space at path
// set to child. Missing intermediate nodes are created as empty Dicts.
func (s Space) WithPath(path []string, child Space) Space {
	if len(path) == 0 {
		return child
	}
	next, ok := s.Child(path[0])
	if !ok || next.kind != Dict {
		next = NewDict(nil)
	}
	if len(path) == 1 {
		return s.With(path[0], child)
	}
	return s.With(path[0], next.WithPath(path[1:], child))
}
