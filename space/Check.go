package space

import (
	"fmt"
	"strings"
)

// MismatchError reports that an observation tree does not have the
// layout described by its space
type MismatchError struct {
	Path []string
	Msg  string
}

// Error satisfies the error interface
func (m *MismatchError) Error() string {
	path := strings.Join(m.Path, "/")
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%v: %v", path, m.Msg)
}

// Check returns an error if the observation v is not isomorphic to the
// space s. Leaves must have the kind, shape and length described by
// their space, and discrete leaves must hold values within range.
func Check(s Space, v Value) error {
	return check(s, v, nil)
}

func check(s Space, v Value, path []string) error {
	mismatch := func(format string, args ...interface{}) error {
		return &MismatchError{
			Path: append([]string(nil), path...),
			Msg:  fmt.Sprintf(format, args...),
		}
	}

	switch s.kind {
	case Dict:
		if !v.IsNode() {
			return mismatch("expected node for %v", s)
		}
		if len(v.children) != len(s.children) {
			return mismatch("expected keys %v, got %v", s.Keys(), v.Keys())
		}
		for _, key := range s.Keys() {
			child, ok := v.children[key]
			if !ok {
				return mismatch("missing key %q", key)
			}
			if err := check(s.children[key], child, append(path, key)); err != nil {
				return err
			}
		}
		return nil

	case Box:
		if s.IsImage() {
			if !v.IsFrame() {
				return mismatch("expected frame for %v", s)
			}
			if !equalInts(v.frame.Shape(), s.shape) {
				return mismatch("expected frame shape %v, got %v", s.shape,
					v.frame.Shape())
			}
			if v.frame.Dtype() != s.dtype {
				return mismatch("expected frame dtype %v, got %v", s.dtype,
					v.frame.Dtype())
			}
			return nil
		}
		if !v.IsVector() {
			return mismatch("expected vector for %v", s)
		}
		if len(v.data) != s.Size() {
			return mismatch("expected %v elements, got %v", s.Size(),
				len(v.data))
		}
		return nil

	case Discrete:
		if !v.IsVector() || len(v.data) != 1 {
			return mismatch("expected scalar for %v", s)
		}
		if x := v.data[0]; x < 0 || int(x) >= s.n || x != float64(int(x)) {
			return mismatch("value %v outside %v", x, s)
		}
		return nil

	case MultiDiscrete:
		if !v.IsVector() || len(v.data) != len(s.nvec) {
			return mismatch("expected %v elements for %v", len(s.nvec), s)
		}
		for i, x := range v.data {
			if x < 0 || int(x) >= s.nvec[i] || x != float64(int(x)) {
				return mismatch("element %v value %v outside %v", i, x, s)
			}
		}
		return nil
	}
	return mismatch("unknown space kind %v", s.kind)
}
