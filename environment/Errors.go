package environment

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/goarena/space"
)

// ConfigurationError reports an invalid configuration, detected when
// an environment or wrapper chain is constructed. It names the
// offending option and the constraint it violates.
type ConfigurationError struct {
	Option     string
	Constraint string
}

// Error satisifes the error interface
func (c *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %v: %v", c.Option, c.Constraint)
}

// NewConfigurationError returns a new ConfigurationError with a
// formatted constraint
func NewConfigurationError(option, format string,
	args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Option:     option,
		Constraint: fmt.Sprintf(format, args...),
	}
}

// StateInvariantError reports a broken internal invariant, such as a
// buffer whose length diverged from its capacity or an observation that
// no longer matches its space. These errors indicate defects.
type StateInvariantError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (s *StateInvariantError) Error() string {
	return "state invariant: " + s.Op + ": " + s.Err.Error()
}

// Unwrap returns the underlying error
func (s *StateInvariantError) Unwrap() error {
	return s.Err
}

// UpstreamError reports a failure of the engine. The base environment
// wraps engine failures once; wrappers pass them through unmodified.
type UpstreamError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (u *UpstreamError) Error() string {
	return "upstream: " + u.Op + ": " + u.Err.Error()
}

// Unwrap returns the underlying error
func (u *UpstreamError) Unwrap() error {
	return u.Err
}

// IsConfiguration returns whether err reports an invalid configuration
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

// IsStateInvariant returns whether err reports a broken invariant
func IsStateInvariant(err error) bool {
	var s *StateInvariantError
	return errors.As(err, &s)
}

// IsUpstream returns whether err reports an engine failure
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}

// CheckObservation returns a StateInvariantError if the observation
// does not match the space
func CheckObservation(op string, s space.Space, o space.Value) error {
	if err := space.Check(s, o); err != nil {
		return &StateInvariantError{Op: op, Err: err}
	}
	return nil
}
