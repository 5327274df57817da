package netgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Every typed error below matches exactly one of them.
var (
	ErrDuplicateName       = errors.New("duplicate logical name")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrCyclicReference     = errors.New("cyclic reference")
	ErrPhaseOrder          = errors.New("phase out of order")
)

// DuplicateNameError reports a logical name reused within one kind's namespace.
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name %q", e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// UnresolvedReferenceError reports a cross-reference with no created target.
// Kind and Name identify the referring resource; Target and Ref the missing one.
type UnresolvedReferenceError struct {
	Kind   Kind
	Name   string
	Target Kind
	Ref    string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s %q: no %s to resolve against", e.Kind, e.Name, e.Target)
	}
	return fmt.Sprintf("%s %q references undefined %s %q", e.Kind, e.Name, e.Target, e.Ref)
}

func (e *UnresolvedReferenceError) Is(target error) bool { return target == ErrUnresolvedReference }

// CyclicReferenceError reports the logical IDs on a reference cycle, in order.
type CyclicReferenceError struct {
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	if len(e.Cycle) == 0 {
		return "circular dependency detected"
	}
	return "circular dependency detected: " + strings.Join(e.Cycle, " → ")
}

func (e *CyclicReferenceError) Is(target error) bool { return target == ErrCyclicReference }

// PhaseOrderError reports a phase started before one of its preconditions completed.
type PhaseOrderError struct {
	Phase   string
	Missing string
}

func (e *PhaseOrderError) Error() string {
	return fmt.Sprintf("phase %s requires phase %s to complete first", e.Phase, e.Missing)
}

func (e *PhaseOrderError) Is(target error) bool { return target == ErrPhaseOrder }
