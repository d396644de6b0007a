package wizard

import (
	"fmt"
	"sort"

	"github.com/mark3labs/eventwiz/internal/validate"
)

// FieldSpec binds a field path to its validation rules.
type FieldSpec struct {
	Path  string
	Label string
	Rules validate.Rules
}

// Step declares which fields and lists gate advancing past it.
type Step struct {
	Index       int
	Title       string
	Description string
	Fields      []FieldSpec

	// Lists names dynamic lists validated with this step.
	Lists []string

	// Skip, when it returns true for the current values, disables the step's
	// checks entirely. Nil means never skipped.
	Skip func(values Values) bool
}

// Skipped reports whether the step's checks are disabled for values.
func (s Step) Skipped(values Values) bool {
	return s.Skip != nil && s.Skip(values)
}

// Registry is the immutable, ordered set of steps of one wizard.
type Registry struct {
	steps []Step
}

// NewRegistry validates that step indexes are unique and contiguous from 0.
// Steps may be given in any order.
func NewRegistry(steps ...Step) (*Registry, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard needs at least one step")
	}
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	seen := make(map[string]int)
	for i, s := range sorted {
		if s.Index != i {
			return nil, fmt.Errorf("step indexes must be contiguous from 0: found %d at position %d", s.Index, i)
		}
		for _, f := range s.Fields {
			if prev, ok := seen[f.Path]; ok {
				return nil, fmt.Errorf("field %q declared in steps %d and %d", f.Path, prev, i)
			}
			seen[f.Path] = i
		}
		sorted[i].Fields = append([]FieldSpec(nil), s.Fields...)
		sorted[i].Lists = append([]string(nil), s.Lists...)
	}
	return &Registry{steps: sorted}, nil
}

// MustRegistry is NewRegistry for static declarations.
func MustRegistry(steps ...Step) *Registry {
	r, err := NewRegistry(steps...)
	if err != nil {
		panic(err)
	}
	return r
}

// Count returns the number of steps.
func (r *Registry) Count() int {
	return len(r.steps)
}

// Step returns the step at index. An out-of-range index is a programming
// error and panics.
func (r *Registry) Step(index int) Step {
	if index < 0 || index >= len(r.steps) {
		panic(fmt.Sprintf("wizard: step index %d out of range [0,%d)", index, len(r.steps)))
	}
	return r.steps[index]
}

// Field finds the declaration of path and the index of the step owning it.
func (r *Registry) Field(path string) (FieldSpec, int, bool) {
	for _, s := range r.steps {
		for _, f := range s.Fields {
			if f.Path == path {
				return f, s.Index, true
			}
		}
	}
	return FieldSpec{}, -1, false
}

// StepOf returns the index of the step owning path, which may be a field path
// or a path inside a list ("batches.2.price"). Returns -1 if unknown.
func (r *Registry) StepOf(path string) int {
	if _, idx, ok := r.Field(path); ok {
		return idx
	}
	for _, s := range r.steps {
		for _, l := range s.Lists {
			if inList(path, l) {
				return s.Index
			}
		}
	}
	return -1
}

func inList(path, list string) bool {
	return path == list || (len(path) > len(list) && path[:len(list)] == list && path[len(list)] == '.')
}
