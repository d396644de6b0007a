// Package wizard implements a validation-gated multi-step form engine.
//
// A Controller owns the state of one wizard session: the current step, the
// field values keyed by dotted path, the known field errors and the
// submission guard. It has no knowledge of rendering; front-ends dispatch
// edits and transitions to it and render its Snapshot.
package wizard

import (
	"sync"
	"sync/atomic"

	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/validate"
)

// Values maps field paths to raw values.
type Values map[string]any

// Get returns the value at path, or nil.
func (v Values) Get(path string) any {
	return v[path]
}

// Bool returns the value at path as a bool; anything but true is false.
func (v Values) Bool(path string) bool {
	b, _ := v[path].(bool)
	return b
}

// List is a dynamic collection validated as part of a step.
type List interface {
	// Validate returns field-path keyed messages; empty when valid.
	Validate() map[string]string
}

// State is a point-in-time copy of a session.
type State struct {
	CurrentStep int
	StepCount   int
	Values      Values
	Errors      map[string]string
	FormError   string
	Submitting  bool
}

// StepResult reports the outcome of Advance.
type StepResult struct {
	From     int
	To       int
	Advanced bool
	// Skipped is true when the step's checks were disabled by its predicate.
	Skipped bool
	// Last is true when Advance was refused because the wizard is on its
	// final step; Submit must be used instead.
	Last bool
	// Errors holds the failing fields of a blocked advance.
	Errors map[string]string
}

// Observer receives controller transitions. Either func may be nil.
type Observer struct {
	OnTransition func(from, to int)
	OnBlocked    func(step int, errs map[string]string)
}

// Controller drives one wizard session. Field and step methods are safe to
// call from multiple goroutines; lists registered with WithList are not
// locked and must be mutated from one goroutine only.
type Controller struct {
	reg *Registry

	mu        sync.RWMutex
	current   int
	values    Values
	errors    map[string]string
	formError string
	lists     map[string]List
	observers []Observer

	submitting atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithValues seeds initial field values.
func WithValues(values Values) Option {
	return func(c *Controller) {
		for k, v := range values {
			c.values[k] = v
		}
	}
}

// WithList registers a dynamic list under name.
func WithList(name string, l List) Option {
	return func(c *Controller) {
		c.lists[name] = l
	}
}

// WithObserver subscribes o to transitions.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// New creates a controller positioned on step 0. Every list named by a step
// must be registered; a missing one is a programming error and panics.
func New(reg *Registry, opts ...Option) *Controller {
	c := &Controller{
		reg:    reg,
		values: make(Values),
		errors: make(map[string]string),
		lists:  make(map[string]List),
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := 0; i < reg.Count(); i++ {
		for _, name := range reg.Step(i).Lists {
			if _, ok := c.lists[name]; !ok {
				panic("wizard: step " + reg.Step(i).Title + " references unregistered list " + name)
			}
		}
	}
	return c
}

// Registry returns the step declarations.
func (c *Controller) Registry() *Registry {
	return c.reg
}

// List returns the dynamic list registered under name.
func (c *Controller) List(name string) (List, bool) {
	l, ok := c.lists[name]
	return l, ok
}

// Current returns the current step index.
func (c *Controller) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// IsLast reports whether the current step is the final one.
func (c *Controller) IsLast() bool {
	return c.Current() == c.reg.Count()-1
}

// Set stores value at path. It does not validate; see Touch.
func (c *Controller) Set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[path] = value
}

// Value returns the value at path.
func (c *Controller) Value(path string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[path]
}

// Values returns a copy of all field values.
func (c *Controller) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyValues()
}

// Touch validates a single declared field, recording or clearing its error.
// It mirrors on-blur validation. Unknown paths validate as true.
func (c *Controller) Touch(path string) validate.Result {
	spec, _, ok := c.reg.Field(path)
	if !ok {
		return validate.Result{Valid: true}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	res := validate.ValidateWith(path, c.values[path], spec.Rules, c.lookup)
	if res.Valid {
		delete(c.errors, path)
	} else {
		c.errors[path] = res.Message
	}
	return res
}

// Advance validates the current step and moves forward when it passes.
func (c *Controller) Advance() StepResult {
	c.mu.Lock()
	from := c.current
	if from >= c.reg.Count()-1 {
		c.mu.Unlock()
		return StepResult{From: from, To: from, Last: true}
	}
	step := c.reg.Step(from)
	errs, skipped := c.validateStepLocked(step)
	if len(errs) > 0 {
		for path, msg := range errs {
			c.errors[path] = msg
		}
		c.mu.Unlock()
		logger.Debug("Advance blocked on step %d: %d field error(s)", from, len(errs))
		c.notifyBlocked(from, errs)
		return StepResult{From: from, To: from, Errors: errs}
	}
	c.clearStepErrorsLocked(step)
	c.current = from + 1
	c.mu.Unlock()

	logger.Debug("Advanced from step %d to %d (skipped=%v)", from, from+1, skipped)
	c.notifyTransition(from, from+1)
	return StepResult{From: from, To: from + 1, Advanced: true, Skipped: skipped}
}

// Retreat moves back one step without validating. It never changes values or
// errors. Returns false on the first step.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	from := c.current
	if from == 0 {
		c.mu.Unlock()
		return false
	}
	c.current = from - 1
	c.mu.Unlock()

	logger.Debug("Retreated from step %d to %d", from, from-1)
	c.notifyTransition(from, from-1)
	return true
}

// GoTo jumps to index. It is meant for landing on a failing step after a
// rejected submission; an out-of-range index panics.
func (c *Controller) GoTo(index int) {
	_ = c.reg.Step(index)
	c.mu.Lock()
	from := c.current
	c.current = index
	c.mu.Unlock()
	if from != index {
		c.notifyTransition(from, index)
	}
}

// ValidateStep runs the checks of one step without recording errors.
func (c *Controller) ValidateStep(index int) (errs map[string]string, skipped bool) {
	step := c.reg.Step(index)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validateStepLocked(step)
}

// ValidateAll runs every non-skipped step's checks and records the failures.
// It returns the lowest failing step index (or -1) and all failing fields.
func (c *Controller) ValidateAll() (int, map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	first := -1
	all := make(map[string]string)
	for i := 0; i < c.reg.Count(); i++ {
		errs, _ := c.validateStepLocked(c.reg.Step(i))
		if len(errs) > 0 && first < 0 {
			first = i
		}
		for path, msg := range errs {
			all[path] = msg
			c.errors[path] = msg
		}
	}
	return first, all
}

// Errors returns a copy of the known field errors.
func (c *Controller) Errors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyErrors(c.errors)
}

// Error returns the known error for path, or "".
func (c *Controller) Error(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errors[path]
}

// SetErrors records errors reported from outside the engine, such as a
// server-side rejection.
func (c *Controller) SetErrors(errs map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, msg := range errs {
		c.errors[path] = msg
	}
}

// ClearError forgets the error recorded for path.
func (c *Controller) ClearError(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.errors, path)
}

// FormError returns the whole-form error banner, if any.
func (c *Controller) FormError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.formError
}

// SetFormError sets the whole-form error banner. Empty clears it.
func (c *Controller) SetFormError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formError = msg
}

// BeginSubmit claims the submission guard. It returns false when a
// submission is already in flight.
func (c *Controller) BeginSubmit() bool {
	return c.submitting.CompareAndSwap(false, true)
}

// EndSubmit releases the submission guard.
func (c *Controller) EndSubmit() {
	c.submitting.Store(false)
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	return c.submitting.Load()
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		CurrentStep: c.current,
		StepCount:   c.reg.Count(),
		Values:      c.copyValues(),
		Errors:      copyErrors(c.errors),
		FormError:   c.formError,
		Submitting:  c.submitting.Load(),
	}
}

func (c *Controller) validateStepLocked(step Step) (map[string]string, bool) {
	if step.Skipped(c.copyValues()) {
		return nil, true
	}
	errs := make(map[string]string)
	for _, f := range step.Fields {
		res := validate.ValidateWith(f.Path, c.values[f.Path], f.Rules, c.lookup)
		if !res.Valid {
			errs[f.Path] = res.Message
		}
	}
	for _, name := range step.Lists {
		for path, msg := range c.lists[name].Validate() {
			errs[path] = msg
		}
	}
	return errs, false
}

func (c *Controller) clearStepErrorsLocked(step Step) {
	for _, f := range step.Fields {
		delete(c.errors, f.Path)
	}
	for _, name := range step.Lists {
		for path := range c.errors {
			if inList(path, name) {
				delete(c.errors, path)
			}
		}
	}
}

// lookup must be called with mu held.
func (c *Controller) lookup(path string) any {
	return c.values[path]
}

func (c *Controller) copyValues() Values {
	out := make(Values, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func (c *Controller) notifyTransition(from, to int) {
	for _, o := range c.observers {
		if o.OnTransition != nil {
			o.OnTransition(from, to)
		}
	}
}

func (c *Controller) notifyBlocked(step int, errs map[string]string) {
	for _, o := range c.observers {
		if o.OnBlocked != nil {
			o.OnBlocked(step, copyErrors(errs))
		}
	}
}
