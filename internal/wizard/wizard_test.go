package wizard

import (
	"sync"
	"testing"

	"github.com/mark3labs/eventwiz/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeList is a List whose errors are set by the test.
type fakeList struct {
	errs map[string]string
}

func (f *fakeList) Validate() map[string]string {
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func required(path string) FieldSpec {
	return FieldSpec{Path: path, Rules: validate.Rules{Required: true, Kind: validate.KindText}}
}

// newTestController builds a four step wizard where step 2 owns the "items"
// list and is skipped while "free" is true.
func newTestController(t *testing.T, list *fakeList, opts ...Option) *Controller {
	t.Helper()
	reg, err := NewRegistry(
		Step{Index: 0, Title: "Basics", Fields: []FieldSpec{required("name"), required("owner.id")}},
		Step{Index: 1, Title: "Dates", Fields: []FieldSpec{
			{Path: "start", Rules: validate.Rules{Required: true, Kind: validate.KindDate}},
			{Path: "end", Rules: validate.Rules{Required: true, Kind: validate.KindDate, NotBefore: "start"}},
		}},
		Step{Index: 2, Title: "Items", Lists: []string{"items"}, Skip: func(v Values) bool { return v.Bool("free") }},
		Step{Index: 3, Title: "Options"},
	)
	require.NoError(t, err)
	return New(reg, append([]Option{WithList("items", list)}, opts...)...)
}

func fillValid(c *Controller) {
	c.Set("name", "Retiro")
	c.Set("owner.id", "org-1")
	c.Set("start", "2025-01-01")
	c.Set("end", "2025-01-02")
}

func TestNewRegistry(t *testing.T) {
	t.Run("sorts out of order steps", func(t *testing.T) {
		reg, err := NewRegistry(Step{Index: 1, Title: "b"}, Step{Index: 0, Title: "a"})
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Count())
		assert.Equal(t, "a", reg.Step(0).Title)
	})

	t.Run("rejects gaps", func(t *testing.T) {
		_, err := NewRegistry(Step{Index: 0}, Step{Index: 2})
		require.Error(t, err)
	})

	t.Run("rejects duplicate indexes", func(t *testing.T) {
		_, err := NewRegistry(Step{Index: 0}, Step{Index: 0})
		require.Error(t, err)
	})

	t.Run("rejects duplicate field paths", func(t *testing.T) {
		_, err := NewRegistry(
			Step{Index: 0, Fields: []FieldSpec{required("name")}},
			Step{Index: 1, Fields: []FieldSpec{required("name")}},
		)
		require.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewRegistry()
		require.Error(t, err)
	})

	t.Run("out of range step panics", func(t *testing.T) {
		reg := MustRegistry(Step{Index: 0})
		assert.Panics(t, func() { reg.Step(1) })
		assert.Panics(t, func() { reg.Step(-1) })
	})
}

func TestRegistry_StepOf(t *testing.T) {
	c := newTestController(t, &fakeList{})
	reg := c.Registry()

	assert.Equal(t, 0, reg.StepOf("owner.id"))
	assert.Equal(t, 1, reg.StepOf("end"))
	assert.Equal(t, 2, reg.StepOf("items"))
	assert.Equal(t, 2, reg.StepOf("items.3.price"))
	assert.Equal(t, -1, reg.StepOf("itemsx.0.price"))
	assert.Equal(t, -1, reg.StepOf("nope"))
}

func TestNew_PanicsOnUnregisteredList(t *testing.T) {
	reg := MustRegistry(Step{Index: 0, Lists: []string{"items"}})
	assert.Panics(t, func() { New(reg) })
}

func TestAdvance_BlocksOnInvalidStep(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.Set("name", "Retiro")

	res := c.Advance()

	assert.False(t, res.Advanced)
	assert.Equal(t, 0, res.To)
	assert.Equal(t, map[string]string{"owner.id": "this field is required"}, res.Errors)
	assert.Equal(t, 0, c.Current())
	assert.Equal(t, "this field is required", c.Error("owner.id"))
}

func TestAdvance_ValidatesCurrentStepOnly(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.Set("name", "Retiro")
	c.Set("owner.id", "org-1")

	// Step 1 fields are empty but only step 0 is checked.
	res := c.Advance()

	assert.True(t, res.Advanced)
	assert.Equal(t, 1, c.Current())
	assert.Empty(t, c.Errors())
}

func TestAdvance_ClearsOnlyOwnStepErrors(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.SetErrors(map[string]string{"name": "stale", "start": "from later step"})
	c.Set("name", "Retiro")
	c.Set("owner.id", "org-1")

	require.True(t, c.Advance().Advanced)

	assert.Equal(t, map[string]string{"start": "from later step"}, c.Errors())
}

func TestAdvance_CrossFieldDate(t *testing.T) {
	c := newTestController(t, &fakeList{})
	fillValid(c)
	c.Set("end", "2024-12-31")
	require.True(t, c.Advance().Advanced)

	res := c.Advance()

	assert.False(t, res.Advanced)
	assert.Equal(t, "must not be before start", res.Errors["end"])
	assert.Equal(t, 1, c.Current())
}

func TestAdvance_ListErrorsBlock(t *testing.T) {
	list := &fakeList{errs: map[string]string{"items.0.price": "must be a number"}}
	c := newTestController(t, list)
	fillValid(c)
	c.GoTo(2)

	res := c.Advance()
	assert.False(t, res.Advanced)
	assert.Equal(t, "must be a number", c.Error("items.0.price"))

	list.errs = nil
	res = c.Advance()
	assert.True(t, res.Advanced)
	assert.Empty(t, c.Error("items.0.price"))
}

func TestAdvance_SkippedStepIgnoresListValidity(t *testing.T) {
	list := &fakeList{errs: map[string]string{"items": "add at least one item"}}
	c := newTestController(t, list, WithValues(Values{"free": true}))
	c.GoTo(2)

	res := c.Advance()

	assert.True(t, res.Advanced)
	assert.True(t, res.Skipped)
	assert.Equal(t, 3, c.Current())
}

func TestAdvance_RefusedOnLastStep(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.GoTo(3)

	res := c.Advance()

	assert.True(t, res.Last)
	assert.False(t, res.Advanced)
	assert.Equal(t, 3, c.Current())
}

func TestRetreat_NeverMutatesValuesOrErrors(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.Set("name", "")
	c.SetErrors(map[string]string{"name": "this field is required"})
	c.GoTo(2)

	values, errs := c.Values(), c.Errors()

	assert.True(t, c.Retreat())
	assert.True(t, c.Retreat())
	assert.False(t, c.Retreat())

	assert.Equal(t, 0, c.Current())
	assert.Equal(t, values, c.Values())
	assert.Equal(t, errs, c.Errors())
}

func TestValidateAll_LowestFailingStepWins(t *testing.T) {
	list := &fakeList{errs: map[string]string{"items": "add at least one item"}}
	c := newTestController(t, list)
	fillValid(c)
	c.Set("name", "")
	c.GoTo(3)

	first, errs := c.ValidateAll()

	assert.Equal(t, 0, first)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "items")
	assert.Equal(t, "this field is required", c.Error("name"))
}

func TestValidateAll_IgnoresSkippedSteps(t *testing.T) {
	list := &fakeList{errs: map[string]string{"items": "add at least one item"}}
	c := newTestController(t, list)
	fillValid(c)
	c.Set("free", true)

	first, errs := c.ValidateAll()

	assert.Equal(t, -1, first)
	assert.Empty(t, errs)
}

func TestTouch(t *testing.T) {
	c := newTestController(t, &fakeList{})

	res := c.Touch("name")
	assert.False(t, res.Valid)
	assert.Equal(t, "this field is required", c.Error("name"))

	c.Set("name", "Retiro")
	assert.True(t, c.Touch("name").Valid)
	assert.Empty(t, c.Error("name"))

	assert.True(t, c.Touch("undeclared").Valid)
}

func TestValidateStep_DoesNotRecord(t *testing.T) {
	c := newTestController(t, &fakeList{})

	errs, skipped := c.ValidateStep(0)

	assert.False(t, skipped)
	assert.Len(t, errs, 2)
	assert.Empty(t, c.Errors())
}

func TestSubmitGuard(t *testing.T) {
	c := newTestController(t, &fakeList{})

	require.True(t, c.BeginSubmit())
	assert.False(t, c.BeginSubmit())
	assert.True(t, c.Snapshot().Submitting)

	c.EndSubmit()
	assert.False(t, c.Submitting())
	assert.True(t, c.BeginSubmit())
}

func TestSubmitGuard_ConcurrentClaims(t *testing.T) {
	c := newTestController(t, &fakeList{})

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.BeginSubmit() {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claims)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := newTestController(t, &fakeList{})
	c.Set("name", "Retiro")
	c.SetFormError("boom")

	snap := c.Snapshot()
	snap.Values["name"] = "changed"
	snap.Errors["name"] = "changed"

	assert.Equal(t, "Retiro", c.Value("name"))
	assert.Empty(t, c.Error("name"))
	assert.Equal(t, "boom", snap.FormError)
	assert.Equal(t, 4, snap.StepCount)
}

func TestObserver(t *testing.T) {
	var transitions [][2]int
	var blocked []int
	c := newTestController(t, &fakeList{}, WithObserver(Observer{
		OnTransition: func(from, to int) { transitions = append(transitions, [2]int{from, to}) },
		OnBlocked:    func(step int, _ map[string]string) { blocked = append(blocked, step) },
	}))

	c.Advance()
	fillValid(c)
	c.Advance()
	c.Retreat()
	c.GoTo(0)

	assert.Equal(t, []int{0}, blocked)
	assert.Equal(t, [][2]int{{0, 1}, {1, 0}}, transitions)
}
