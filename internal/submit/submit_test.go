package submit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEndpoint records calls and answers with a scripted result.
type fakeEndpoint struct {
	calls   atomic.Int32
	lastID  string
	last    *api.EventInput
	err     error
	enter   chan struct{}
	release chan struct{}
}

func (f *fakeEndpoint) respond(id string, in *api.EventInput) (*api.Event, error) {
	f.calls.Add(1)
	f.lastID, f.last = id, in
	if f.enter != nil {
		f.enter <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if id == "" {
		id = "evt-new"
	}
	return &api.Event{ID: id, EventInput: *in}, nil
}

func (f *fakeEndpoint) CreateEvent(_ context.Context, in *api.EventInput) (*api.Event, error) {
	return f.respond("", in)
}

func (f *fakeEndpoint) UpdateEvent(_ context.Context, id string, in *api.EventInput) (*api.Event, error) {
	return f.respond(id, in)
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *recorder) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Kind
	}
	return out
}

var organizers = []api.Organizer{{ID: "org-1", Name: "Jovens"}}

// completeWizard returns a paid event wizard filled in validly and moved to
// the last step.
func completeWizard(t *testing.T) *event.Wizard {
	t.Helper()
	w := event.New(organizers)
	c := w.Controller()
	c.Set(event.Name, "Retiro de Carnaval")
	c.Set(event.Description, "Quatro dias de retiro.")
	c.Set(event.Location, "Sítio Betel")
	c.Set(event.Type, "RETREAT")
	c.Set(event.OrganizerID, "org-1")
	c.Set(event.StartDatetime, "2025-03-01 09:00")
	c.Set(event.EndDatetime, "2025-03-04 18:00")
	c.Set(event.RegistrationStartDate, "2025-01-01")
	c.Set(event.RegistrationDeadline, "2025-02-20")
	c.Set(event.Capacity, "120")
	c.Set(event.IsFree, false)

	e := w.Batches()
	id := e.Add()
	require.NoError(t, e.Update(id, batch.FieldName, "Lote 1"))
	require.NoError(t, e.Update(id, batch.FieldCapacity, "50"))
	require.NoError(t, e.Update(id, batch.FieldPrice, "25.00"))
	require.NoError(t, e.Update(id, batch.FieldStartDate, "2025-01-01"))
	require.NoError(t, e.Update(id, batch.FieldEndDate, "2025-01-31"))

	advanceToLast(t, w)
	return w
}

func advanceToLast(t *testing.T, w *event.Wizard) {
	t.Helper()
	c := w.Controller()
	for !c.IsLast() {
		require.True(t, c.Advance().Advanced, "errors: %v", c.Errors())
	}
}

func TestSubmit_CreatesEvent(t *testing.T) {
	w := completeWizard(t)
	ep := &fakeEndpoint{}
	rec := &recorder{}

	out, err := New(w, ep, WithNotifier(rec)).Submit(context.Background())

	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "evt-new", out.Event.ID)
	assert.Equal(t, int32(1), ep.calls.Load())
	assert.Empty(t, ep.lastID)
	require.Len(t, ep.last.Batches, 1)
	assert.Empty(t, ep.last.Batches[0].ID)
	assert.False(t, w.Controller().Submitting())
	assert.Equal(t, []Kind{KindCreated}, rec.kinds())
}

func TestSubmit_UpdatesLoadedEvent(t *testing.T) {
	w := completeWizard(t)
	in, err := w.Assemble()
	require.NoError(t, err)
	loaded := event.Load(&api.Event{ID: "evt-3", EventInput: *in}, organizers)
	advanceToLast(t, loaded)
	ep := &fakeEndpoint{}

	out, err := New(loaded, ep).Submit(context.Background())

	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, "evt-3", ep.lastID)
}

func TestSubmit_RevalidatesEarlierSteps(t *testing.T) {
	w := completeWizard(t)
	c := w.Controller()
	ep := &fakeEndpoint{}

	require.True(t, c.Retreat())
	require.True(t, c.Retreat())
	require.Equal(t, event.StepDates, c.Current())
	c.Set(event.Name, "")
	require.True(t, c.Advance().Advanced)
	require.True(t, c.Advance().Advanced)
	require.Equal(t, event.StepOptions, c.Current())

	out, err := New(w, ep).Submit(context.Background())

	assert.Nil(t, out)
	var vf *ValidationFailure
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, event.StepBasics, vf.Step)
	assert.Equal(t, map[string]string{event.Name: "this field is required"}, vf.Fields)
	assert.False(t, vf.Server)
	assert.Equal(t, event.StepBasics, c.Current())
	assert.Equal(t, "this field is required", c.Error(event.Name))
	assert.Zero(t, ep.calls.Load())
	assert.False(t, c.Submitting())
}

func TestSubmit_IgnoresSkippedBatches(t *testing.T) {
	w := completeWizard(t)
	id := w.Batches().All()[0].LocalID
	require.NoError(t, w.Batches().Update(id, batch.FieldPrice, "free"))
	w.Controller().Set(event.IsFree, true)
	ep := &fakeEndpoint{}

	_, err := New(w, ep).Submit(context.Background())

	require.NoError(t, err)
	assert.Empty(t, ep.last.Batches)
	assert.True(t, ep.last.IsFree)
}

func TestSubmit_RejectsWhileBusy(t *testing.T) {
	w := completeWizard(t)
	ep := &fakeEndpoint{enter: make(chan struct{}), release: make(chan struct{})}
	s := New(w, ep)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-ep.enter
	assert.True(t, w.Controller().Submitting())

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(ep.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), ep.calls.Load())
	assert.False(t, w.Controller().Submitting())
}

func TestSubmit_OnlyFromLastStep(t *testing.T) {
	w := completeWizard(t)
	c := w.Controller()
	ep := &fakeEndpoint{}
	rec := &recorder{}
	s := New(w, ep, WithNotifier(rec))

	c.GoTo(event.StepBasics)
	_, err := s.Submit(context.Background())

	require.ErrorIs(t, err, ErrNotLastStep)
	assert.Zero(t, ep.calls.Load())
	assert.Empty(t, rec.kinds())
	assert.Equal(t, event.StepBasics, c.Current())
	assert.False(t, c.Submitting())

	advanceToLast(t, w)
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
}

func TestSubmitClaimed_ReleasesGuard(t *testing.T) {
	w := completeWizard(t)
	c := w.Controller()
	ep := &fakeEndpoint{}
	s := New(w, ep)

	require.True(t, c.BeginSubmit())
	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	out, err := s.SubmitClaimed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "evt-new", out.Event.ID)
	assert.Equal(t, int32(1), ep.calls.Load())
	assert.False(t, c.Submitting())
}

func TestSubmit_RemoteErrorLeavesValuesIntact(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", errors.New("dial tcp: connection refused"), GenericRemoteMessage},
		{"status without message", &api.StatusError{StatusCode: 500}, GenericRemoteMessage},
		{"status with message", &api.StatusError{StatusCode: 409, Message: "event name already used"}, "event name already used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := completeWizard(t)
			c := w.Controller()
			before := c.Values()
			batchesBefore := w.Batches().All()
			rec := &recorder{}

			_, err := New(w, &fakeEndpoint{err: tt.err}, WithNotifier(rec)).Submit(context.Background())

			var re *RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.want, re.Message)
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, c.Submitting())
			assert.Equal(t, before, c.Values())
			assert.Equal(t, batchesBefore, w.Batches().All())
			assert.Equal(t, tt.want, c.FormError())
			assert.Equal(t, event.StepOptions, c.Current())
			assert.Equal(t, []Kind{KindFailed}, rec.kinds())
		})
	}
}

func TestSubmit_ServerFieldErrorsMapToPaths(t *testing.T) {
	w := completeWizard(t)
	c := w.Controller()
	ep := &fakeEndpoint{err: &api.FieldRejection{
		StatusCode: 422,
		Message:    "invalid event",
		Fields: []api.FieldError{
			{Field: "batches[0].price", Message: "price above limit"},
			{Field: "organizerId", Message: "organizer is inactive"},
		},
	}}

	_, err := New(w, ep).Submit(context.Background())

	var vf *ValidationFailure
	require.ErrorAs(t, err, &vf)
	assert.True(t, vf.Server)
	assert.Equal(t, event.StepBasics, vf.Step)
	assert.Equal(t, map[string]string{
		"batches.0.price": "price above limit",
		event.OrganizerID: "organizer is inactive",
	}, vf.Fields)
	assert.Empty(t, vf.Form)
	assert.Equal(t, "price above limit", c.Error("batches.0.price"))
	assert.Equal(t, event.StepBasics, c.Current())
	assert.False(t, c.Submitting())
}

func TestSubmit_UnmappedRejectionBecomesBanner(t *testing.T) {
	tests := []struct {
		name   string
		rej    *api.FieldRejection
		banner string
	}{
		{
			name:   "message only",
			rej:    &api.FieldRejection{StatusCode: 422, Message: "registration window overlaps another event"},
			banner: "registration window overlaps another event",
		},
		{
			name:   "unknown field",
			rej:    &api.FieldRejection{StatusCode: 422, Fields: []api.FieldError{{Field: "slug", Message: "already taken"}}},
			banner: "slug: already taken",
		},
		{
			name:   "nothing usable",
			rej:    &api.FieldRejection{StatusCode: 422},
			banner: GenericRejectionMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := completeWizard(t)
			c := w.Controller()

			_, err := New(w, &fakeEndpoint{err: tt.rej}).Submit(context.Background())

			var vf *ValidationFailure
			require.ErrorAs(t, err, &vf)
			assert.Equal(t, -1, vf.Step)
			assert.Empty(t, vf.Fields)
			assert.Equal(t, tt.banner, vf.Form)
			assert.Equal(t, tt.banner, c.FormError())
			assert.Equal(t, event.StepOptions, c.Current())
		})
	}
}

func TestSubmit_ClearsBannerOnRetry(t *testing.T) {
	w := completeWizard(t)
	ep := &fakeEndpoint{err: errors.New("timeout")}
	s := New(w, ep)

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	require.NotEmpty(t, w.Controller().FormError())

	ep.err = nil
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Controller().FormError())
}

func TestSubmit_NotifierErrorsDoNotFailSubmission(t *testing.T) {
	w := completeWizard(t)
	failing := NotifierFunc(func(context.Context, Notification) error { return errors.New("bus down") })

	_, err := New(w, &fakeEndpoint{}, WithNotifier(failing)).Submit(context.Background())

	require.NoError(t, err)
}
