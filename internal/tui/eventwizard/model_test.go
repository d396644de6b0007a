package eventwizard

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/eventwiz/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var organizers = []api.Organizer{
	{ID: "org-1", Name: "Jovens"},
	{ID: "org-2", Name: "Louvor"},
}

type fakeEndpoint struct {
	calls int
	err   error
}

func (f *fakeEndpoint) CreateEvent(_ context.Context, in *api.EventInput) (*api.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.Event{ID: "evt-new", EventInput: *in}, nil
}

func (f *fakeEndpoint) UpdateEvent(_ context.Context, id string, in *api.EventInput) (*api.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.Event{ID: id, EventInput: *in}, nil
}

func newTestModel(t *testing.T) (*Model, *fakeEndpoint) {
	t.Helper()
	wiz := event.New(organizers)
	ep := &fakeEndpoint{}
	return New(wiz, submit.New(wiz, ep)), ep
}

func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Text: key})
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func fillBasics(c *wizard.Controller) {
	c.Set(event.Name, "Retiro de Carnaval")
	c.Set(event.Description, "Quatro dias de retiro.")
	c.Set(event.Location, "Sítio Betel")
	c.Set(event.Type, "RETREAT")
	c.Set(event.OrganizerID, "org-1")
}

func fillDates(c *wizard.Controller) {
	c.Set(event.StartDatetime, "2025-03-01 09:00")
	c.Set(event.EndDatetime, "2025-03-04 18:00")
	c.Set(event.RegistrationStartDate, "2025-01-01")
	c.Set(event.RegistrationDeadline, "2025-02-20")
	c.Set(event.Capacity, "120")
}

// toLastStep fills a free event and walks to the final step.
func toLastStep(t *testing.T, m *Model) {
	t.Helper()
	fillBasics(m.ctrl)
	fillDates(m.ctrl)
	press(m, "ctrl+n")
	press(m, "ctrl+n")
	press(m, "ctrl+n")
	require.True(t, m.ctrl.IsLast())
}

func TestNew_FocusesFirstField(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, event.StepBasics, m.ctrl.Current())
	assert.Equal(t, PaneSummary, m.Pane())
	require.Len(t, m.items, 5)
	assert.Equal(t, 0, m.focus)

	kinds := make([]itemKind, 0, len(m.items))
	for _, it := range m.items {
		kinds = append(kinds, it.kind)
	}
	assert.Equal(t, []itemKind{itemInput, itemInput, itemInput, itemChoice, itemChoice}, kinds)
}

func TestTyping_StoresValue(t *testing.T) {
	m, _ := newTestModel(t)

	typeText(m, "Retiro")

	assert.Equal(t, "Retiro", m.ctrl.Value(event.Name))
	assert.Empty(t, m.ctrl.Error(event.Name), "untouched fields are not validated while typing")
}

func TestTab_ValidatesFieldLeft(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "tab")

	assert.Equal(t, 1, m.focus)
	assert.NotEmpty(t, m.ctrl.Error(event.Name))

	press(m, "shift+tab")
	assert.Equal(t, 0, m.focus)
}

func TestTab_Wraps(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "shift+tab")

	assert.Equal(t, len(m.items)-1, m.focus)
}

func TestNext_BlockedFocusesFirstError(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)
	m.ctrl.Set(event.Location, "")

	press(m, "ctrl+n")

	assert.Equal(t, event.StepBasics, m.ctrl.Current())
	assert.NotEmpty(t, m.ctrl.Error(event.Location))
	assert.Equal(t, event.Location, m.items[m.focus].path)
	require.NotNil(t, m.toast)
	assert.Equal(t, toastError, m.toast.kind)
	assert.Contains(t, m.toast.text, "fix 1 field(s)")
}

func TestNext_Advances(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)

	press(m, "ctrl+n")

	assert.Equal(t, event.StepDates, m.ctrl.Current())
	assert.Len(t, m.items, 6)
	assert.Equal(t, 0, m.focus)
	assert.Empty(t, m.ctrl.Errors())
}

func TestEnter_OnLastItemAdvances(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)

	press(m, "enter")
	assert.Equal(t, 1, m.focus, "enter moves to the next field")

	m.focus = len(m.items) - 1
	press(m, "enter")
	assert.Equal(t, event.StepDates, m.ctrl.Current())
}

func TestEsc_BacksThenCancels(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)
	press(m, "ctrl+n")
	require.Equal(t, event.StepDates, m.ctrl.Current())

	press(m, "esc")
	assert.Equal(t, event.StepBasics, m.ctrl.Current())
	assert.Equal(t, "Retiro de Carnaval", m.ctrl.Value(event.Name), "going back keeps values")
	assert.False(t, m.cancelled)

	cmd := press(m, "esc")
	require.NotNil(t, cmd)
	assert.True(t, m.cancelled)
	assert.True(t, m.quitting)
	assert.False(t, m.View().AltScreen)
}

func TestChoice_Cycles(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "tab")
	press(m, "tab")
	press(m, "tab")
	require.Equal(t, event.Type, m.items[m.focus].path)

	press(m, "right")
	assert.Equal(t, api.EventTypes[0], m.ctrl.Value(event.Type))
	press(m, "right")
	assert.Equal(t, api.EventTypes[1], m.ctrl.Value(event.Type))
	press(m, "left")
	press(m, "left")
	assert.Equal(t, api.EventTypes[len(api.EventTypes)-1], m.ctrl.Value(event.Type))

	press(m, "tab")
	require.Equal(t, event.OrganizerID, m.items[m.focus].path)
	press(m, "left")
	assert.Equal(t, "org-2", m.ctrl.Value(event.OrganizerID))
	assert.Contains(t, ansi.Strip(m.renderBody()), "Louvor")
}

func TestBatches_FreeToggleAndRows(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)
	fillDates(m.ctrl)
	press(m, "ctrl+n")
	press(m, "ctrl+n")
	require.Equal(t, event.StepBatches, m.ctrl.Current())

	// Free by default: only the toggle is shown.
	require.Len(t, m.items, 1)
	assert.Equal(t, itemToggle, m.items[0].kind)

	press(m, "enter")
	assert.False(t, m.ctrl.Values().Bool(event.IsFree))
	require.Len(t, m.items, 2)
	assert.Equal(t, itemAddBatch, m.items[1].kind)

	press(m, "tab")
	press(m, "enter")
	require.Equal(t, 1, m.wiz.Batches().Len())
	assert.Len(t, m.items, 7)
	focused := m.items[m.focus]
	require.Equal(t, itemBatchCell, focused.kind)

	typeText(m, "Lote 1")
	r, ok := m.wiz.Batches().Get(focused.batchID)
	require.True(t, ok)
	assert.Equal(t, "Lote 1", r.Name)
	assert.Contains(t, ansi.Strip(m.renderBody()), "Batch 1")

	press(m, "ctrl+d")
	assert.Equal(t, 0, m.wiz.Batches().Len())
	assert.Len(t, m.items, 2)

	press(m, "ctrl+n")
	assert.Equal(t, event.StepBatches, m.ctrl.Current())
	assert.NotEmpty(t, m.ctrl.Error(event.Batches))
	assert.Contains(t, ansi.Strip(m.renderBody()), "add at least one batch")
}

func TestBatches_RemoveClearsRowErrors(t *testing.T) {
	m, _ := newTestModel(t)
	fillBasics(m.ctrl)
	fillDates(m.ctrl)
	m.ctrl.Set(event.IsFree, false)
	press(m, "ctrl+n")
	press(m, "ctrl+n")
	m.focus = len(m.items) - 1
	press(m, "enter")
	press(m, "ctrl+n")
	require.NotEmpty(t, m.ctrl.Error("batches.0.name"))

	m.focus = 1
	press(m, "ctrl+d")

	assert.Empty(t, m.ctrl.Error("batches.0.name"))
}

func TestSubmit_Success(t *testing.T) {
	m, ep := newTestModel(t)
	toLastStep(t, m)

	cmd := press(m, "ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, m.pending)

	press(m, "tab")
	require.NotNil(t, m.toast)
	assert.Equal(t, "a submission is in progress", m.toast.text)

	_, quit := m.Update(cmd())
	assert.NotNil(t, quit)
	assert.False(t, m.pending)
	assert.True(t, m.quitting)
	assert.False(t, m.cancelled)
	require.NotNil(t, m.Outcome())
	assert.Equal(t, "evt-new", m.Outcome().Event.ID)
	assert.True(t, m.Outcome().Created)
	assert.Equal(t, 1, ep.calls)
}

func TestSubmit_OnlyFromLastStep(t *testing.T) {
	m, ep := newTestModel(t)

	press(m, "ctrl+s")

	assert.False(t, m.pending)
	require.NotNil(t, m.toast)
	assert.Equal(t, "finish the remaining steps first", m.toast.text)
	assert.Zero(t, ep.calls)
}

func TestSubmit_LocalFailureReturnsToStep(t *testing.T) {
	m, ep := newTestModel(t)
	m.ctrl.GoTo(event.StepOptions)
	m.rebuild(false)

	cmd := press(m, "ctrl+s")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, event.StepBasics, m.ctrl.Current())
	assert.Equal(t, event.Name, m.items[m.focus].path)
	require.NotNil(t, m.toast)
	assert.Equal(t, toastError, m.toast.kind)
	assert.Contains(t, m.toast.text, "before saving")
	assert.Nil(t, m.Outcome())
	assert.Zero(t, ep.calls)
}

func TestSubmit_RemoteFailureStaysForRetry(t *testing.T) {
	m, ep := newTestModel(t)
	ep.err = errors.New("dial tcp: connection refused")
	toLastStep(t, m)

	cmd := press(m, "ctrl+s")
	m.Update(cmd())

	assert.True(t, m.ctrl.IsLast())
	assert.False(t, m.quitting)
	require.NotNil(t, m.toast)
	assert.Equal(t, submit.GenericRemoteMessage, m.toast.text)
	assert.Contains(t, ansi.Strip(m.renderBody()), submit.GenericRemoteMessage)

	ep.err = nil
	cmd = press(m, "ctrl+s")
	m.Update(cmd())
	require.NotNil(t, m.Outcome())
	assert.Equal(t, 2, ep.calls)
}

func TestSubmit_ServerRejectionMovesToField(t *testing.T) {
	m, ep := newTestModel(t)
	ep.err = &api.FieldRejection{
		StatusCode: 422,
		Fields:     []api.FieldError{{Field: "name", Message: "name already taken"}},
	}
	toLastStep(t, m)

	cmd := press(m, "ctrl+s")
	m.Update(cmd())

	assert.Equal(t, event.StepBasics, m.ctrl.Current())
	assert.Equal(t, "name already taken", m.ctrl.Error(event.Name))
	assert.Equal(t, event.Name, m.items[m.focus].path)
	require.NotNil(t, m.toast)
	assert.Contains(t, m.toast.text, "rejected 1 field(s)")
}

func TestToast_Expires(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := m.showToast(toastInfo, "hello")
	require.NotNil(t, cmd)
	id := m.toast.id

	m.showToast(toastInfo, "newer")
	m.Update(toastExpiredMsg{id: id})
	require.NotNil(t, m.toast, "a stale expiry leaves the newer toast")
	assert.Equal(t, "newer", m.toast.text)

	m.Update(toastExpiredMsg{id: m.toast.id})
	assert.Nil(t, m.toast)
}

func TestDescriptionEdited(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(descriptionEditedMsg{content: "Quatro dias de retiro.\n"})

	assert.Equal(t, "Quatro dias de retiro.", m.ctrl.Value(event.Description))
	assert.Empty(t, m.ctrl.Error(event.Description))
	require.NotNil(t, m.toast)
	assert.Equal(t, "description updated", m.toast.text)
}

func TestRender(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	header := ansi.Strip(m.renderHeader())
	assert.Contains(t, header, "New event")
	assert.Contains(t, header, "1 Basic information")
	assert.Contains(t, header, "4 Final options")

	body := ansi.Strip(m.renderBody())
	assert.Contains(t, body, "Name, description and who organizes the event")
	assert.Contains(t, body, "Organizer")
	assert.Contains(t, body, "choose with")

	footer := ansi.Strip(m.renderFooter())
	assert.Contains(t, footer, "ctrl+n next step")
	assert.NotContains(t, footer, "ctrl+s")

	view := m.View()
	assert.True(t, view.AltScreen)
}

func TestRender_ErrorsUnderFields(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "ctrl+n")

	body := ansi.Strip(m.renderBody())
	assert.Contains(t, body, "✗ "+m.ctrl.Error(event.Name))
}

func TestRenderHintBar(t *testing.T) {
	assert.Equal(t, "tab next • esc back", ansi.Strip(renderHintBar("tab", "next", "esc", "back")))
	assert.Empty(t, renderHintBar("tab"))
}
