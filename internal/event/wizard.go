package event

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/validate"
	"github.com/mark3labs/eventwiz/internal/wizard"
)

// Wizard is one event form session: the step controller plus the batch
// editor it validates, and the event being edited if any.
type Wizard struct {
	ctrl       *wizard.Controller
	batches    *batch.Editor
	organizers []api.Organizer

	eventID  string
	original *api.EventInput
}

// New starts a create flow with default values.
func New(organizers []api.Organizer, opts ...wizard.Option) *Wizard {
	return build(organizers, Defaults(), "", nil, nil, opts)
}

// Load starts an edit flow seeded from an existing event.
func Load(ev *api.Event, organizers []api.Organizer, opts ...wizard.Option) *Wizard {
	values := wizard.Values{
		Name:                  ev.Name,
		Description:           ev.Description,
		Location:              ev.Location,
		Type:                  ev.Type,
		OrganizerID:           firstNonEmpty(ev.Organizer.ID, ev.OrganizerID),
		StartDatetime:         ev.StartDatetime,
		EndDatetime:           ev.EndDatetime,
		RegistrationStartDate: ev.RegistrationStartDate,
		RegistrationDeadline:  ev.RegistrationDeadline,
		Capacity:              ev.Capacity,
		IsFree:                ev.IsFree,
		HasTransport:          ev.HasTransport,
		TermIsRequired:        ev.TermIsRequired,
		IsPublished:           ev.IsPublished,
	}
	if ev.FinalDatePayment != nil {
		values[FinalDatePayment] = *ev.FinalDatePayment
	}

	records := make([]batch.Record, 0, len(ev.Batches))
	for _, b := range ev.Batches {
		records = append(records, batch.Record{
			ServerID:  b.ID,
			Name:      b.Name,
			Capacity:  b.Capacity,
			Price:     b.Price,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
		})
	}

	original := ev.EventInput
	return build(organizers, values, ev.ID, &original, records, opts)
}

func build(organizers []api.Organizer, values wizard.Values, id string, original *api.EventInput, records []batch.Record, opts []wizard.Option) *Wizard {
	w := &Wizard{
		batches:    batch.NewEditor(Batches),
		organizers: append([]api.Organizer(nil), organizers...),
		eventID:    id,
		original:   original,
	}
	if records != nil {
		w.batches.Seed(records)
	}
	all := append([]wizard.Option{
		wizard.WithValues(values),
		wizard.WithList(Batches, w.batches),
	}, opts...)
	w.ctrl = wizard.New(Steps(organizers), all...)
	return w
}

// Controller returns the step controller.
func (w *Wizard) Controller() *wizard.Controller {
	return w.ctrl
}

// Batches returns the batch editor.
func (w *Wizard) Batches() *batch.Editor {
	return w.batches
}

// Organizers returns the organizer lookup the wizard was built with.
func (w *Wizard) Organizers() []api.Organizer {
	return w.organizers
}

// EventID returns the id of the event being edited, or "" when creating.
func (w *Wizard) EventID() string {
	return w.eventID
}

// Original returns the payload the edit flow was seeded from, or nil.
func (w *Wizard) Original() *api.EventInput {
	return w.original
}

// OrganizerName returns the display name of the organizer with id.
func (w *Wizard) OrganizerName(id string) string {
	for _, o := range w.organizers {
		if o.ID == id {
			return o.Name
		}
	}
	return ""
}

// Assemble converts the current values into the service payload. It parses
// with the same rules the validator uses and fails on the first value that
// does not parse; callers validate first.
func (w *Wizard) Assemble() (*api.EventInput, error) {
	values := w.ctrl.Values()
	p := &parser{values: values}

	orgID := p.text(OrganizerID)
	in := &api.EventInput{
		Name:                  p.text(Name),
		Description:           p.text(Description),
		Location:              p.text(Location),
		Type:                  p.text(Type),
		Organizer:             api.OrganizerRef{ID: orgID, Name: w.OrganizerName(orgID)},
		OrganizerID:           orgID,
		StartDatetime:         p.date(StartDatetime),
		EndDatetime:           p.date(EndDatetime),
		RegistrationStartDate: p.date(RegistrationStartDate),
		RegistrationDeadline:  p.date(RegistrationDeadline),
		Capacity:              p.int(Capacity),
		FinalDatePayment:      p.optionalDate(FinalDatePayment),
		IsFree:                values.Bool(IsFree),
		HasTransport:          values.Bool(HasTransport),
		TermIsRequired:        values.Bool(TermIsRequired),
		IsPublished:           values.Bool(IsPublished),
		Batches:               []api.BatchInput{},
	}

	// A free event keeps its batches in the editor but never sends them.
	if !in.IsFree {
		for i, r := range w.batches.All() {
			bp := &parser{values: wizard.Values{
				batch.FieldCapacity:  r.Capacity,
				batch.FieldPrice:     r.Price,
				batch.FieldStartDate: r.StartDate,
				batch.FieldEndDate:   r.EndDate,
			}, prefix: w.batches.Path(i, "")}
			in.Batches = append(in.Batches, api.BatchInput{
				ID:        r.ServerID,
				Name:      strings.TrimSpace(r.Name),
				Capacity:  bp.int(batch.FieldCapacity),
				Price:     bp.decimal(batch.FieldPrice),
				StartDate: bp.date(batch.FieldStartDate),
				EndDate:   bp.date(batch.FieldEndDate),
			})
			if bp.err != nil {
				return nil, bp.err
			}
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return in, nil
}

// parser reads typed values and keeps the first parse error.
type parser struct {
	values wizard.Values
	prefix string
	err    error
}

func (p *parser) parse(path string, kind validate.Kind) any {
	v, err := validate.Parse(kind, p.values.Get(path))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("assemble %s%s: %w", p.prefix, path, err)
	}
	return v
}

func (p *parser) text(path string) string {
	if validate.IsAbsent(p.values.Get(path)) {
		return ""
	}
	s, _ := p.parse(path, validate.KindText).(string)
	return strings.TrimSpace(s)
}

func (p *parser) int(path string) int {
	n, _ := p.parse(path, validate.KindInt).(int)
	return n
}

func (p *parser) decimal(path string) float64 {
	f, _ := p.parse(path, validate.KindDecimal).(float64)
	return f
}

func (p *parser) date(path string) time.Time {
	t, _ := p.parse(path, validate.KindDate).(time.Time)
	return t
}

func (p *parser) optionalDate(path string) *time.Time {
	if validate.IsAbsent(p.values.Get(path)) {
		return nil
	}
	t := p.date(path)
	return &t
}

var indexed = regexp.MustCompile(`\[(\d+)\]`)

// TranslateField maps a field name reported by the events service onto a
// wizard path: "organizerId" becomes "organizer.id" and
// "batches[2].price" becomes "batches.2.price".
func TranslateField(server string) string {
	server = strings.TrimSpace(server)
	switch server {
	case "organizerId", "organizer":
		return OrganizerID
	}
	return indexed.ReplaceAllString(server, ".$1")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FieldPath maps a server field name onto a wizard path.
func (w *Wizard) FieldPath(server string) string {
	return TranslateField(server)
}
