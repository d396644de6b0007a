// Package event declares the event creation wizard: its steps, field rules,
// defaults and the mapping between wizard values and the events service
// payload.
package event

import (
	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/eventwiz/internal/validate"
	"github.com/mark3labs/eventwiz/internal/wizard"
)

// Field paths.
const (
	Name        = "name"
	Description = "description"
	Location    = "location"
	Type        = "type"
	OrganizerID = "organizer.id"

	StartDatetime         = "startDatetime"
	EndDatetime           = "endDatetime"
	RegistrationStartDate = "registrationStartDate"
	RegistrationDeadline  = "registrationDeadline"
	Capacity              = "capacity"
	FinalDatePayment      = "finalDatePayment"

	IsFree  = "isFree"
	Batches = "batches"

	HasTransport   = "hasTransport"
	TermIsRequired = "termIsRequired"
	IsPublished    = "isPublished"
)

// Step indexes.
const (
	StepBasics = iota
	StepDates
	StepBatches
	StepOptions
)

// MaxDescription is the description length limit in runes.
const MaxDescription = 500

// Steps builds the step registry. Organizer ids restrict the organizer
// field; with none loaded any non-empty id is accepted.
func Steps(organizers []api.Organizer) *wizard.Registry {
	ids := make([]string, 0, len(organizers))
	for _, o := range organizers {
		ids = append(ids, o.ID)
	}

	return wizard.MustRegistry(
		wizard.Step{
			Index:       StepBasics,
			Title:       "Basic information",
			Description: "Name, description and who organizes the event",
			Fields: []wizard.FieldSpec{
				{Path: Name, Label: "Name", Rules: validate.Rules{Required: true, Kind: validate.KindText, MinLen: 3, MaxLen: 120}},
				{Path: Description, Label: "Description", Rules: validate.Rules{Required: true, Kind: validate.KindText, MaxLen: MaxDescription}},
				{Path: Location, Label: "Location", Rules: validate.Rules{Required: true, Kind: validate.KindText}},
				{Path: Type, Label: "Type", Rules: validate.Rules{Required: true, Kind: validate.KindText, OneOf: api.EventTypes}},
				{Path: OrganizerID, Label: "Organizer", Rules: validate.Rules{Required: true, Kind: validate.KindText, OneOf: ids}},
			},
		},
		wizard.Step{
			Index:       StepDates,
			Title:       "Dates and capacity",
			Description: "When the event happens and when registration is open",
			Fields: []wizard.FieldSpec{
				{Path: StartDatetime, Label: "Starts", Rules: validate.Rules{Required: true, Kind: validate.KindDate}},
				{Path: EndDatetime, Label: "Ends", Rules: validate.Rules{Required: true, Kind: validate.KindDate, NotBefore: StartDatetime}},
				{Path: RegistrationStartDate, Label: "Registration opens", Rules: validate.Rules{Required: true, Kind: validate.KindDate}},
				{Path: RegistrationDeadline, Label: "Registration closes", Rules: validate.Rules{Required: true, Kind: validate.KindDate, NotBefore: RegistrationStartDate}},
				{Path: Capacity, Label: "Capacity", Rules: validate.Rules{Required: true, Kind: validate.KindInt, Min: validate.Bound(1), Max: validate.Bound(10000)}},
				{Path: FinalDatePayment, Label: "Final payment date", Rules: validate.Rules{Kind: validate.KindDate}},
			},
		},
		wizard.Step{
			Index:       StepBatches,
			Title:       "Batches",
			Description: "Priced registration tiers, unless the event is free",
			Fields: []wizard.FieldSpec{
				{Path: IsFree, Label: "Free event", Rules: validate.Rules{Kind: validate.KindBool}},
			},
			Lists: []string{Batches},
			Skip:  func(v wizard.Values) bool { return v.Bool(IsFree) },
		},
		wizard.Step{
			Index:       StepOptions,
			Title:       "Final options",
			Description: "Transport, terms and publication",
			Fields: []wizard.FieldSpec{
				{Path: HasTransport, Label: "Transport offered", Rules: validate.Rules{Kind: validate.KindBool}},
				{Path: TermIsRequired, Label: "Terms must be accepted", Rules: validate.Rules{Kind: validate.KindBool}},
				{Path: IsPublished, Label: "Published", Rules: validate.Rules{Kind: validate.KindBool}},
			},
		},
	)
}

// Defaults are the initial values of the create flow.
func Defaults() wizard.Values {
	return wizard.Values{
		IsFree:         true,
		HasTransport:   false,
		TermIsRequired: false,
		IsPublished:    false,
	}
}

// BatchFieldLabels names the batch columns for display.
var BatchFieldLabels = map[string]string{
	batch.FieldName:      "Name",
	batch.FieldCapacity:  "Capacity",
	batch.FieldPrice:     "Price",
	batch.FieldStartDate: "Starts",
	batch.FieldEndDate:   "Ends",
}
