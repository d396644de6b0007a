// Package api is a client for the events and organizers REST endpoints of the
// admin platform.
package api

import "time"

// EventTypes lists the event categories accepted by the events service.
var EventTypes = []string{
	"RETREAT",
	"LEADERS_RETREAT",
	"MEETING",
	"CONFERENCE",
	"WORKSHOP",
	"SEMINARY",
	"VIGIL",
	"CULT",
	"CORAL",
	"CONCERT",
	"THEATER",
	"COURSE",
	"EVANGELISM",
}

// Organizer is an entry of the organizer lookup.
type Organizer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrganizerRef is the nested organizer object of an event payload.
type OrganizerRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name,omitempty"`
}

// BatchInput is one registration tier of an event payload. ID is only sent
// for batches that already exist on the server.
type BatchInput struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required"`
	Capacity  int       `json:"capacity" validate:"min=1"`
	Price     float64   `json:"price" validate:"min=0"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

// EventInput is the create/update payload.
type EventInput struct {
	Name        string       `json:"name" validate:"required,min=3,max=120"`
	Description string       `json:"description" validate:"required,max=500"`
	Location    string       `json:"location" validate:"required"`
	Type        string       `json:"type" validate:"required,oneof=RETREAT LEADERS_RETREAT MEETING CONFERENCE WORKSHOP SEMINARY VIGIL CULT CORAL CONCERT THEATER COURSE EVANGELISM"`
	Organizer   OrganizerRef `json:"organizer"`
	OrganizerID string       `json:"organizerId" validate:"required,eqcsfield=Organizer.ID"`

	StartDatetime         time.Time  `json:"startDatetime" validate:"required"`
	EndDatetime           time.Time  `json:"endDatetime" validate:"required,gtefield=StartDatetime"`
	RegistrationStartDate time.Time  `json:"registrationStartDate" validate:"required"`
	RegistrationDeadline  time.Time  `json:"registrationDeadline" validate:"required,gtefield=RegistrationStartDate"`
	Capacity              int        `json:"capacity" validate:"min=1,max=10000"`
	FinalDatePayment      *time.Time `json:"finalDatePayment"`

	IsFree  bool         `json:"isFree"`
	Batches []BatchInput `json:"batches" validate:"dive"`

	HasTransport   bool `json:"hasTransport"`
	TermIsRequired bool `json:"termIsRequired"`
	IsPublished    bool `json:"isPublished"`
}

// Event is a persisted event as returned by the service.
type Event struct {
	ID string `json:"id"`
	EventInput
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}
