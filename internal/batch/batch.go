// Package batch manages the ordered collection of priced registration tiers
// edited inside the event wizard.
package batch

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/eventwiz/internal/validate"
)

// Field names of a Record, as used in field paths ("batches.2.price").
const (
	FieldName      = "name"
	FieldCapacity  = "capacity"
	FieldPrice     = "price"
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
)

// Fields lists the editable fields in display order.
var Fields = []string{FieldName, FieldCapacity, FieldPrice, FieldStartDate, FieldEndDate}

var (
	// ErrNotFound is returned when a local id does not match any record.
	ErrNotFound = errors.New("batch not found")
	// ErrUnknownField is returned when updating a field a Record does not have.
	ErrUnknownField = errors.New("unknown batch field")
)

// Record is one batch row. Numeric and date fields hold the raw input as
// entered; they are parsed during validation and payload assembly.
type Record struct {
	LocalID  string // client-only identity, stable across edits
	ServerID string // empty until persisted

	Name      string
	Capacity  any
	Price     any
	StartDate any
	EndDate   any
}

// Value returns the raw value of field.
func (r Record) Value(field string) (any, bool) {
	switch field {
	case FieldName:
		return r.Name, true
	case FieldCapacity:
		return r.Capacity, true
	case FieldPrice:
		return r.Price, true
	case FieldStartDate:
		return r.StartDate, true
	case FieldEndDate:
		return r.EndDate, true
	}
	return nil, false
}

// DefaultRules are the per-field constraints of a batch.
var DefaultRules = map[string]validate.Rules{
	FieldName:      {Required: true, Kind: validate.KindText, MaxLen: 80},
	FieldCapacity:  {Required: true, Kind: validate.KindInt, Min: validate.Bound(1)},
	FieldPrice:     {Required: true, Kind: validate.KindDecimal, Min: validate.Bound(0)},
	FieldStartDate: {Required: true, Kind: validate.KindDate},
	FieldEndDate:   {Required: true, Kind: validate.KindDate, NotBefore: FieldStartDate},
}

// Editor holds the ordered batch collection. It is not safe for concurrent
// use; the owning wizard session serializes access.
type Editor struct {
	name    string
	records []Record
	rules   map[string]validate.Rules
	newID   func() string
}

// NewEditor creates an empty editor whose field paths are prefixed with name.
func NewEditor(name string) *Editor {
	return &Editor{
		name:  name,
		rules: DefaultRules,
		newID: uuid.NewString,
	}
}

// Name returns the list name used as the field path prefix.
func (e *Editor) Name() string {
	return e.name
}

// Add appends an empty record and returns its local id.
func (e *Editor) Add() string {
	id := e.newID()
	e.records = append(e.records, Record{LocalID: id})
	return id
}

// Remove deletes the record with localID. Survivors keep their relative order.
func (e *Editor) Remove(localID string) error {
	i := e.Index(localID)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", localID, ErrNotFound)
	}
	e.records = append(e.records[:i:i], e.records[i+1:]...)
	return nil
}

// Update sets one field of the record with localID.
func (e *Editor) Update(localID, field string, value any) error {
	i := e.Index(localID)
	if i < 0 {
		return fmt.Errorf("update %s: %w", localID, ErrNotFound)
	}
	r := &e.records[i]
	// Dates are stored by value so snapshots never alias caller memory.
	if t, ok := value.(*time.Time); ok {
		if t == nil {
			value = nil
		} else {
			value = *t
		}
	}
	switch field {
	case FieldName:
		s, ok := value.(string)
		if !ok && value != nil {
			return fmt.Errorf("update %s.%s: name must be text, got %T", localID, field, value)
		}
		r.Name = s
	case FieldCapacity:
		r.Capacity = value
	case FieldPrice:
		r.Price = value
	case FieldStartDate:
		r.StartDate = value
	case FieldEndDate:
		r.EndDate = value
	default:
		return fmt.Errorf("update %s.%s: %w", localID, field, ErrUnknownField)
	}
	return nil
}

// Get returns a copy of the record with localID.
func (e *Editor) Get(localID string) (Record, bool) {
	i := e.Index(localID)
	if i < 0 {
		return Record{}, false
	}
	return e.records[i], true
}

// Index returns the position of localID, or -1.
func (e *Editor) Index(localID string) int {
	for i := range e.records {
		if e.records[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// Len returns the number of records.
func (e *Editor) Len() int {
	return len(e.records)
}

// All returns a snapshot of the records in insertion order.
func (e *Editor) All() []Record {
	out := make([]Record, len(e.records))
	copy(out, e.records)
	return out
}

// Seed replaces the collection with records loaded from the server. Every
// record gets a fresh local id; server ids are kept.
func (e *Editor) Seed(records []Record) {
	e.records = make([]Record, 0, len(records))
	for _, r := range records {
		r.LocalID = e.newID()
		e.records = append(e.records, r)
	}
}

// Path returns the field path of field in the record at index i.
func (e *Editor) Path(i int, field string) string {
	return e.name + "." + strconv.Itoa(i) + "." + field
}

// Validate checks every field of every record. An empty collection is itself
// an error keyed by the list name. The result maps field paths to messages.
func (e *Editor) Validate() map[string]string {
	errs := make(map[string]string)
	if len(e.records) == 0 {
		errs[e.name] = "add at least one batch"
		return errs
	}
	for i, r := range e.records {
		lookup := func(field string) any {
			v, _ := r.Value(field)
			return v
		}
		for _, field := range Fields {
			v, _ := r.Value(field)
			res := validate.ValidateWith(e.Path(i, field), v, e.rules[field], lookup)
			if !res.Valid {
				errs[e.Path(i, field)] = res.Message
			}
		}
	}
	return errs
}
