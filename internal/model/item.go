// Package model defines data structures for the admin gateway.
package model

import (
	"fmt"
	"time"
)

// Status represents the moderation state of an item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusBlocked  Status = "blocked"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known moderation status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusBlocked, StatusArchived:
		return true
	}
	return false
}

// Kind represents the subtype of an item.
type Kind string

const (
	KindListing Kind = "listing"
	KindJob     Kind = "job"
)

// Item represents a listing or job post observed through the upstream API.
//
// Identity is the UUID; the numeric ID exists only for human-facing search
// and is never used for equality.
type Item struct {
	// Identity
	UUID string `json:"uuid"`
	ID   int64  `json:"id"`

	Kind     Kind   `json:"kind"`
	UserUUID string `json:"user_uuid,omitempty"`

	// Content
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	City        string   `json:"city"`
	Category    string   `json:"category"`
	Images      []string `json:"images,omitempty"`

	// Moderation
	Status     Status  `json:"status"`
	StatusNote *string `json:"status_note"`

	// Job posts only: true means an employee seeking work, false means a
	// company seeking an employee. Nil means the field does not apply.
	EmployeeSeeking *bool `json:"employee_seeking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field names an editable attribute of an Item. Values double as the JSON
// keys sent in partial updates.
type Field string

const (
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldPrice           Field = "price"
	FieldCurrency        Field = "currency"
	FieldCity            Field = "city"
	FieldCategory        Field = "category"
	FieldStatus          Field = "status"
	FieldStatusNote      Field = "status_note"
	FieldEmployeeSeeking Field = "employee_seeking"
)

// EditableFields lists every field the edit tracker may touch.
var EditableFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldPrice,
	FieldCurrency,
	FieldCity,
	FieldCategory,
	FieldStatus,
	FieldStatusNote,
	FieldEmployeeSeeking,
}

// FieldValue returns the normalized value of a field. Pointer-typed fields
// come back as nil or their dereferenced value so that values are directly
// comparable with ==.
func (i *Item) FieldValue(f Field) (any, error) {
	switch f {
	case FieldTitle:
		return i.Title, nil
	case FieldDescription:
		return i.Description, nil
	case FieldPrice:
		return i.Price, nil
	case FieldCurrency:
		return i.Currency, nil
	case FieldCity:
		return i.City, nil
	case FieldCategory:
		return i.Category, nil
	case FieldStatus:
		return i.Status, nil
	case FieldStatusNote:
		if i.StatusNote == nil {
			return nil, nil
		}
		return *i.StatusNote, nil
	case FieldEmployeeSeeking:
		if i.EmployeeSeeking == nil {
			return nil, nil
		}
		return *i.EmployeeSeeking, nil
	}
	return nil, fmt.Errorf("unknown field %q", f)
}

// SetFieldValue assigns a normalized value to a field. It expects values in
// the same shape FieldValue returns.
func (i *Item) SetFieldValue(f Field, v any) error {
	switch f {
	case FieldTitle, FieldDescription, FieldCurrency, FieldCity, FieldCategory:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string, got %T", f, v)
		}
		switch f {
		case FieldTitle:
			i.Title = s
		case FieldDescription:
			i.Description = s
		case FieldCurrency:
			i.Currency = s
		case FieldCity:
			i.City = s
		case FieldCategory:
			i.Category = s
		}
		return nil
	case FieldPrice:
		p, ok := v.(float64)
		if !ok {
			return fmt.Errorf("field %q expects a number, got %T", f, v)
		}
		i.Price = p
		return nil
	case FieldStatus:
		s, ok := v.(Status)
		if !ok {
			return fmt.Errorf("field %q expects a status, got %T", f, v)
		}
		i.Status = s
		return nil
	case FieldStatusNote:
		if v == nil {
			i.StatusNote = nil
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string or nil, got %T", f, v)
		}
		i.StatusNote = &s
		return nil
	case FieldEmployeeSeeking:
		// Radio-driven two-state choice: callers pass literal true or false,
		// never nil.
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("field %q expects a bool, got %T", f, v)
		}
		i.EmployeeSeeking = &b
		return nil
	}
	return fmt.Errorf("unknown field %q", f)
}

// ParseFieldValue converts a raw JSON-decoded value into the normalized form
// FieldValue and SetFieldValue use.
func ParseFieldValue(f Field, raw any) (any, error) {
	switch f {
	case FieldTitle, FieldDescription, FieldCurrency, FieldCity, FieldCategory:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q expects a string, got %T", f, raw)
		}
		return s, nil
	case FieldPrice:
		p, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("field %q expects a number, got %T", f, raw)
		}
		return p, nil
	case FieldStatus:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q expects a string, got %T", f, raw)
		}
		status := Status(s)
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		return status, nil
	case FieldStatusNote:
		if raw == nil {
			return nil, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q expects a string or null, got %T", f, raw)
		}
		return s, nil
	case FieldEmployeeSeeking:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("field %q expects true or false, got %T", f, raw)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown field %q", f)
}
