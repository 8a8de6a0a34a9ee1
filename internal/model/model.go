// Package model defines the library-management domain records and their
// candidate (pre-insertion) counterparts.
//
// Each entity has two types: a Draft carrying the caller-supplied fields of a
// candidate record, and the full record which is the draft plus the
// store-generated identifier. Keeping input types separate from row types makes
// the write contract explicit and prevents callers from smuggling in ids.
package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// UserDraft is a candidate user record.
type UserDraft struct {
	Name             string `json:"name" validate:"required"`
	Address          string `json:"address" validate:"required"`
	Phone            string `json:"phone" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	RegistrationDate Date   `json:"registration_date"`
	UserType         string `json:"user_type" validate:"required"`
}

// User is a materialized user record.
type User struct {
	ID int64 `json:"id"`
	UserDraft
}

// FineDraft is a candidate fine. The owning user id is not part of the draft;
// it is supplied by the route and injected by the bulk writer.
type FineDraft struct {
	Reason    string          `json:"reason" validate:"required"`
	StartDate Date            `json:"start_date"`
	EndDate   Date            `json:"end_date"`
	Amount    decimal.Decimal `json:"amount" validate:"gte=0"`
}

// Fine is a materialized fine record.
type Fine struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	FineDraft
}

// PublisherDraft is a candidate publisher record.
type PublisherDraft struct {
	PublisherName  string `json:"publisher_name" validate:"required"`
	Country        string `json:"country" validate:"required"`
	FoundationYear int    `json:"foundation_year"`
}

// Publisher is a materialized publisher record.
type Publisher struct {
	ID int64 `json:"id"`
	PublisherDraft
}

// BookDraft is a candidate book record referencing an existing publisher.
type BookDraft struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Category        string `json:"category" validate:"required"`
	PublicationYear int    `json:"publication_year"`
	Status          string `json:"status" validate:"required"`
	Type            string `json:"type" validate:"required"`
	PublisherID     int64  `json:"publisher_id" validate:"required"`
}

// Book is a materialized book record.
type Book struct {
	ID int64 `json:"id"`
	BookDraft
}

// EventDraft is a candidate event record.
type EventDraft struct {
	EventName   string `json:"event_name" validate:"required"`
	Description string `json:"description"`
	EventDate   Date   `json:"event_date"`
	EventType   string `json:"event_type" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

// Event is a materialized event record.
type Event struct {
	ID int64 `json:"id"`
	EventDraft
}

// LoanDraft is a candidate loan referencing an existing book and user.
type LoanDraft struct {
	BookID      int64  `json:"book_id" validate:"required"`
	UserID      int64  `json:"user_id" validate:"required"`
	LoanDate    Date   `json:"loan_date"`
	ReturnDate  *Date  `json:"return_date,omitempty"`
	Renewals    int    `json:"renewals" validate:"gte=0"`
	Status      string `json:"status" validate:"required"`
	LibrarianID int64  `json:"librarian_id"`
}

// Loan is a materialized loan record.
type Loan struct {
	ID int64 `json:"id"`
	LoanDraft
}

// EventRegistrationDraft is a candidate registration referencing an existing
// event and user.
type EventRegistrationDraft struct {
	EventID          int64 `json:"event_id" validate:"required"`
	UserID           int64 `json:"user_id" validate:"required"`
	RegistrationDate Date  `json:"registration_date"`
}

// EventRegistration is a materialized registration record.
type EventRegistration struct {
	ID int64 `json:"id"`
	EventRegistrationDraft
}
