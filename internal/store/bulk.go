package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/biblioteca-dev/biblioteca/internal/model"
)

// insertBatch is the bulk write coordinator. It inserts every draft of one
// entity type within a single transaction:
//
//  1. refsFor's foreign keys are verified for each item before that item's
//     insert; a missing parent aborts the whole batch.
//  2. Items are inserted in input order, each capturing its generated id.
//  3. The output is input-ordered, 1:1, built by materialize from the draft
//     plus the generated id.
//
// Any error during 1-3 rolls back everything the batch has written so far.
func insertBatch[D, R any](
	ctx context.Context,
	s *Store,
	op string,
	table string,
	drafts []D,
	refsFor func(D) []ref,
	rowFor func(D) goqu.Record,
	materialize func(D, int64) R,
) ([]R, error) {
	batchID := uuid.New()
	start := time.Now()
	out := make([]R, len(drafts))

	err := s.withTx(ctx, op, func(tx pgx.Tx) error {
		for i, draft := range drafts {
			if refsFor != nil {
				if refErr := checkRefs(ctx, tx, refsFor(draft)); refErr != nil {
					return refErr
				}
			}

			query, args, buildErr := dialect.
				Insert(table).
				Rows(rowFor(draft)).
				Returning("id").
				Prepared(true).
				ToSQL()
			if buildErr != nil {
				return buildErr
			}

			var id int64
			if scanErr := tx.QueryRow(ctx, query, args...).Scan(&id); scanErr != nil {
				return scanErr
			}
			out[i] = materialize(draft, id)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("batch aborted",
			"batch_id", batchID,
			"entity", table,
			"count", len(drafts),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("batch committed",
		"batch_id", batchID,
		"entity", table,
		"count", len(drafts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// CreateUsers inserts a batch of users and returns them with generated ids.
func (s *Store) CreateUsers(ctx context.Context, drafts []model.UserDraft) ([]model.User, error) {
	return insertBatch(ctx, s, "insert users", "users", drafts,
		nil,
		func(d model.UserDraft) goqu.Record {
			return goqu.Record{
				"name":              d.Name,
				"address":           d.Address,
				"phone":             d.Phone,
				"email":             d.Email,
				"registration_date": d.RegistrationDate,
				"user_type":         d.UserType,
			}
		},
		func(d model.UserDraft, id int64) model.User {
			return model.User{ID: id, UserDraft: d}
		},
	)
}

// CreateFines inserts a batch of fines for one user. The user id comes from
// the route, not from the request items, and is injected into every record.
func (s *Store) CreateFines(ctx context.Context, userID int64, drafts []model.FineDraft) ([]model.Fine, error) {
	return insertBatch(ctx, s, "insert fines", "fines", drafts,
		func(model.FineDraft) []ref {
			return []ref{{entity: "user", table: "users", id: userID}}
		},
		func(d model.FineDraft) goqu.Record {
			return goqu.Record{
				"user_id":    userID,
				"reason":     d.Reason,
				"start_date": d.StartDate,
				"end_date":   d.EndDate,
				"amount":     d.Amount,
			}
		},
		func(d model.FineDraft, id int64) model.Fine {
			return model.Fine{ID: id, UserID: userID, FineDraft: d}
		},
	)
}

// CreatePublishers inserts a batch of publishers.
func (s *Store) CreatePublishers(ctx context.Context, drafts []model.PublisherDraft) ([]model.Publisher, error) {
	return insertBatch(ctx, s, "insert publishers", "publishers", drafts,
		nil,
		func(d model.PublisherDraft) goqu.Record {
			return goqu.Record{
				"publisher_name":  d.PublisherName,
				"country":         d.Country,
				"foundation_year": d.FoundationYear,
			}
		},
		func(d model.PublisherDraft, id int64) model.Publisher {
			return model.Publisher{ID: id, PublisherDraft: d}
		},
	)
}

// CreateBooks inserts a batch of books, verifying each publisher exists.
func (s *Store) CreateBooks(ctx context.Context, drafts []model.BookDraft) ([]model.Book, error) {
	return insertBatch(ctx, s, "insert books", "books", drafts,
		func(d model.BookDraft) []ref {
			return []ref{{entity: "publisher", table: "publishers", id: d.PublisherID}}
		},
		func(d model.BookDraft) goqu.Record {
			return goqu.Record{
				"title":            d.Title,
				"author":           d.Author,
				"category":         d.Category,
				"publication_year": d.PublicationYear,
				"status":           d.Status,
				"type":             d.Type,
				"publisher_id":     d.PublisherID,
			}
		},
		func(d model.BookDraft, id int64) model.Book {
			return model.Book{ID: id, BookDraft: d}
		},
	)
}

// CreateEvents inserts a batch of events.
func (s *Store) CreateEvents(ctx context.Context, drafts []model.EventDraft) ([]model.Event, error) {
	return insertBatch(ctx, s, "insert events", "events", drafts,
		nil,
		func(d model.EventDraft) goqu.Record {
			return goqu.Record{
				"event_name":  d.EventName,
				"description": d.Description,
				"event_date":  d.EventDate,
				"event_type":  d.EventType,
				"capacity":    d.Capacity,
			}
		},
		func(d model.EventDraft, id int64) model.Event {
			return model.Event{ID: id, EventDraft: d}
		},
	)
}

// CreateLoans inserts a batch of loans, verifying each user and book exists.
func (s *Store) CreateLoans(ctx context.Context, drafts []model.LoanDraft) ([]model.Loan, error) {
	return insertBatch(ctx, s, "insert loans", "loans", drafts,
		func(d model.LoanDraft) []ref {
			return []ref{
				{entity: "user", table: "users", id: d.UserID},
				{entity: "book", table: "books", id: d.BookID},
			}
		},
		func(d model.LoanDraft) goqu.Record {
			// A nil *Date must reach the driver as a plain NULL.
			var returnDate any
			if d.ReturnDate != nil {
				returnDate = *d.ReturnDate
			}
			return goqu.Record{
				"book_id":      d.BookID,
				"user_id":      d.UserID,
				"loan_date":    d.LoanDate,
				"return_date":  returnDate,
				"renewals":     d.Renewals,
				"status":       d.Status,
				"librarian_id": d.LibrarianID,
			}
		},
		func(d model.LoanDraft, id int64) model.Loan {
			return model.Loan{ID: id, LoanDraft: d}
		},
	)
}

// CreateRegistrations inserts a batch of event registrations, verifying each
// event and user exists.
func (s *Store) CreateRegistrations(ctx context.Context, drafts []model.EventRegistrationDraft) ([]model.EventRegistration, error) {
	return insertBatch(ctx, s, "insert event registrations", "event_registrations", drafts,
		func(d model.EventRegistrationDraft) []ref {
			return []ref{
				{entity: "event", table: "events", id: d.EventID},
				{entity: "user", table: "users", id: d.UserID},
			}
		},
		func(d model.EventRegistrationDraft) goqu.Record {
			return goqu.Record{
				"event_id":          d.EventID,
				"user_id":           d.UserID,
				"registration_date": d.RegistrationDate,
			}
		},
		func(d model.EventRegistrationDraft, id int64) model.EventRegistration {
			return model.EventRegistration{ID: id, EventRegistrationDraft: d}
		},
	)
}
