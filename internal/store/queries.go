package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/biblioteca-dev/biblioteca/internal/model"
)

// queryRows executes a built select statement and scans all rows. Reads are
// single statements: no transaction, and an empty result is a valid success.
func queryRows[R any](
	ctx context.Context,
	s *Store,
	op string,
	stmt *goqu.SelectDataset,
	scan func(rows pgx.Rows) (R, error),
) ([]R, error) {
	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, failed(op, err)
	}

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, failed(op, err)
	}
	defer rows.Close()

	out := make([]R, 0)
	for rows.Next() {
		r, scanErr := scan(rows)
		if scanErr != nil {
			return nil, failed(op, scanErr)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, failed(op, err)
	}

	s.queryDuration(op, start, len(out))
	return out, nil
}

// querySingle executes a built select statement expected to yield at most one
// row. It returns (nil, nil) when the underlying set is empty.
func querySingle[R any](
	ctx context.Context,
	s *Store,
	op string,
	stmt *goqu.SelectDataset,
	scan func(row pgx.Row) (R, error),
) (*R, error) {
	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, failed(op, err)
	}

	start := time.Now()
	r, scanErr := scan(s.pool.QueryRow(ctx, query, args...))
	if scanErr != nil {
		if isNoRows(scanErr) {
			s.queryDuration(op, start, 0)
			return nil, nil
		}
		return nil, failed(op, scanErr)
	}

	s.queryDuration(op, start, 1)
	return &r, nil
}

func scanUser(rows pgx.Rows) (model.User, error) {
	var u model.User
	err := rows.Scan(&u.ID, &u.Name, &u.Address, &u.Phone, &u.Email, &u.RegistrationDate, &u.UserType)
	return u, err
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	stmt := dialect.
		From("users").
		Select("id", "name", "address", "phone", "email", "registration_date", "user_type").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list users", stmt, scanUser)
}

// ListFines returns every fine ordered by id.
func (s *Store) ListFines(ctx context.Context) ([]model.Fine, error) {
	stmt := dialect.
		From("fines").
		Select("id", "user_id", "reason", "start_date", "end_date", "amount").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list fines", stmt, func(rows pgx.Rows) (model.Fine, error) {
		var f model.Fine
		err := rows.Scan(&f.ID, &f.UserID, &f.Reason, &f.StartDate, &f.EndDate, &f.Amount)
		return f, err
	})
}

// ListPublishers returns every publisher ordered by id.
func (s *Store) ListPublishers(ctx context.Context) ([]model.Publisher, error) {
	stmt := dialect.
		From("publishers").
		Select("id", "publisher_name", "country", "foundation_year").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list publishers", stmt, func(rows pgx.Rows) (model.Publisher, error) {
		var p model.Publisher
		err := rows.Scan(&p.ID, &p.PublisherName, &p.Country, &p.FoundationYear)
		return p, err
	})
}

// ListBooks returns every book ordered by id.
func (s *Store) ListBooks(ctx context.Context) ([]model.Book, error) {
	stmt := dialect.
		From("books").
		Select("id", "title", "author", "category", "publication_year", "status", "type", "publisher_id").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list books", stmt, func(rows pgx.Rows) (model.Book, error) {
		var b model.Book
		err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.PublicationYear, &b.Status, &b.Type, &b.PublisherID)
		return b, err
	})
}

// ListEvents returns every event ordered by id.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	stmt := dialect.
		From("events").
		Select("id", "event_name", "description", "event_date", "event_type", "capacity").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list events", stmt, func(rows pgx.Rows) (model.Event, error) {
		var e model.Event
		err := rows.Scan(&e.ID, &e.EventName, &e.Description, &e.EventDate, &e.EventType, &e.Capacity)
		return e, err
	})
}

func scanLoan(rows pgx.Rows) (model.Loan, error) {
	var l model.Loan
	var returnDate *time.Time
	err := rows.Scan(&l.ID, &l.BookID, &l.UserID, &l.LoanDate, &returnDate, &l.Renewals, &l.Status, &l.LibrarianID)
	if err != nil {
		return l, err
	}
	if returnDate != nil {
		d := model.Date{Time: *returnDate}
		l.ReturnDate = &d
	}
	return l, nil
}

// ListLoans returns every loan ordered by id.
func (s *Store) ListLoans(ctx context.Context) ([]model.Loan, error) {
	return queryRows(ctx, s, "list loans", loansQuery(), scanLoan)
}

// LoansByDate returns the loans taken out on exactly the given date.
func (s *Store) LoansByDate(ctx context.Context, date model.Date) ([]model.Loan, error) {
	return queryRows(ctx, s, "list loans by date", loansQuery().Where(goqu.C("loan_date").Eq(date)), scanLoan)
}

func loansQuery() *goqu.SelectDataset {
	return dialect.
		From("loans").
		Select("id", "book_id", "user_id", "loan_date", "return_date", "renewals", "status", "librarian_id").
		Order(goqu.I("id").Asc())
}

// ListRegistrations returns every event registration ordered by id.
func (s *Store) ListRegistrations(ctx context.Context) ([]model.EventRegistration, error) {
	stmt := dialect.
		From("event_registrations").
		Select("id", "event_id", "user_id", "registration_date").
		Order(goqu.I("id").Asc())
	return queryRows(ctx, s, "list event registrations", stmt, func(rows pgx.Rows) (model.EventRegistration, error) {
		var r model.EventRegistration
		err := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.RegistrationDate)
		return r, err
	})
}
