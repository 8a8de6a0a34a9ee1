package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/biblioteca-dev/biblioteca/internal/model"
)

// The analytical catalogue: a fixed set of read-only queries over the entity
// tables. Each statement is built by its own function so the generated SQL can
// be asserted in tests without a database.
//
// Tie-breaking for the single-row "top" queries is deliberate: rows that tie
// on the aggregate are resolved by lowest id, so results are deterministic
// rather than inheriting store-defined order.

// UserFineTotal is one row of the per-user fine total report.
// Users with no fines appear with a total of 0.
type UserFineTotal struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name"`
	Total  decimal.Decimal `json:"total"`
}

// UserFineStats is one row of the per-user fine max/min/avg report.
// Only users with at least one fine appear.
type UserFineStats struct {
	UserID int64           `json:"user_id"`
	Name   string          `json:"name"`
	Max    decimal.Decimal `json:"max"`
	Min    decimal.Decimal `json:"min"`
	Avg    decimal.Decimal `json:"avg"`
}

// ActiveLoan is one currently-active loan joined with its borrower.
type ActiveLoan struct {
	LoanID   int64      `json:"loan_id"`
	UserID   int64      `json:"user_id"`
	UserName string     `json:"user_name"`
	BookID   int64      `json:"book_id"`
	LoanDate model.Date `json:"loan_date"`
	Renewals int        `json:"renewals"`
}

// BookLoanCount is a book together with how often it has been loaned.
type BookLoanCount struct {
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	LoanCount int64  `json:"loan_count"`
}

// UserLoanCount is a user together with their total number of loans.
type UserLoanCount struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	LoanCount int64  `json:"loan_count"`
}

// UserRegistrationCount is a user with their event-registration count,
// zero-inclusive.
type UserRegistrationCount struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	Registrations int64  `json:"registrations"`
}

// PublisherLatestBook is a publisher with the publication year of its most
// recent book.
type PublisherLatestBook struct {
	PublisherID   int64  `json:"publisher_id"`
	PublisherName string `json:"publisher_name"`
	LatestYear    int    `json:"latest_year"`
}

// CategoryBookCount is a book category with its book count.
type CategoryBookCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// EventTypeCount is an event type with its event count.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// UserRenewalTotal is a user with their cumulative loan renewals.
type UserRenewalTotal struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Renewals int64  `json:"renewals"`
}

func fineTotalsQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		LeftJoin(goqu.T("fines"), goqu.On(goqu.Ex{"fines.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.COALESCE(goqu.SUM(goqu.I("fines.amount")), 0).As("total"),
		).
		GroupBy(goqu.I("users.id"), goqu.I("users.name")).
		Order(goqu.I("users.id").Asc())
}

// FineTotalsByUser reports every user's summed fine amount, zero-inclusive.
func (s *Store) FineTotalsByUser(ctx context.Context) ([]UserFineTotal, error) {
	return queryRows(ctx, s, "fine totals by user", fineTotalsQuery(), func(rows pgx.Rows) (UserFineTotal, error) {
		var r UserFineTotal
		err := rows.Scan(&r.UserID, &r.Name, &r.Total)
		return r, err
	})
}

func fineStatsQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		Join(goqu.T("fines"), goqu.On(goqu.Ex{"fines.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.MAX(goqu.I("fines.amount")).As("max"),
			goqu.MIN(goqu.I("fines.amount")).As("min"),
			goqu.AVG(goqu.I("fines.amount")).As("avg"),
		).
		GroupBy(goqu.I("users.id"), goqu.I("users.name")).
		Order(goqu.I("users.id").Asc())
}

// FineStatsByUser reports max/min/avg fine amounts per user; users with no
// fines do not appear.
func (s *Store) FineStatsByUser(ctx context.Context) ([]UserFineStats, error) {
	return queryRows(ctx, s, "fine stats by user", fineStatsQuery(), func(rows pgx.Rows) (UserFineStats, error) {
		var r UserFineStats
		err := rows.Scan(&r.UserID, &r.Name, &r.Max, &r.Min, &r.Avg)
		return r, err
	})
}

func activeLoansQuery() *goqu.SelectDataset {
	return dialect.
		From("loans").
		Join(goqu.T("users"), goqu.On(goqu.Ex{"users.id": goqu.I("loans.user_id")})).
		Select(
			goqu.I("loans.id"),
			goqu.I("users.id").As("user_id"),
			goqu.I("users.name"),
			goqu.I("loans.book_id"),
			goqu.I("loans.loan_date"),
			goqu.I("loans.renewals"),
		).
		Where(goqu.I("loans.status").Eq("active")).
		Order(goqu.I("loans.id").Asc())
}

// ActiveLoans returns every loan with status "active" joined with its borrower.
func (s *Store) ActiveLoans(ctx context.Context) ([]ActiveLoan, error) {
	return queryRows(ctx, s, "active loans", activeLoansQuery(), func(rows pgx.Rows) (ActiveLoan, error) {
		var r ActiveLoan
		err := rows.Scan(&r.LoanID, &r.UserID, &r.UserName, &r.BookID, &r.LoanDate, &r.Renewals)
		return r, err
	})
}

func mostLoanedBookQuery() *goqu.SelectDataset {
	return dialect.
		From("books").
		Join(goqu.T("loans"), goqu.On(goqu.Ex{"loans.book_id": goqu.I("books.id")})).
		Select(
			goqu.I("books.id"),
			goqu.I("books.title"),
			goqu.COUNT(goqu.I("loans.id")).As("loan_count"),
		).
		GroupBy(goqu.I("books.id"), goqu.I("books.title")).
		Order(goqu.COUNT(goqu.I("loans.id")).Desc(), goqu.I("books.id").Asc()).
		Limit(1)
}

// MostLoanedBook returns the single most-loaned book, or nil when no loans
// exist. Ties resolve to the lowest book id.
func (s *Store) MostLoanedBook(ctx context.Context) (*BookLoanCount, error) {
	return querySingle(ctx, s, "most loaned book", mostLoanedBookQuery(), func(row pgx.Row) (BookLoanCount, error) {
		var r BookLoanCount
		err := row.Scan(&r.BookID, &r.Title, &r.LoanCount)
		return r, err
	})
}

func frequentBorrowersQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		LeftJoin(goqu.T("loans"), goqu.On(goqu.Ex{"loans.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.COUNT(goqu.I("loans.id")).As("loan_count"),
		).
		GroupBy(goqu.I("users.id"), goqu.I("users.name")).
		Having(goqu.COUNT(goqu.I("loans.id")).Gt(5)).
		Order(goqu.I("users.id").Asc())
}

// FrequentBorrowers returns users with more than 5 loans. The filter applies
// after aggregation, so it is a HAVING clause, not a row filter.
func (s *Store) FrequentBorrowers(ctx context.Context) ([]UserLoanCount, error) {
	return queryRows(ctx, s, "frequent borrowers", frequentBorrowersQuery(), func(rows pgx.Rows) (UserLoanCount, error) {
		var r UserLoanCount
		err := rows.Scan(&r.UserID, &r.Name, &r.LoanCount)
		return r, err
	})
}

func registrationCountsQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		LeftJoin(goqu.T("event_registrations"), goqu.On(goqu.Ex{"event_registrations.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.COUNT(goqu.I("event_registrations.id")).As("registrations"),
		).
		GroupBy(goqu.I("users.id"), goqu.I("users.name")).
		Order(goqu.I("users.id").Asc())
}

// RegistrationCountsByUser reports per-user event-registration counts,
// zero-inclusive.
func (s *Store) RegistrationCountsByUser(ctx context.Context) ([]UserRegistrationCount, error) {
	return queryRows(ctx, s, "registration counts by user", registrationCountsQuery(), func(rows pgx.Rows) (UserRegistrationCount, error) {
		var r UserRegistrationCount
		err := rows.Scan(&r.UserID, &r.Name, &r.Registrations)
		return r, err
	})
}

func latestBooksQuery() *goqu.SelectDataset {
	return dialect.
		From("publishers").
		Join(goqu.T("books"), goqu.On(goqu.Ex{"books.publisher_id": goqu.I("publishers.id")})).
		Select(
			goqu.I("publishers.id"),
			goqu.I("publishers.publisher_name"),
			goqu.MAX(goqu.I("books.publication_year")).As("latest_year"),
		).
		GroupBy(goqu.I("publishers.id"), goqu.I("publishers.publisher_name")).
		Order(goqu.I("publishers.id").Asc())
}

// LatestBookYearByPublisher reports each publisher's most recent publication
// year; publishers without books do not appear.
func (s *Store) LatestBookYearByPublisher(ctx context.Context) ([]PublisherLatestBook, error) {
	return queryRows(ctx, s, "latest book per publisher", latestBooksQuery(), func(rows pgx.Rows) (PublisherLatestBook, error) {
		var r PublisherLatestBook
		err := rows.Scan(&r.PublisherID, &r.PublisherName, &r.LatestYear)
		return r, err
	})
}

func eventsAboveAverageCapacityQuery() *goqu.SelectDataset {
	avg := dialect.From("events").Select(goqu.AVG(goqu.C("capacity")))
	return dialect.
		From("events").
		Select("id", "event_name", "description", "event_date", "event_type", "capacity").
		Where(goqu.C("capacity").Gt(avg)).
		Order(goqu.I("id").Asc())
}

// EventsAboveAverageCapacity returns events whose capacity exceeds the global
// average capacity.
func (s *Store) EventsAboveAverageCapacity(ctx context.Context) ([]model.Event, error) {
	return queryRows(ctx, s, "events above average capacity", eventsAboveAverageCapacityQuery(), func(rows pgx.Rows) (model.Event, error) {
		var e model.Event
		err := rows.Scan(&e.ID, &e.EventName, &e.Description, &e.EventDate, &e.EventType, &e.Capacity)
		return e, err
	})
}

func usersWithoutFinesQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		LeftJoin(goqu.T("fines"), goqu.On(goqu.Ex{"fines.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.I("users.address"),
			goqu.I("users.phone"),
			goqu.I("users.email"),
			goqu.I("users.registration_date"),
			goqu.I("users.user_type"),
		).
		Where(goqu.I("fines.id").IsNull()).
		Order(goqu.I("users.id").Asc())
}

// UsersWithoutFines returns the users that have no fine at all (anti-join).
func (s *Store) UsersWithoutFines(ctx context.Context) ([]model.User, error) {
	return queryRows(ctx, s, "users without fines", usersWithoutFinesQuery(), scanUser)
}

func bookCountByCategoryQuery() *goqu.SelectDataset {
	return dialect.
		From("books").
		Select(goqu.C("category"), goqu.COUNT(goqu.C("id")).As("count")).
		GroupBy(goqu.C("category")).
		Order(goqu.C("category").Asc())
}

// BookCountByCategory reports how many books each category has.
func (s *Store) BookCountByCategory(ctx context.Context) ([]CategoryBookCount, error) {
	return queryRows(ctx, s, "book count by category", bookCountByCategoryQuery(), func(rows pgx.Rows) (CategoryBookCount, error) {
		var r CategoryBookCount
		err := rows.Scan(&r.Category, &r.Count)
		return r, err
	})
}

func eventCountByTypeQuery() *goqu.SelectDataset {
	return dialect.
		From("events").
		Select(goqu.C("event_type"), goqu.COUNT(goqu.C("id")).As("count")).
		GroupBy(goqu.C("event_type")).
		Order(goqu.C("event_type").Asc())
}

// EventCountByType reports how many events each type has.
func (s *Store) EventCountByType(ctx context.Context) ([]EventTypeCount, error) {
	return queryRows(ctx, s, "event count by type", eventCountByTypeQuery(), func(rows pgx.Rows) (EventTypeCount, error) {
		var r EventTypeCount
		err := rows.Scan(&r.EventType, &r.Count)
		return r, err
	})
}

func topRenewalUserQuery() *goqu.SelectDataset {
	return dialect.
		From("users").
		Join(goqu.T("loans"), goqu.On(goqu.Ex{"loans.user_id": goqu.I("users.id")})).
		Select(
			goqu.I("users.id"),
			goqu.I("users.name"),
			goqu.SUM(goqu.I("loans.renewals")).As("renewals"),
		).
		GroupBy(goqu.I("users.id"), goqu.I("users.name")).
		Order(goqu.SUM(goqu.I("loans.renewals")).Desc(), goqu.I("users.id").Asc()).
		Limit(1)
}

// TopRenewalUser returns the user with the most cumulative loan renewals, or
// nil when no loans exist. Ties resolve to the lowest user id.
func (s *Store) TopRenewalUser(ctx context.Context) (*UserRenewalTotal, error) {
	return querySingle(ctx, s, "top renewal user", topRenewalUserQuery(), func(row pgx.Row) (UserRenewalTotal, error) {
		var r UserRenewalTotal
		err := row.Scan(&r.UserID, &r.Name, &r.Renewals)
		return r, err
	})
}
