package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The catalogue queries are fixed; these tests pin their shape (join kind,
// grouping, aggregate filters, tie-break ordering) without needing a database.

func mustSQL(t *testing.T, stmt interface{ ToSQL() (string, []interface{}, error) }) string {
	t.Helper()
	sql, _, err := stmt.ToSQL()
	require.NoError(t, err)
	return sql
}

func TestFineTotalsQuery_ZeroInclusiveLeftJoin(t *testing.T) {
	sql := mustSQL(t, fineTotalsQuery())

	assert.Contains(t, sql, `LEFT JOIN "fines"`)
	assert.Contains(t, sql, `COALESCE(SUM("fines"."amount"), 0)`)
	assert.Contains(t, sql, `GROUP BY "users"."id", "users"."name"`)
}

func TestFineStatsQuery_InnerJoinExcludesFinelessUsers(t *testing.T) {
	sql := mustSQL(t, fineStatsQuery())

	assert.Contains(t, sql, `INNER JOIN "fines"`)
	assert.NotContains(t, sql, "LEFT JOIN")
	assert.Contains(t, sql, `MAX("fines"."amount")`)
	assert.Contains(t, sql, `MIN("fines"."amount")`)
	assert.Contains(t, sql, `AVG("fines"."amount")`)
}

func TestActiveLoansQuery_FiltersOnStatus(t *testing.T) {
	sql := mustSQL(t, activeLoansQuery())

	assert.Contains(t, sql, `INNER JOIN "users"`)
	assert.Contains(t, sql, `"loans"."status" = 'active'`)
}

func TestMostLoanedBookQuery_DeterministicTieBreak(t *testing.T) {
	sql := mustSQL(t, mostLoanedBookQuery())

	assert.Contains(t, sql, `COUNT("loans"."id")`)
	// Ties on the loan count resolve to the lowest book id.
	assert.Contains(t, sql, `ORDER BY COUNT("loans"."id") DESC, "books"."id" ASC`)
	assert.Contains(t, sql, "LIMIT 1")
}

func TestFrequentBorrowersQuery_PostAggregationFilter(t *testing.T) {
	sql := mustSQL(t, frequentBorrowersQuery())

	// "More than 5 loans" must filter on the aggregate, not on rows.
	assert.Contains(t, sql, "HAVING")
	assert.Contains(t, sql, `COUNT("loans"."id") > 5`)
	assert.NotContains(t, sql, `WHERE`)
}

func TestRegistrationCountsQuery_ZeroInclusive(t *testing.T) {
	sql := mustSQL(t, registrationCountsQuery())

	assert.Contains(t, sql, `LEFT JOIN "event_registrations"`)
	assert.Contains(t, sql, `COUNT("event_registrations"."id")`)
}

func TestLatestBooksQuery_MaxYearPerPublisher(t *testing.T) {
	sql := mustSQL(t, latestBooksQuery())

	assert.Contains(t, sql, `INNER JOIN "books"`)
	assert.Contains(t, sql, `MAX("books"."publication_year")`)
	assert.Contains(t, sql, `GROUP BY "publishers"."id", "publishers"."publisher_name"`)
}

func TestEventsAboveAverageCapacityQuery_AggregateSubquery(t *testing.T) {
	sql := mustSQL(t, eventsAboveAverageCapacityQuery())

	assert.Contains(t, sql, `"capacity" > (SELECT AVG("capacity") FROM "events")`)
}

func TestUsersWithoutFinesQuery_AntiJoin(t *testing.T) {
	sql := mustSQL(t, usersWithoutFinesQuery())

	assert.Contains(t, sql, `LEFT JOIN "fines"`)
	assert.Contains(t, sql, `"fines"."id" IS NULL`)
}

func TestBookCountByCategoryQuery(t *testing.T) {
	sql := mustSQL(t, bookCountByCategoryQuery())

	assert.Contains(t, sql, `GROUP BY "category"`)
	assert.Contains(t, sql, `COUNT("id")`)
}

func TestEventCountByTypeQuery(t *testing.T) {
	sql := mustSQL(t, eventCountByTypeQuery())

	assert.Contains(t, sql, `GROUP BY "event_type"`)
}

func TestTopRenewalUserQuery_DeterministicTieBreak(t *testing.T) {
	sql := mustSQL(t, topRenewalUserQuery())

	assert.Contains(t, sql, `SUM("loans"."renewals")`)
	assert.Contains(t, sql, `ORDER BY SUM("loans"."renewals") DESC, "users"."id" ASC`)
	assert.Contains(t, sql, "LIMIT 1")
}

func TestLoansQuery_OrderedByID(t *testing.T) {
	sql := mustSQL(t, loansQuery())

	assert.Contains(t, sql, `ORDER BY "id" ASC`)
}
