package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteca-dev/biblioteca/internal/config"
	"github.com/biblioteca-dev/biblioteca/internal/model"
	"github.com/biblioteca-dev/biblioteca/internal/store"
)

// stubLibrary implements Library with overridable behavior per method. Methods
// without an override succeed with an empty result.
type stubLibrary struct {
	createUsers func(drafts []model.UserDraft) ([]model.User, error)
	createFines func(userID int64, drafts []model.FineDraft) ([]model.Fine, error)
	createBooks func(drafts []model.BookDraft) ([]model.Book, error)
	createLoans func(drafts []model.LoanDraft) ([]model.Loan, error)

	listUsers      func() ([]model.User, error)
	loansByDate    func(date model.Date) ([]model.Loan, error)
	mostLoaned     func() (*store.BookLoanCount, error)
	fineTotals     func() ([]store.UserFineTotal, error)
	topRenewalUser func() (*store.UserRenewalTotal, error)
}

func (l *stubLibrary) CreateUsers(_ context.Context, drafts []model.UserDraft) ([]model.User, error) {
	if l.createUsers != nil {
		return l.createUsers(drafts)
	}
	return nil, nil
}

func (l *stubLibrary) CreateFines(_ context.Context, userID int64, drafts []model.FineDraft) ([]model.Fine, error) {
	if l.createFines != nil {
		return l.createFines(userID, drafts)
	}
	return nil, nil
}

func (l *stubLibrary) CreatePublishers(_ context.Context, _ []model.PublisherDraft) ([]model.Publisher, error) {
	return nil, nil
}

func (l *stubLibrary) CreateBooks(_ context.Context, drafts []model.BookDraft) ([]model.Book, error) {
	if l.createBooks != nil {
		return l.createBooks(drafts)
	}
	return nil, nil
}

func (l *stubLibrary) CreateEvents(_ context.Context, _ []model.EventDraft) ([]model.Event, error) {
	return nil, nil
}

func (l *stubLibrary) CreateLoans(_ context.Context, drafts []model.LoanDraft) ([]model.Loan, error) {
	if l.createLoans != nil {
		return l.createLoans(drafts)
	}
	return nil, nil
}

func (l *stubLibrary) CreateRegistrations(_ context.Context, _ []model.EventRegistrationDraft) ([]model.EventRegistration, error) {
	return nil, nil
}

func (l *stubLibrary) ListUsers(_ context.Context) ([]model.User, error) {
	if l.listUsers != nil {
		return l.listUsers()
	}
	return nil, nil
}

func (l *stubLibrary) ListFines(_ context.Context) ([]model.Fine, error)           { return nil, nil }
func (l *stubLibrary) ListPublishers(_ context.Context) ([]model.Publisher, error) { return nil, nil }
func (l *stubLibrary) ListBooks(_ context.Context) ([]model.Book, error)           { return nil, nil }
func (l *stubLibrary) ListEvents(_ context.Context) ([]model.Event, error)         { return nil, nil }
func (l *stubLibrary) ListLoans(_ context.Context) ([]model.Loan, error)           { return nil, nil }

func (l *stubLibrary) ListRegistrations(_ context.Context) ([]model.EventRegistration, error) {
	return nil, nil
}

func (l *stubLibrary) FineTotalsByUser(_ context.Context) ([]store.UserFineTotal, error) {
	if l.fineTotals != nil {
		return l.fineTotals()
	}
	return nil, nil
}

func (l *stubLibrary) FineStatsByUser(_ context.Context) ([]store.UserFineStats, error) {
	return nil, nil
}

func (l *stubLibrary) ActiveLoans(_ context.Context) ([]store.ActiveLoan, error) { return nil, nil }

func (l *stubLibrary) MostLoanedBook(_ context.Context) (*store.BookLoanCount, error) {
	if l.mostLoaned != nil {
		return l.mostLoaned()
	}
	return nil, nil
}

func (l *stubLibrary) FrequentBorrowers(_ context.Context) ([]store.UserLoanCount, error) {
	return nil, nil
}

func (l *stubLibrary) RegistrationCountsByUser(_ context.Context) ([]store.UserRegistrationCount, error) {
	return nil, nil
}

func (l *stubLibrary) LatestBookYearByPublisher(_ context.Context) ([]store.PublisherLatestBook, error) {
	return nil, nil
}

func (l *stubLibrary) EventsAboveAverageCapacity(_ context.Context) ([]model.Event, error) {
	return nil, nil
}

func (l *stubLibrary) UsersWithoutFines(_ context.Context) ([]model.User, error) { return nil, nil }

func (l *stubLibrary) BookCountByCategory(_ context.Context) ([]store.CategoryBookCount, error) {
	return nil, nil
}

func (l *stubLibrary) LoansByDate(_ context.Context, date model.Date) ([]model.Loan, error) {
	if l.loansByDate != nil {
		return l.loansByDate(date)
	}
	return nil, nil
}

func (l *stubLibrary) EventCountByType(_ context.Context) ([]store.EventTypeCount, error) {
	return nil, nil
}

func (l *stubLibrary) TopRenewalUser(_ context.Context) (*store.UserRenewalTotal, error) {
	if l.topRenewalUser != nil {
		return l.topRenewalUser()
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
	}
}

func doRequest(t *testing.T, lib Library, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(lib, testConfig())

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateUsers_PreservesBatchOrder(t *testing.T) {
	lib := &stubLibrary{
		createUsers: func(drafts []model.UserDraft) ([]model.User, error) {
			users := make([]model.User, len(drafts))
			for i, d := range drafts {
				users[i] = model.User{ID: int64(i + 1), UserDraft: d}
			}
			return users, nil
		},
	}

	body := `[
		{"name":"Ana","address":"Rua A","phone":"111","email":"ana@example.com","registration_date":"2024-01-05","user_type":"student"},
		{"name":"Bruno","address":"Rua B","phone":"222","email":"bruno@example.com","registration_date":"2024-02-10","user_type":"teacher"}
	]`
	rec := doRequest(t, lib, http.MethodPost, "/users/", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created, 2)
	assert.Equal(t, int64(1), created[0].ID)
	assert.Equal(t, "Ana", created[0].Name)
	assert.Equal(t, int64(2), created[1].ID)
	assert.Equal(t, "Bruno", created[1].Name)
}

func TestCreateUsers_EmptyBatchSucceeds(t *testing.T) {
	called := false
	lib := &stubLibrary{
		createUsers: func(drafts []model.UserDraft) ([]model.User, error) {
			called = true
			return nil, nil
		},
	}

	rec := doRequest(t, lib, http.MethodPost, "/users/", `[]`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.False(t, called, "empty batch must not reach the store")
}

func TestCreateUsers_InvalidDraftRejectedBeforeStore(t *testing.T) {
	called := false
	lib := &stubLibrary{
		createUsers: func(drafts []model.UserDraft) ([]model.User, error) {
			called = true
			return nil, nil
		},
	}

	body := `[{"name":"Ana","address":"Rua A","phone":"111","email":"not-an-email","registration_date":"2024-01-05","user_type":"student"}]`
	rec := doRequest(t, lib, http.MethodPost, "/users/", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_record", decodeError(t, rec).Code)
	assert.False(t, called)
}

func TestCreateUsers_MalformedBody(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodPost, "/users/", `{"not":"an array"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestCreateBooks_MissingPublisherMapsTo404(t *testing.T) {
	lib := &stubLibrary{
		createBooks: func(drafts []model.BookDraft) ([]model.Book, error) {
			return nil, &store.ReferenceNotFound{Entity: "publisher", ID: 99}
		},
	}

	body := `[{"title":"Dom Casmurro","author":"Machado de Assis","category":"fiction","publication_year":1899,"status":"available","type":"physical","publisher_id":99}]`
	rec := doRequest(t, lib, http.MethodPost, "/books/", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "reference_not_found", resp.Code)
	assert.Contains(t, resp.Error, "publisher")
}

func TestCreateLoans_StoreFailureMapsTo500(t *testing.T) {
	lib := &stubLibrary{
		createLoans: func(drafts []model.LoanDraft) ([]model.Loan, error) {
			return nil, &store.PersistenceFailure{Op: "create loans", Cause: errors.New("connection refused")}
		},
	}

	body := `[{"book_id":1,"user_id":1,"loan_date":"2024-03-01","renewals":0,"status":"active","librarian_id":3}]`
	rec := doRequest(t, lib, http.MethodPost, "/loans/", body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "persistence_failure", resp.Code)
	// Internal detail stays in the log, not the response.
	assert.NotContains(t, resp.Error, "connection refused")
}

func TestCreateFines_UserIDFromRoute(t *testing.T) {
	var gotUserID int64
	lib := &stubLibrary{
		createFines: func(userID int64, drafts []model.FineDraft) ([]model.Fine, error) {
			gotUserID = userID
			fines := make([]model.Fine, len(drafts))
			for i, d := range drafts {
				fines[i] = model.Fine{ID: int64(i + 1), UserID: userID, FineDraft: d}
			}
			return fines, nil
		},
	}

	body := `[{"reason":"late return","start_date":"2024-03-01","end_date":"2024-03-15","amount":12.5}]`
	rec := doRequest(t, lib, http.MethodPost, "/users/7/fines/", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), gotUserID)

	var created []model.Fine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created, 1)
	assert.Equal(t, int64(7), created[0].UserID)
}

func TestCreateFines_NonIntegerUserID(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodPost, "/users/abc/fines/", `[]`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestListUsers_EmptyResultIsArray(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodGet, "/users/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFineTotals_ZeroTotalsPassThrough(t *testing.T) {
	lib := &stubLibrary{
		fineTotals: func() ([]store.UserFineTotal, error) {
			return []store.UserFineTotal{
				{UserID: 1, Name: "Ana", Total: decimal.RequireFromString("42.50")},
				{UserID: 2, Name: "Bruno", Total: decimal.Zero},
			}, nil
		},
	}

	rec := doRequest(t, lib, http.MethodGet, "/users/fines/total", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var totals []store.UserFineTotal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	require.Len(t, totals, 2)
	assert.True(t, totals[0].Total.Equal(decimal.RequireFromString("42.50")))
	assert.True(t, totals[1].Total.IsZero())
}

func TestMostLoanedBook_EmptyCatalogueIsNull(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodGet, "/books/most-loaned", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestTopRenewalUser_SingleRow(t *testing.T) {
	lib := &stubLibrary{
		topRenewalUser: func() (*store.UserRenewalTotal, error) {
			return &store.UserRenewalTotal{UserID: 3, Name: "Carla", Renewals: 11}, nil
		},
	}

	rec := doRequest(t, lib, http.MethodGet, "/users/top-renewals", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got store.UserRenewalTotal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, int64(11), got.Renewals)
}

func TestLoansByDate_RequiresParameter(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodGet, "/loans/by-date", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestLoansByDate_RejectsMalformedDate(t *testing.T) {
	rec := doRequest(t, &stubLibrary{}, http.MethodGet, "/loans/by-date?loan_date=03-2024-01", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoansByDate_PassesParsedDate(t *testing.T) {
	var gotDate model.Date
	lib := &stubLibrary{
		loansByDate: func(date model.Date) ([]model.Loan, error) {
			gotDate = date
			return nil, nil
		},
	}

	rec := doRequest(t, lib, http.MethodGet, "/loans/by-date?loan_date=2024-03-01", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-01", gotDate.String())
}

func TestReadFailure_MapsTo500(t *testing.T) {
	lib := &stubLibrary{
		listUsers: func() ([]model.User, error) {
			return nil, &store.PersistenceFailure{Op: "list users", Cause: errors.New("boom")}
		},
	}

	rec := doRequest(t, lib, http.MethodGet, "/users/", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "persistence_failure", decodeError(t, rec).Code)
}
