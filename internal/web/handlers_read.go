package web

import (
	"net/http"

	"github.com/biblioteca-dev/biblioteca/internal/model"
	"github.com/biblioteca-dev/biblioteca/internal/store"
)

// respondList writes a query result as a JSON array. An empty result set is a
// valid success and encodes as [].
func respondList[R any](s *Server, w http.ResponseWriter, r *http.Request, list func() ([]R, error)) {
	rows, err := list()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []R{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// respondSingle writes a single-row query result, encoding null when the
// underlying set is empty.
func respondSingle[R any](s *Server, w http.ResponseWriter, r *http.Request, single func() (*R, error)) {
	row, err := single()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.User, error) { return s.library.ListUsers(r.Context()) })
}

func (s *Server) handleListFines(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Fine, error) { return s.library.ListFines(r.Context()) })
}

func (s *Server) handleListPublishers(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Publisher, error) { return s.library.ListPublishers(r.Context()) })
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Book, error) { return s.library.ListBooks(r.Context()) })
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Event, error) { return s.library.ListEvents(r.Context()) })
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Loan, error) { return s.library.ListLoans(r.Context()) })
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.EventRegistration, error) { return s.library.ListRegistrations(r.Context()) })
}

func (s *Server) handleFineTotals(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.UserFineTotal, error) { return s.library.FineTotalsByUser(r.Context()) })
}

func (s *Server) handleFineStats(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.UserFineStats, error) { return s.library.FineStatsByUser(r.Context()) })
}

func (s *Server) handleActiveLoans(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.ActiveLoan, error) { return s.library.ActiveLoans(r.Context()) })
}

func (s *Server) handleMostLoanedBook(w http.ResponseWriter, r *http.Request) {
	respondSingle(s, w, r, func() (*store.BookLoanCount, error) { return s.library.MostLoanedBook(r.Context()) })
}

func (s *Server) handleFrequentBorrowers(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.UserLoanCount, error) { return s.library.FrequentBorrowers(r.Context()) })
}

func (s *Server) handleRegistrationCounts(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.UserRegistrationCount, error) { return s.library.RegistrationCountsByUser(r.Context()) })
}

func (s *Server) handleLatestBooks(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.PublisherLatestBook, error) { return s.library.LatestBookYearByPublisher(r.Context()) })
}

func (s *Server) handleEventsAboveAverageCapacity(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.Event, error) { return s.library.EventsAboveAverageCapacity(r.Context()) })
}

func (s *Server) handleUsersWithoutFines(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]model.User, error) { return s.library.UsersWithoutFines(r.Context()) })
}

func (s *Server) handleBookCountByCategory(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.CategoryBookCount, error) { return s.library.BookCountByCategory(r.Context()) })
}

// handleLoansByDate filters loans by an exact loan_date; the parameter is
// required and must be a calendar date.
func (s *Server) handleLoansByDate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("loan_date")
	if raw == "" {
		s.respondBadRequest(w, r, "loan_date query parameter is required")
		return
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		s.respondBadRequest(w, r, err.Error())
		return
	}

	respondList(s, w, r, func() ([]model.Loan, error) { return s.library.LoansByDate(r.Context(), date) })
}

func (s *Server) handleEventCountByType(w http.ResponseWriter, r *http.Request) {
	respondList(s, w, r, func() ([]store.EventTypeCount, error) { return s.library.EventCountByType(r.Context()) })
}

func (s *Server) handleTopRenewalUser(w http.ResponseWriter, r *http.Request) {
	respondSingle(s, w, r, func() (*store.UserRenewalTotal, error) { return s.library.TopRenewalUser(r.Context()) })
}
