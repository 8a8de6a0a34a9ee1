package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/biblioteca-dev/biblioteca/internal/model"
)

// createBatch decodes a JSON array of drafts, validates every item at the
// boundary, and runs the batch through create. Either the whole batch comes
// back materialized with ids, or nothing was written.
func createBatch[D, R any](
	s *Server,
	w http.ResponseWriter,
	r *http.Request,
	create func([]D) ([]R, error),
) {
	var drafts []D
	if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
		s.respondBadRequest(w, r, "request body must be a JSON array of records: "+err.Error())
		return
	}
	if len(drafts) == 0 {
		writeJSON(w, http.StatusCreated, []R{})
		return
	}

	if err := model.ValidateBatch(drafts); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := create(drafts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCreateUsers(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.UserDraft) ([]model.User, error) {
		return s.library.CreateUsers(r.Context(), drafts)
	})
}

// handleCreateFines creates fines under /users/{user_id}/fines/; the parent
// user id comes from the route and is injected into every record.
func (s *Server) handleCreateFines(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		s.respondBadRequest(w, r, "user_id must be an integer")
		return
	}

	createBatch(s, w, r, func(drafts []model.FineDraft) ([]model.Fine, error) {
		return s.library.CreateFines(r.Context(), userID, drafts)
	})
}

func (s *Server) handleCreatePublishers(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.PublisherDraft) ([]model.Publisher, error) {
		return s.library.CreatePublishers(r.Context(), drafts)
	})
}

func (s *Server) handleCreateBooks(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.BookDraft) ([]model.Book, error) {
		return s.library.CreateBooks(r.Context(), drafts)
	})
}

func (s *Server) handleCreateEvents(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.EventDraft) ([]model.Event, error) {
		return s.library.CreateEvents(r.Context(), drafts)
	})
}

func (s *Server) handleCreateLoans(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.LoanDraft) ([]model.Loan, error) {
		return s.library.CreateLoans(r.Context(), drafts)
	})
}

func (s *Server) handleCreateRegistrations(w http.ResponseWriter, r *http.Request) {
	createBatch(s, w, r, func(drafts []model.EventRegistrationDraft) ([]model.EventRegistration, error) {
		return s.library.CreateRegistrations(r.Context(), drafts)
	})
}
