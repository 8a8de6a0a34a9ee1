// Package web provides the HTTP surface of the service: bulk-create and list
// endpoints per entity plus the analytical read endpoints.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/biblioteca-dev/biblioteca/internal/config"
	"github.com/biblioteca-dev/biblioteca/internal/model"
	"github.com/biblioteca-dev/biblioteca/internal/store"
	webmiddleware "github.com/biblioteca-dev/biblioteca/internal/web/middleware"
)

// Library is the data-layer surface the handlers consume.
// *store.Store implements it; tests substitute a stub.
type Library interface {
	CreateUsers(ctx context.Context, drafts []model.UserDraft) ([]model.User, error)
	CreateFines(ctx context.Context, userID int64, drafts []model.FineDraft) ([]model.Fine, error)
	CreatePublishers(ctx context.Context, drafts []model.PublisherDraft) ([]model.Publisher, error)
	CreateBooks(ctx context.Context, drafts []model.BookDraft) ([]model.Book, error)
	CreateEvents(ctx context.Context, drafts []model.EventDraft) ([]model.Event, error)
	CreateLoans(ctx context.Context, drafts []model.LoanDraft) ([]model.Loan, error)
	CreateRegistrations(ctx context.Context, drafts []model.EventRegistrationDraft) ([]model.EventRegistration, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	ListFines(ctx context.Context) ([]model.Fine, error)
	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)
	ListRegistrations(ctx context.Context) ([]model.EventRegistration, error)

	FineTotalsByUser(ctx context.Context) ([]store.UserFineTotal, error)
	FineStatsByUser(ctx context.Context) ([]store.UserFineStats, error)
	ActiveLoans(ctx context.Context) ([]store.ActiveLoan, error)
	MostLoanedBook(ctx context.Context) (*store.BookLoanCount, error)
	FrequentBorrowers(ctx context.Context) ([]store.UserLoanCount, error)
	RegistrationCountsByUser(ctx context.Context) ([]store.UserRegistrationCount, error)
	LatestBookYearByPublisher(ctx context.Context) ([]store.PublisherLatestBook, error)
	EventsAboveAverageCapacity(ctx context.Context) ([]model.Event, error)
	UsersWithoutFines(ctx context.Context) ([]model.User, error)
	BookCountByCategory(ctx context.Context) ([]store.CategoryBookCount, error)
	LoansByDate(ctx context.Context, date model.Date) ([]model.Loan, error)
	EventCountByType(ctx context.Context) ([]store.EventTypeCount, error)
	TopRenewalUser(ctx context.Context) (*store.UserRenewalTotal, error)
}

// Server is the HTTP server for the library data API.
type Server struct {
	library Library
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *webmiddleware.RateLimiter
}

// NewServer creates a Server with its middleware chain and routes configured.
func NewServer(library Library, cfg *config.Config) *Server {
	s := &Server{
		library: library,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmiddleware.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	if s.cfg.Rate.Enabled {
		s.limiter = webmiddleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(s.limiter.Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/users", func(r chi.Router) {
		r.Post("/", s.handleCreateUsers)
		r.Get("/", s.handleListUsers)
		r.Post("/{user_id}/fines/", s.handleCreateFines)
		r.Post("/{user_id}/fines", s.handleCreateFines)

		r.Get("/fines/total", s.handleFineTotals)
		r.Get("/fines/stats", s.handleFineStats)
		r.Get("/frequent-borrowers", s.handleFrequentBorrowers)
		r.Get("/registrations/count", s.handleRegistrationCounts)
		r.Get("/without-fines", s.handleUsersWithoutFines)
		r.Get("/top-renewals", s.handleTopRenewalUser)
	})

	s.router.Route("/fines", func(r chi.Router) {
		r.Get("/", s.handleListFines)
	})

	s.router.Route("/publishers", func(r chi.Router) {
		r.Post("/", s.handleCreatePublishers)
		r.Get("/", s.handleListPublishers)
		r.Get("/latest-books", s.handleLatestBooks)
	})

	s.router.Route("/books", func(r chi.Router) {
		r.Post("/", s.handleCreateBooks)
		r.Get("/", s.handleListBooks)
		r.Get("/most-loaned", s.handleMostLoanedBook)
		r.Get("/count-by-category", s.handleBookCountByCategory)
	})

	s.router.Route("/events", func(r chi.Router) {
		r.Post("/", s.handleCreateEvents)
		r.Get("/", s.handleListEvents)
		r.Get("/above-average-capacity", s.handleEventsAboveAverageCapacity)
		r.Get("/count-by-type", s.handleEventCountByType)
	})

	s.router.Route("/loans", func(r chi.Router) {
		r.Post("/", s.handleCreateLoans)
		r.Get("/", s.handleListLoans)
		r.Get("/active", s.handleActiveLoans)
		r.Get("/by-date", s.handleLoansByDate)
	})

	s.router.Route("/registrations", func(r chi.Router) {
		r.Post("/", s.handleCreateRegistrations)
		r.Get("/", s.handleListRegistrations)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
