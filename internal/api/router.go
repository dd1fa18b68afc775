package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/librarylab/library-backend/internal/api/handlers"
	"github.com/librarylab/library-backend/internal/auth"
	"github.com/librarylab/library-backend/internal/config"
	"github.com/librarylab/library-backend/internal/metrics"
	"github.com/librarylab/library-backend/internal/middleware"
	"github.com/librarylab/library-backend/internal/services"
)

type RouterDeps struct {
	Cfg         config.Config
	TM          *auth.TokenManager
	UserSvc     *services.UserService
	BookSvc     *services.BookService
	BorrowerSvc *services.BorrowerService
	LoanSvc     *services.LoanService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.UserSvc)
	booksH := handlers.NewBooksHandler(d.BookSvc)
	borrowersH := handlers.NewBorrowersHandler(d.BorrowerSvc)
	loansH := handlers.NewLoansHandler(d.LoanSvc)
	authMW := middleware.NewAuthMiddleware(d.TM)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		// everything below requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Route("/books", func(r chi.Router) {
				r.Get("/", booksH.List)
				r.Post("/", booksH.Create)
				r.Get("/{id}", booksH.Get)
				r.Put("/{id}", booksH.Update)
				r.Delete("/{id}", booksH.Delete)
			})

			r.Route("/borrowers", func(r chi.Router) {
				r.Get("/", borrowersH.List)
				r.Post("/", borrowersH.Create)
				r.Get("/{id}", borrowersH.Get)
				r.Put("/{id}", borrowersH.Update)
				r.Delete("/{id}", borrowersH.Delete)
			})

			r.Get("/loans", loansH.List)
			r.Get("/loans/overdue", loansH.ListOverdue)
			r.Post("/loans", loansH.Issue)
			r.Post("/returns", loansH.Return)
		})
	})

	return r
}
