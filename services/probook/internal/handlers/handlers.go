package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ramo2594/probook/libs/httpx"
	"github.com/ramo2594/probook/services/probook/internal/accounts"
	"github.com/ramo2594/probook/services/probook/internal/booking"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/session"
	"github.com/ramo2594/probook/services/probook/internal/views"
)

// Handler serves every HTML page of the application.
type Handler struct {
	bookings *booking.Service
	accounts *accounts.Service
	sessions *session.Manager
	views    *views.Renderer
	logger   *slog.Logger
	limit    httpx.Middleware
}

func New(bookings *booking.Service, accountsSvc *accounts.Service, sessions *session.Manager, renderer *views.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		bookings: bookings,
		accounts: accountsSvc,
		sessions: sessions,
		views:    renderer,
		logger:   logger,
	}
}

// WithRateLimit guards the form submission endpoints with m.
func (h *Handler) WithRateLimit(m httpx.Middleware) *Handler {
	h.limit = m
	return h
}

// Register mounts the page routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	limited := func(fn http.HandlerFunc) http.Handler {
		if h.limit == nil {
			return fn
		}
		return h.limit(fn)
	}
	private := func(fn http.HandlerFunc) http.Handler {
		return h.sessions.RequireLogin(h.requireActiveUser(fn))
	}

	mux.HandleFunc("/{$}", h.Home)
	mux.Handle("/book/{professional_id}/{$}", limited(h.PublicBooking))
	mux.HandleFunc("/booking/success/{booking_id}/{$}", h.BookingSuccess)
	mux.Handle("/accounts/login/{$}", limited(h.Login))
	mux.HandleFunc("/accounts/logout/{$}", h.Logout)
	mux.Handle("/dashboard/me/{$}", private(h.MyDashboard))
	mux.Handle("/dashboard/history/{$}", private(h.History))
	mux.Handle("/dashboard/{professional_id}/{$}", private(h.Dashboard))
	mux.HandleFunc("/", h.notFound)
}

// requireActiveUser ends sessions whose user no longer exists.
func (h *Handler) requireActiveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := session.FromContext(r.Context())
		if _, err := h.accounts.User(r.Context(), id.UserID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				h.sessions.Logout(w)
				http.Redirect(w, r, session.LoginPath, http.StatusFound)
				return
			}
			h.serverError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) page(r *http.Request, data any) views.Page {
	p := views.Page{Data: data}
	if id, ok := h.sessions.Current(r); ok {
		p.User = &views.PageUser{Username: id.Username}
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.views.Render(w, status, name, h.page(r, data)); err != nil {
		h.logger.Error("render failed", "page", name, "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type errorPage struct {
	Title   string
	Message string
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, views.PageError, errorPage{"Page not found", "The page you requested does not exist."})
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, views.PageError, errorPage{"Forbidden", "You do not have access to this page."})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "err", err, "path", r.URL.Path, "request_id", httpx.RequestIDFromContext(r.Context()))
	h.render(w, r, http.StatusInternalServerError, views.PageError, errorPage{"Something went wrong", "Please try again later."})
}

// lookupError renders 404 for missing records and 500 otherwise.
func (h *Handler) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	h.serverError(w, r, err)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
