package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/session"
	"github.com/ramo2594/probook/services/probook/internal/views"
)

// ownProfessional resolves the professional profile of the signed-in user. It
// renders the "no professional" page and returns false when there is none.
func (h *Handler) ownProfessional(w http.ResponseWriter, r *http.Request) (model.Professional, bool) {
	id, _ := session.FromContext(r.Context())
	p, err := h.bookings.ProfessionalForUser(r.Context(), id.UserID)
	if errors.Is(err, model.ErrNotFound) {
		h.render(w, r, http.StatusOK, views.PageNoProfessional, nil)
		return model.Professional{}, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return model.Professional{}, false
	}
	return p, true
}

func (h *Handler) MyDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	p, ok := h.ownProfessional(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/dashboard/%d/", p.ID), http.StatusFound)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	professionalID, ok := pathID(r, "professional_id")
	if !ok {
		h.notFound(w, r)
		return
	}
	p, err := h.bookings.Professional(r.Context(), professionalID)
	if err != nil {
		h.lookupError(w, r, err)
		return
	}
	if id, _ := session.FromContext(r.Context()); p.UserID != id.UserID {
		h.forbidden(w, r)
		return
	}
	d, err := h.bookings.Dashboard(r.Context(), p.ID)
	if err != nil {
		h.lookupError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageDashboard, d)
}

type historyData struct {
	Professional model.Professional
	Bookings     []model.Booking
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	p, ok := h.ownProfessional(w, r)
	if !ok {
		return
	}
	bookings, err := h.bookings.History(r.Context(), p.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageHistory, historyData{Professional: p, Bookings: bookings})
}
