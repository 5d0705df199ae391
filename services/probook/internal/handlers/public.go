package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ramo2594/probook/services/probook/internal/forms"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/views"
)

type homeData struct {
	Professional *model.Professional
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	p, ok, err := h.bookings.FirstProfessional(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := homeData{}
	if ok {
		data.Professional = &p
	}
	h.render(w, r, http.StatusOK, views.PageHome, data)
}

type bookingFormData struct {
	Professional model.Professional
	Form         forms.BookingForm
	Errors       forms.Errors
	MinDate      string
}

func (h *Handler) PublicBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}
	id, ok := pathID(r, "professional_id")
	if !ok {
		h.notFound(w, r)
		return
	}
	p, err := h.bookings.Professional(r.Context(), id)
	if err != nil {
		h.lookupError(w, r, err)
		return
	}

	now := h.bookings.Now()
	data := bookingFormData{Professional: p, MinDate: model.FormatDate(model.DateOf(now))}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, views.PagePublicBooking, data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form, err := forms.DecodeBooking(r.PostForm)
	if err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	b, errs := form.Validate(now)
	if errs != nil {
		data.Form = form
		data.Errors = errs
		h.render(w, r, http.StatusOK, views.PagePublicBooking, data)
		return
	}

	created, err := h.bookings.CreateBooking(r.Context(), p.ID, b)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/booking/success/%d/", created.ID), http.StatusFound)
}

type successData struct {
	Booking      model.Booking
	Professional model.Professional
}

func (h *Handler) BookingSuccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, ok := pathID(r, "booking_id")
	if !ok {
		h.notFound(w, r)
		return
	}
	b, p, err := h.bookings.Booking(r.Context(), id)
	if err != nil {
		h.lookupError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageBookingSuccess, successData{Booking: b, Professional: p})
}
