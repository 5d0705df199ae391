package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ramo2594/probook/services/probook/internal/accounts"
	"github.com/ramo2594/probook/services/probook/internal/forms"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"github.com/ramo2594/probook/services/probook/internal/views"
)

const invalidLoginMessage = "Please enter a correct username and password."

type loginData struct {
	Username string
	Errors   forms.Errors
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, views.PageLogin, loginData{})
		return
	case http.MethodPost:
	default:
		h.methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form, err := forms.DecodeLogin(r.PostForm)
	if err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	if errs := form.Validate(); errs != nil {
		h.render(w, r, http.StatusOK, views.PageLogin, loginData{Username: form.Username, Errors: errs})
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), form.Username, form.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		h.logger.Info("login rejected", "username", form.Username)
		h.render(w, r, http.StatusOK, views.PageLogin, loginData{
			Username: form.Username,
			Errors:   forms.Errors{forms.NonFieldErrors: invalidLoginMessage},
		})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := h.sessions.Login(w, u); err != nil {
		h.serverError(w, r, err)
		return
	}

	p, err := h.bookings.ProfessionalForUser(r.Context(), u.ID)
	switch {
	case err == nil:
		http.Redirect(w, r, fmt.Sprintf("/dashboard/%d/", p.ID), http.StatusFound)
	case errors.Is(err, model.ErrNotFound):
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	h.sessions.Logout(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
