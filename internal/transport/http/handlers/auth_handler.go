package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/notelyhq/notely/internal/service"
	"github.com/notelyhq/notely/internal/transport/http/middleware"
	"github.com/notelyhq/notely/pkg/validator"
)

const tokenCookieTTL = 24 * time.Hour

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateRegister(input.Name, input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.authService.Register(r.Context(), input); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, service.ErrMailDelivery):
			writeError(w, http.StatusInternalServerError, "Email could not be sent")
		default:
			log.Printf("ERROR register: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Activation email sent")
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Activate(r.Context(), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "Invalid or expired activation token")
		} else {
			log.Printf("ERROR activate: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	setTokenCookie(w, resp.AccessToken)
	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		} else {
			log.Printf("ERROR login: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	setTokenCookie(w, resp.AccessToken)
	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	writeSuccess(w, http.StatusOK, struct{}{})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			log.Printf("ERROR me: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateDetailsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateDetails(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR updatedetails: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := make(validator.ValidationErrors)
	validator.ValidatePassword(input.NewPassword, errs)
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.UpdatePassword(r.Context(), middleware.GetUserID(r.Context()), input.CurrentPassword, input.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		} else {
			log.Printf("ERROR updatepassword: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	setTokenCookie(w, resp.AccessToken)
	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]string
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.authService.UpdatePreferences(r.Context(), middleware.GetUserID(r.Context()), prefs)
	if err != nil {
		log.Printf("ERROR preferences: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeSuccess(w, http.StatusOK, updated)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), input.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "No user with that email")
		case errors.Is(err, service.ErrMailDelivery):
			writeError(w, http.StatusInternalServerError, "Email could not be sent")
		default:
			log.Printf("ERROR forgotpassword: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := make(validator.ValidationErrors)
	validator.ValidatePassword(input.Password, errs)
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.ResetPassword(r.Context(), r.PathValue("token"), input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "Invalid or expired token")
		} else {
			log.Printf("ERROR resetpassword: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	setTokenCookie(w, resp.AccessToken)
	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Please upload a file")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please upload a file")
		return
	}
	defer file.Close()

	user, err := h.authService.UpdateAvatar(r.Context(), middleware.GetUserID(r.Context()),
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		log.Printf("ERROR avatar: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(tokenCookieTTL),
		HttpOnly: true,
	})
}
