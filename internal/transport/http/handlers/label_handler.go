package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/service"
	"github.com/notelyhq/notely/internal/transport/http/middleware"
	"github.com/notelyhq/notely/pkg/validator"
)

type LabelHandler struct {
	labelService *service.LabelService
}

func NewLabelHandler(labelService *service.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	labels, err := h.labelService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Printf("ERROR list labels: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(labels),
		"data":    labels,
	})
}

func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateLabelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateLabel(input.Name, input.Color); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	label, err := h.labelService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeLabelError(w, "create label", err)
		return
	}

	writeSuccess(w, http.StatusCreated, label)
}

func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	labelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Label not found")
		return
	}

	var input service.UpdateLabelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := make(validator.ValidationErrors)
	if input.Name != nil {
		validator.ValidateLabelName(*input.Name, errs)
	}
	if input.Color != nil {
		validator.ValidateLabelColor(*input.Color, errs)
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	label, err := h.labelService.Update(r.Context(), middleware.GetUserID(r.Context()), labelID, input)
	if err != nil {
		h.writeLabelError(w, "update label", err)
		return
	}

	writeSuccess(w, http.StatusOK, label)
}

func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	labelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Label not found")
		return
	}

	if err := h.labelService.Delete(r.Context(), middleware.GetUserID(r.Context()), labelID); err != nil {
		h.writeLabelError(w, "delete label", err)
		return
	}

	writeSuccess(w, http.StatusOK, struct{}{})
}

func (h *LabelHandler) writeLabelError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrLabelNotFound):
		writeError(w, http.StatusNotFound, "Label not found")
	case errors.Is(err, service.ErrLabelExists):
		writeError(w, http.StatusConflict, "Label with this name already exists")
	case errors.Is(err, service.ErrNotLabelOwner):
		writeError(w, http.StatusForbidden, "Not authorized to modify this label")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
