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

const maxNoteImages = 5

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Printf("ERROR list notes: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(notes),
		"data":    notes,
	})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateNote(input.Title); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	note, err := h.noteService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeNoteError(w, "create note", err)
		return
	}

	writeSuccess(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	note, passwordRequired, err := h.noteService.Get(r.Context(), middleware.GetUserID(r.Context()), noteID)
	if err != nil {
		h.writeNoteError(w, "get note", err)
		return
	}

	if passwordRequired {
		// Not an error: the client is told to prompt for the password and
		// call the verify endpoint. Only the note header is included.
		writeJSON(w, http.StatusOK, map[string]any{
			"success":             true,
			"isPasswordProtected": true,
			"data":                note,
		})
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) Verify(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	var input struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide a password")
		return
	}

	note, err := h.noteService.VerifyPassword(r.Context(), middleware.GetUserID(r.Context()), noteID, input.Password)
	if err != nil {
		h.writeNoteError(w, "verify note password", err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	var input service.UpdateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Title != nil {
		if errs := validator.ValidateNote(*input.Title); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}

	note, err := h.noteService.Update(r.Context(), middleware.GetUserID(r.Context()), noteID, input)
	if err != nil {
		h.writeNoteError(w, "update note", err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if err := h.noteService.Delete(r.Context(), middleware.GetUserID(r.Context()), noteID); err != nil {
		h.writeNoteError(w, "delete note", err)
		return
	}

	writeSuccess(w, http.StatusOK, struct{}{})
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Please provide a search query")
		return
	}

	notes, err := h.noteService.Search(r.Context(), middleware.GetUserID(r.Context()), query)
	if err != nil {
		log.Printf("ERROR search notes: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(notes),
		"data":    notes,
	})
}

func (h *NoteHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Please upload at least one file")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "Please upload at least one file")
		return
	}
	if len(files) > maxNoteImages {
		writeError(w, http.StatusBadRequest, "Too many files")
		return
	}

	var uploads []service.ImageUpload
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid file upload")
			return
		}
		defer f.Close()
		uploads = append(uploads, service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      f,
		})
	}

	note, err := h.noteService.AddImages(r.Context(), middleware.GetUserID(r.Context()), noteID, uploads)
	if err != nil {
		h.writeNoteError(w, "upload images", err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	noteID, userID, ok := h.collaboratorIDs(w, r)
	if !ok {
		return
	}

	note, err := h.noteService.AddCollaborator(r.Context(), middleware.GetUserID(r.Context()), noteID, userID)
	if err != nil {
		h.writeNoteError(w, "add collaborator", err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	noteID, userID, ok := h.collaboratorIDs(w, r)
	if !ok {
		return
	}

	note, err := h.noteService.RemoveCollaborator(r.Context(), middleware.GetUserID(r.Context()), noteID, userID)
	if err != nil {
		h.writeNoteError(w, "remove collaborator", err)
		return
	}

	writeSuccess(w, http.StatusOK, note)
}

func (h *NoteHandler) collaboratorIDs(w http.ResponseWriter, r *http.Request) (noteID, userID uuid.UUID, ok bool) {
	noteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return uuid.Nil, uuid.Nil, false
	}
	return noteID, userID, true
}

func (h *NoteHandler) writeNoteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Only the note owner can perform this action")
	case errors.Is(err, service.ErrNotCollaborator):
		writeError(w, http.StatusForbidden, "Not authorized to access this note")
	case errors.Is(err, service.ErrPasswordMismatch):
		writeError(w, http.StatusUnauthorized, "Incorrect password")
	case errors.Is(err, service.ErrPasswordMissing):
		writeError(w, http.StatusBadRequest, "Password protection requires a password")
	case errors.Is(err, service.ErrAlreadyCollaborator):
		writeError(w, http.StatusBadRequest, "User is already a collaborator")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
