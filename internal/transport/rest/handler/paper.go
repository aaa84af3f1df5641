package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"paperbuilder/internal/confirm"
	"paperbuilder/internal/model"
	"paperbuilder/internal/persist"
	"paperbuilder/internal/service"
	"paperbuilder/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

const maxImportBytes = 10 << 20

// AutosaveErrorHeader is set when a change was applied but could not be saved
const AutosaveErrorHeader = "X-Autosave-Error"

// PaperHandler exposes the paper editor. Deletions are only ever recorded
// here; they run when the author confirms them.
type PaperHandler struct {
	editor *service.Editor
	gate   *confirm.Gate
}

// NewPaperHandler creates a new paper handler
func NewPaperHandler(editor *service.Editor, gate *confirm.Gate) *PaperHandler {
	return &PaperHandler{
		editor: editor,
		gate:   gate,
	}
}

// SectionRequest is the request body for creating or editing a section
type SectionRequest struct {
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
}

// RenameRequest is the request body for an inline title edit
type RenameRequest struct {
	Title string `json:"title"`
}

// GroupRequest is the request body for creating or editing a question group
type GroupRequest struct {
	Type        model.QuestionType `json:"type"`
	Instruction string             `json:"instruction"`
	Logic       model.Logic        `json:"logic,omitempty"`
}

// ReorderRequest carries the complete new section order
type ReorderRequest struct {
	Order []string `json:"order"`
}

// MoveRequest moves one section from one position to another
type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// PaperResponse is the paper (or a filtered view of it) with derived numbering
type PaperResponse struct {
	Query         string         `json:"query,omitempty"`
	Paper         model.Document `json:"paper"`
	Numbering     map[string]int `json:"numbering"`
	QuestionCount int            `json:"questionCount"`
}

// PendingResponse describes an action awaiting confirmation
type PendingResponse struct {
	Pending *confirm.Action `json:"pending"`
	Prompt  string          `json:"prompt,omitempty"`
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

// writeResult writes data, flagging a failed autosave in a header. Any other
// error is written as an error response.
func writeResult(w http.ResponseWriter, status int, data interface{}, err error) {
	if err != nil && !errors.Is(err, service.ErrSaveFailed) {
		writeEditorError(w, err)
		return
	}
	if err != nil {
		w.Header().Set(AutosaveErrorHeader, err.Error())
	}
	writeJSON(w, status, data)
}

func writeEditorError(w http.ResponseWriter, err error) {
	var verr *persist.ValidationError
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, confirm.ErrNothingPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "invalid document",
			"problems": problemStrings(verr.Problems),
		})
	case errors.Is(err, model.ErrEmptyTitle),
		errors.Is(err, model.ErrInvalidType),
		errors.Is(err, model.ErrInvalidLogic),
		errors.Is(err, model.ErrInvalidContent),
		errors.Is(err, model.ErrInvalidReorder),
		errors.Is(err, persist.ErrParseFailed),
		errors.Is(err, persist.ErrInvalidFormat),
		errors.Is(err, confirm.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func problemStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// Get handles GET /v1/paper?q=
func (h *PaperHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	doc := h.editor.Filter(q)
	writeJSON(w, http.StatusOK, PaperResponse{
		Query:         q,
		Paper:         doc,
		Numbering:     doc.Numbering(),
		QuestionCount: doc.QuestionCount(),
	})
}

// AddSection handles POST /v1/paper/sections
func (h *PaperHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	section, err := h.editor.AddSection(r.Context(), req.Title, req.Instruction)
	writeResult(w, http.StatusCreated, section, err)
}

// EditSection handles PUT /v1/paper/sections/{sectionId}
func (h *PaperHandler) EditSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := mux.Vars(r)["sectionId"]
	err := h.editor.EditSection(r.Context(), id, req.Title, req.Instruction)
	writeResult(w, http.StatusOK, map[string]string{"sectionId": id}, err)
}

// RenameSection handles PATCH /v1/paper/sections/{sectionId}/title
func (h *PaperHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := mux.Vars(r)["sectionId"]
	err := h.editor.RenameSection(r.Context(), id, req.Title)
	writeResult(w, http.StatusOK, map[string]string{"sectionId": id}, err)
}

// DuplicateSection handles POST /v1/paper/sections/{sectionId}/duplicate
func (h *PaperHandler) DuplicateSection(w http.ResponseWriter, r *http.Request) {
	section, err := h.editor.DuplicateSection(r.Context(), mux.Vars(r)["sectionId"])
	writeResult(w, http.StatusCreated, section, err)
}

// ReorderSections handles PUT /v1/paper/sections/order
func (h *PaperHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.editor.ReorderSections(r.Context(), req.Order)
	writeResult(w, http.StatusOK, map[string][]string{"order": req.Order}, err)
}

// MoveSection handles POST /v1/paper/sections/move
func (h *PaperHandler) MoveSection(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.editor.MoveSection(r.Context(), req.From, req.To)
	writeResult(w, http.StatusOK, req, err)
}

// DeleteSection handles DELETE /v1/paper/sections/{sectionId}
func (h *PaperHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	h.requestConfirm(w, r, confirm.Action{
		Kind:      confirm.KindDeleteSection,
		SectionID: mux.Vars(r)["sectionId"],
	})
}

// AddGroup handles POST /v1/paper/sections/{sectionId}/groups
func (h *PaperHandler) AddGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.editor.AddGroup(r.Context(), mux.Vars(r)["sectionId"], req.Type, req.Instruction, req.Logic)
	writeResult(w, http.StatusCreated, group, err)
}

// EditGroup handles PUT /v1/paper/sections/{sectionId}/groups/{groupId}
func (h *PaperHandler) EditGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vars := mux.Vars(r)
	err := h.editor.EditGroup(r.Context(), vars["sectionId"], vars["groupId"], req.Type, req.Instruction, req.Logic)
	writeResult(w, http.StatusOK, map[string]string{"groupId": vars["groupId"]}, err)
}

// DeleteGroup handles DELETE /v1/paper/sections/{sectionId}/groups/{groupId}
func (h *PaperHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.requestConfirm(w, r, confirm.Action{
		Kind:      confirm.KindDeleteGroup,
		SectionID: vars["sectionId"],
		GroupID:   vars["groupId"],
	})
}

// AddQuestion handles POST /v1/paper/sections/{sectionId}/groups/{groupId}/questions
func (h *PaperHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var q model.Question
	if err := decode(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vars := mux.Vars(r)
	question, err := h.editor.AddQuestion(r.Context(), vars["sectionId"], vars["groupId"], q)
	writeResult(w, http.StatusCreated, question, err)
}

// EditQuestion handles PUT /v1/paper/sections/{sectionId}/groups/{groupId}/questions/{questionId}
func (h *PaperHandler) EditQuestion(w http.ResponseWriter, r *http.Request) {
	var q model.Question
	if err := decode(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vars := mux.Vars(r)
	err := h.editor.EditQuestion(r.Context(), vars["sectionId"], vars["groupId"], vars["questionId"], q)
	writeResult(w, http.StatusOK, map[string]string{"questionId": vars["questionId"]}, err)
}

// DeleteQuestion handles DELETE /v1/paper/sections/{sectionId}/groups/{groupId}/questions/{questionId}
func (h *PaperHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.requestConfirm(w, r, confirm.Action{
		Kind:       confirm.KindDeleteQuestion,
		SectionID:  vars["sectionId"],
		GroupID:    vars["groupId"],
		QuestionID: vars["questionId"],
	})
}

func (h *PaperHandler) requestConfirm(w http.ResponseWriter, r *http.Request, action confirm.Action) {
	pending, err := h.gate.RequestConfirm(r.Context(), middleware.GetAuthorID(r.Context()), action)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, PendingResponse{Pending: pending, Prompt: pending.Prompt()})
}

// GetPending handles GET /v1/paper/confirm
func (h *PaperHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.gate.Pending(r.Context(), middleware.GetAuthorID(r.Context()))
	if errors.Is(err, confirm.ErrNothingPending) {
		writeJSON(w, http.StatusOK, PendingResponse{})
		return
	}
	if err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PendingResponse{Pending: pending, Prompt: pending.Prompt()})
}

// Confirm handles POST /v1/paper/confirm
func (h *PaperHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	action, err := h.gate.Confirm(r.Context(), middleware.GetAuthorID(r.Context()))
	writeResult(w, http.StatusOK, map[string]interface{}{"executed": action}, err)
}

// Cancel handles DELETE /v1/paper/confirm
func (h *PaperHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Cancel(r.Context(), middleware.GetAuthorID(r.Context())); err != nil {
		writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// Export handles GET /v1/paper/export
func (h *PaperHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.editor.ExportJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, persist.ExportFileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /v1/paper/import. The body is the exported file as-is.
func (h *PaperHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	err = h.editor.ImportJSON(r.Context(), data)
	doc := h.editor.Document()
	writeResult(w, http.StatusOK, map[string]int{
		"sections":  len(doc),
		"questions": doc.QuestionCount(),
	}, err)
}
