package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"naskahpad/internal/document/model"
	"naskahpad/internal/document/repository"
	"naskahpad/internal/document/service"
	"naskahpad/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDocRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, default title applies

	doc, err := h.Service.CreateDocument(r.Context(), req.Title)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create document: %v", err)
		http.Error(w, "Failed to create document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")

	doc, err := h.Service.GetDocument(r.Context(), docID)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to get document %s: %v", docID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")

	var req model.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateContent(r.Context(), docID, req.Content); err != nil {
		writeUpdateError(w, docID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")

	var req model.UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateTitle(r.Context(), docID, req.Title); err != nil {
		writeUpdateError(w, docID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeUpdateError(w http.ResponseWriter, docID string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Document not found", http.StatusNotFound)
	case errors.Is(err, service.ErrEmptyTitle):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Sugar.Errorf("Handler: Failed to update doc %s: %v", docID, err)
		http.Error(w, "Failed to update document", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Handler: Failed to encode response: %v", err)
	}
}
