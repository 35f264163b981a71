package handlers

import (
	"context"
	"net/http"
	"time"

	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/middleware"
	"akneDenikAPI/services"
)

// ContentHandler serves the administrator's day content editor.
type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	days, err := h.content.List(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, days)
}

// Get returns what users see for the day, generated content included.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	c, err := h.content.Resolve(ctx, day)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	var req daycontent.UpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	adminID, _ := middleware.GetUserID(ctx)

	c, err := h.content.Put(ctx, day, req, adminID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	if err := h.content.Delete(ctx, day); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
