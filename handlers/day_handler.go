package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"akneDenikAPI/internal/types/userlog"
	"akneDenikAPI/services"
)

type DayHandler struct {
	progress *services.ProgressService
	photos   *services.PhotoService
}

func NewDayHandler(progress *services.ProgressService, photos *services.PhotoService) *DayHandler {
	return &DayHandler{progress: progress, photos: photos}
}

func (h *DayHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.progress.Profile(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *DayHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.progress.Today(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (h *DayHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := pathDay(w, r)
	if !ok {
		return
	}

	view, err := h.progress.Day(ctx, userID, day)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (h *DayHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := pathDay(w, r)
	if !ok {
		return
	}

	var req userlog.CompleteDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.progress.CompleteDay(ctx, userID, day, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// UploadPhoto expects multipart form fields "photo" (the image) and "type".
func (h *DayHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := pathDay(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(services.MaxPhotoBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Form field 'photo' is required")
		return
	}
	defer file.Close()
	if header.Size > services.MaxPhotoBytes {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Photo exceeds %d bytes", services.MaxPhotoBytes))
		return
	}

	photoType := userlog.PhotoType(strings.TrimSpace(r.FormValue("type")))
	if photoType == "" {
		photoType = userlog.PhotoSingle
	}

	photo, err := h.photos.Upload(ctx, userID, day, photoType, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, photo)
}

func (h *DayHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	logs, err := h.progress.Logs(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}
