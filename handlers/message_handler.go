package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/middleware"
	"akneDenikAPI/services"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	msgs, err := h.messages.Thread(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req message.SendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messages.Send(ctx, userID, req.Text)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.messages.MarkRead(ctx, userID, message.SenderUser)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *MessageHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req profile.RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.messages.RegisterDevice(ctx, userID, req.Token); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	convs, err := h.messages.Conversations(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, convs)
}

func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.messages.Thread(ctx, mux.Vars(r)["userId"])
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adminID, _ := middleware.GetUserID(ctx)
	var req message.SendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messages.Reply(ctx, mux.Vars(r)["userId"], adminID, req.Text)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.messages.MarkRead(ctx, mux.Vars(r)["userId"], message.SenderSupport)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"marked": n})
}
