package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dinnerboard/internal/bot"
	"dinnerboard/internal/models"
	"dinnerboard/internal/service"
)

// BotHandler handles the chat-bot integration endpoints: the cron-triggered
// reminder dispatch, recipient registration, custom schedules and the
// platform webhook.
type BotHandler struct {
	reminderService *service.ReminderService
	channelSecret   string
	cronSecret      string
}

// NewBotHandler creates a new bot handler
func NewBotHandler(reminderService *service.ReminderService, channelSecret, cronSecret string) *BotHandler {
	return &BotHandler{
		reminderService: reminderService,
		channelSecret:   channelSecret,
		cronSecret:      cronSecret,
	}
}

// requireCronSecret verifies the bearer token used by the external scheduler
func (h *BotHandler) requireCronSecret(w http.ResponseWriter, r *http.Request) bool {
	if h.cronSecret == "" {
		respondError(w, http.StatusServiceUnavailable, "reminder trigger not configured")
		return false
	}

	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid cron secret")
		return false
	}
	return true
}

// TriggerReminder runs one reminder dispatch pass. Meant to be invoked by an
// external cron around the reminder hour.
func (h *BotHandler) TriggerReminder(w http.ResponseWriter, r *http.Request) {
	if !h.requireCronSecret(w, r) {
		return
	}

	result, err := h.reminderService.Dispatch(r.Context(), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type registerRecipientRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// RegisterRecipient upserts an active reminder recipient
func (h *BotHandler) RegisterRecipient(w http.ResponseWriter, r *http.Request) {
	if !h.requireCronSecret(w, r) {
		return
	}

	var req registerRecipientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reminderService.RegisterRecipient(req.UserID, req.DisplayName, req.PictureURL); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UpdateSchedules bulk-upserts custom reminder schedules
func (h *BotHandler) UpdateSchedules(w http.ResponseWriter, r *http.Request) {
	if !h.requireCronSecret(w, r) {
		return
	}

	var schedules []models.ReminderSchedule
	if err := decodeJSON(r, &schedules); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reminderService.UpdateSchedules(schedules); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"stored": len(schedules)})
}

// webhookPayload mirrors the chat platform's event envelope
type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type    string `json:"type"`
	Source  struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// Webhook receives platform events: follows register the sender as a reminder
// recipient, unfollows deactivate them, and text messages get a keyword reply.
func (h *BotHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	if !bot.ValidateSignature(h.channelSecret, body, r.Header.Get("X-Signature")) {
		respondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	for _, event := range payload.Events {
		switch event.Type {
		case "follow":
			if err := h.reminderService.HandleFollow(r.Context(), event.Source.UserID, "", ""); err != nil {
				log.Printf("Webhook follow handling failed: %v", err)
			}
		case "unfollow":
			if err := h.reminderService.HandleUnfollow(event.Source.UserID); err != nil {
				log.Printf("Webhook unfollow handling failed: %v", err)
			}
		case "message":
			if event.Message.Type != "text" {
				continue
			}
			if err := h.reminderService.HandleTextMessage(r.Context(), event.Source.UserID, event.Message.Text); err != nil {
				log.Printf("Webhook message handling failed: %v", err)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
