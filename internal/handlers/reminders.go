package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prafullkumar/chronos/internal/middleware"
	"github.com/prafullkumar/chronos/internal/services"
	"github.com/prafullkumar/chronos/pkg/errors"
	"github.com/prafullkumar/chronos/pkg/response"
	"github.com/prafullkumar/chronos/pkg/validator"
)

// maxImageBytes caps the accepted upload size before compression.
const maxImageBytes = 10 << 20

// ReminderHandler exposes the reminder CRUD and listing endpoints.
type ReminderHandler struct {
	reminders *services.ReminderService
	home      *services.HomeService
}

// NewReminderHandler constructs a reminder handler.
func NewReminderHandler(reminders *services.ReminderService, home *services.HomeService) (*ReminderHandler, error) {
	if reminders == nil {
		return nil, stderrors.New("handlers: reminder service is required")
	}
	if home == nil {
		return nil, stderrors.New("handlers: home service is required")
	}
	return &ReminderHandler{reminders: reminders, home: home}, nil
}

type reminderPayload struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Emoji       string `json:"emoji" validate:"max=16"`
	Type        string `json:"type" validate:"max=64"`
	// DateTime is the fire time in milliseconds since the epoch.
	DateTime int64 `json:"dateTime" validate:"required,epochmillis"`
}

// bindReminderPayload reads the reminder fields plus an optional image. Plain
// JSON bodies carry no image; multipart bodies hold the JSON in a "payload"
// part and the picture in an "image" part.
func bindReminderPayload(c *gin.Context) (*reminderPayload, []byte, error) {
	contentType := c.ContentType()

	var payload reminderPayload
	var image []byte

	if strings.HasPrefix(contentType, "multipart/") {
		raw := c.PostForm("payload")
		if raw == "" {
			return nil, nil, errors.NewBadRequest("missing payload part")
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, nil, errors.NewBadRequest("invalid payload part")
		}

		if file, err := c.FormFile("image"); err == nil {
			if file.Size > maxImageBytes {
				return nil, nil, errors.NewBadRequest("image too large")
			}
			opened, err := file.Open()
			if err != nil {
				return nil, nil, errors.NewBadRequest("unreadable image part")
			}
			defer opened.Close()
			image, err = io.ReadAll(io.LimitReader(opened, maxImageBytes))
			if err != nil {
				return nil, nil, errors.NewBadRequest("unreadable image part")
			}
		}
	} else {
		if err := c.ShouldBindJSON(&payload); err != nil {
			return nil, nil, errors.NewBadRequest("invalid reminder payload")
		}
	}

	if err := validator.ValidateStruct(payload); err != nil {
		return nil, nil, errors.NewBadRequest(err.Error())
	}

	return &payload, image, nil
}

// Create persists a new reminder for the authenticated user.
func (h *ReminderHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	payload, image, err := bindReminderPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.reminders.Create(c.Request.Context(), userID, services.CreateReminderInput{
		Title:       payload.Title,
		Description: payload.Description,
		Emoji:       payload.Emoji,
		Type:        payload.Type,
		FireTime:    time.UnixMilli(payload.DateTime),
		Image:       image,
	})
	if err != nil {
		response.Error(c, mapReminderError(err))
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// List returns the user's reminders. The scope query selects the collection:
// upcoming (default), past, or grouped for the sectioned home screen view.
func (h *ReminderHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	switch c.DefaultQuery("scope", "upcoming") {
	case "upcoming":
		reminders, err := h.home.Upcoming(ctx, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, reminders)
	case "past":
		reminders, err := h.home.Past(ctx, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, reminders)
	case "grouped":
		sections, err := h.home.GroupedUpcoming(ctx, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, sections)
	default:
		response.Error(c, errors.NewBadRequest("unknown scope"))
	}
}

// Get returns a single reminder by id.
func (h *ReminderHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	reminder, err := h.reminders.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, mapReminderError(err))
		return
	}

	response.Success(c, http.StatusOK, reminder)
}

// Update overwrites a reminder document.
func (h *ReminderHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	payload, image, err := bindReminderPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	updated, err := h.reminders.Update(c.Request.Context(), userID, id, services.UpdateReminderInput{
		Title:       payload.Title,
		Description: payload.Description,
		Emoji:       payload.Emoji,
		Type:        payload.Type,
		FireTime:    time.UnixMilli(payload.DateTime),
		Image:       image,
	})
	if err != nil {
		response.Error(c, mapReminderError(err))
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// Delete removes a single reminder.
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.reminders.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, mapReminderError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// DeleteMany removes reminders in bulk. scope=all wipes everything, scope=past
// removes only reminders whose fire time has elapsed.
func (h *ReminderHandler) DeleteMany(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	switch c.Query("scope") {
	case "all":
		if err := h.reminders.DeleteAll(ctx, userID); err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": true})
	case "past":
		deleted, err := h.reminders.DeleteOlderThanNow(ctx, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
	default:
		response.Error(c, errors.NewBadRequest("scope must be all or past"))
	}
}

func mapReminderError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrReminderNotFound):
		return errors.NewNotFound("reminder not found")
	case stderrors.Is(err, services.ErrTitleRequired),
		stderrors.Is(err, services.ErrFireTimeRequired):
		return errors.NewBadRequest(err.Error())
	default:
		return err
	}
}
