package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MinjunBark/ForRev/internal/auth"
	"github.com/MinjunBark/ForRev/internal/events"
	"github.com/MinjunBark/ForRev/internal/logger"
	"github.com/MinjunBark/ForRev/internal/models"
	"github.com/MinjunBark/ForRev/internal/utils"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

// RegisterRoutes mounts both event collections. /events is world-readable
// with owner-gated writes; /user-events is entirely scoped to the caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{eventID}", h.GetEvent)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/", h.CreateEvent)
			r.Put("/{eventID}", h.UpdateEvent)
			r.Patch("/{eventID}", h.PatchEvent)
			r.Delete("/{eventID}", h.DeleteEvent)
		})
	})

	r.Route("/user-events", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.ListUserEvents)
		r.Get("/{eventID}", h.GetUserEvent)
		r.Post("/", h.CreateEvent)
		r.Put("/{eventID}", h.UpdateUserEvent)
		r.Patch("/{eventID}", h.PatchUserEvent)
		r.Delete("/{eventID}", h.DeleteUserEvent)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.List(r.Context())
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("List failed: %v", err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r.Context())
	list, err := h.EventService.ListOwned(r.Context(), actor)
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("List for user %d failed: %v", actor.ID, err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, false)
}

func (h *Handler) GetUserEvent(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, true)
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request, scoped bool) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var owner *models.User
	if scoped {
		owner, _ = auth.CurrentUser(r.Context())
	}

	event, err := h.EventService.Get(r.Context(), id, owner)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r.Context())

	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.EventService.Create(r.Context(), actor, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.Logger.Info("EVENT", fmt.Sprintf("User %q created event %d", actor.Username, event.ID))
	utils.RespondJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) UpdateUserEvent(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, scoped bool) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor, _ := auth.CurrentUser(r.Context())

	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.EventService.Update(r.Context(), actor, id, input, scoped)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, event)
}

func (h *Handler) PatchEvent(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, false)
}

func (h *Handler) PatchUserEvent(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, true)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request, scoped bool) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor, _ := auth.CurrentUser(r.Context())

	var input events.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.EventService.Patch(r.Context(), actor, id, input, scoped)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, false)
}

func (h *Handler) DeleteUserEvent(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, true)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, scoped bool) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor, _ := auth.CurrentUser(r.Context())

	if err := h.EventService.Delete(r.Context(), actor, id, scoped); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, events.ErrPermissionDenied):
		h.Logger.LogSecurity("EVENT_WRITE_DENIED", fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		utils.RespondError(w, http.StatusForbidden, "You do not have permission to modify this event")
	case errors.Is(err, events.ErrValidation):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("EVENT", fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err))
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// eventID parses the route parameter. A non-numeric ID can never exist, so it
// reads as not found rather than bad request.
func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Event not found")
		return 0, false
	}
	return id, true
}
