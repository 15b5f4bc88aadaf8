package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MinjunBark/ForRev/internal/auth"
	"github.com/MinjunBark/ForRev/internal/logger"
	"github.com/MinjunBark/ForRev/internal/users"
	"github.com/MinjunBark/ForRev/internal/utils"
)

// Handler serves the identity administration endpoints. Everything here
// requires an authenticated session.
type Handler struct {
	UserService *users.UserService
	Logger      *logger.Logger
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.ListGroups)
		r.Get("/{groupID}", h.GetGroup)
		r.Post("/", h.CreateGroup)
		r.Put("/{groupID}", h.UpdateGroup)
		r.Delete("/{groupID}", h.DeleteGroup)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("USERS", fmt.Sprintf("List failed: %v", err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", "User not found")
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "User not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", "User not found")
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), id, req.Username, req.Email)
	if err != nil {
		h.respondServiceError(w, err, "User not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", "User not found")
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListGroups(r.Context())
	if err != nil {
		h.Logger.Error("USERS", fmt.Sprintf("List groups failed: %v", err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to list groups")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "groupID", "Group not found")
	if !ok {
		return
	}

	group, err := h.UserService.GetGroup(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Group not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, group)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	group, err := h.UserService.CreateGroup(r.Context(), req.Name)
	if err != nil {
		h.Logger.Error("USERS", fmt.Sprintf("Create group failed: %v", err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create group")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, group)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "groupID", "Group not found")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	group, err := h.UserService.UpdateGroup(r.Context(), id, req.Name)
	if err != nil {
		h.respondServiceError(w, err, "Group not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "groupID", "Group not found")
	if !ok {
		return
	}

	if err := h.UserService.DeleteGroup(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "Group not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, users.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	h.Logger.Error("USERS", err.Error())
	utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
}

func pathID(w http.ResponseWriter, r *http.Request, param, notFoundMsg string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, notFoundMsg)
		return 0, false
	}
	return id, true
}
