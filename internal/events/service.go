package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MinjunBark/ForRev/internal/models"
)

var (
	ErrNotFound         = errors.New("event not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
)

// EventDBLayer is the persistence surface the service depends on.
type EventDBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	GetEventByIDForOwner(ctx context.Context, id, userID int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByOwner(ctx context.Context, userID int64) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) (int64, error)
}

// EventInput is the write payload for create and full update. Field limits
// match the events table schema.
type EventInput struct {
	Title       string     `json:"title" validate:"required,max=20"`
	Description string     `json:"description" validate:"max=100"`
	Location    string     `json:"location" validate:"max=30"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// EventPatch carries only the fields a partial update supplies.
type EventPatch struct {
	Title       *string    `json:"title" validate:"omitempty,max=20"`
	Description *string    `json:"description" validate:"omitempty,max=100"`
	Location    *string    `json:"location" validate:"omitempty,max=30"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type EventService struct {
	DB       EventDBLayer
	validate *validator.Validate
}

func NewEventService(db EventDBLayer) *EventService {
	return &EventService{
		DB:       db,
		validate: validator.New(),
	}
}

// List returns all events, newest first.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// ListOwned returns the actor's own events, newest first.
func (s *EventService) ListOwned(ctx context.Context, actor *models.User) ([]models.Event, error) {
	events, err := s.DB.ListEventsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user %d: %w", actor.ID, err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// Get returns one event by ID. When scoped to an owner, an event belonging to
// someone else is indistinguishable from a missing one.
func (s *EventService) Get(ctx context.Context, id int64, owner *models.User) (*models.Event, error) {
	var event *models.Event
	var err error
	if owner != nil {
		event, err = s.DB.GetEventByIDForOwner(ctx, id, owner.ID)
	} else {
		event, err = s.DB.GetEventByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch event %d: %w", id, err)
	}
	return event, nil
}

// Create validates the payload and binds the new event to the actor. Any
// client-supplied owner is ignored by construction: the input has no owner
// field.
func (s *EventService) Create(ctx context.Context, actor *models.User, input EventInput) (*models.Event, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	now := time.Now().UTC()
	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CreatedBy:   &actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.CreatedByUsername = actor.Username
	return event, nil
}

// Update replaces all mutable fields of an event the actor owns.
func (s *EventService) Update(ctx context.Context, actor *models.User, id int64, input EventInput, scoped bool) (*models.Event, error) {
	event, err := s.fetchForWrite(ctx, actor, id, scoped)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

// Patch applies only the supplied fields of a partial update.
func (s *EventService) Patch(ctx context.Context, actor *models.User, id int64, patch EventPatch, scoped bool) (*models.Event, error) {
	event, err := s.fetchForWrite(ctx, actor, id, scoped)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.StartTime != nil {
		event.StartTime = patch.StartTime
	}
	if patch.EndTime != nil {
		event.EndTime = patch.EndTime
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

// Delete removes an event the actor owns.
func (s *EventService) Delete(ctx context.Context, actor *models.User, id int64, scoped bool) error {
	event, err := s.fetchForWrite(ctx, actor, id, scoped)
	if err != nil {
		return err
	}

	affected, err := s.DB.DeleteEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// fetchForWrite loads the target event and runs the authorization policy for
// an unsafe method. On the owner-scoped collection a foreign event surfaces
// as not found instead of forbidden.
func (s *EventService) fetchForWrite(ctx context.Context, actor *models.User, id int64, scoped bool) (*models.Event, error) {
	var owner *models.User
	if scoped {
		owner = actor
	}
	event, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if !Allows(actor, ActionWrite, event) {
		return nil, ErrPermissionDenied
	}
	return event, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
