package application

import (
	"time"

	"github.com/example/hacktown-ops/internal/batch"
	"github.com/example/hacktown-ops/internal/event"
	"github.com/example/hacktown-ops/internal/expansion"
)

// Principal represents the authenticated organizer invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// VenueInput captures caller provided venue fields. An empty code is filled
// from the backend's next code for the structure type.
type VenueInput struct {
	Code          string              `validate:"required,max=32"`
	Name          string              `validate:"required,max=200"`
	Location      string              `validate:"required,max=300"`
	Capacity      int                 `validate:"gte=0"`
	Description   *string             `validate:"omitempty,max=2000"`
	Nucleo        *string             `validate:"omitempty,max=100"`
	StructureType event.StructureType `validate:"omitempty,structure_type"`
}

// SlotTemplateInput captures caller provided slot template fields. AllDays
// selects the scope that follows the event days; otherwise Days must name at
// least one day.
type SlotTemplateInput struct {
	VenueID   string          `validate:"required"`
	StartTime string          `validate:"required,clock"`
	EndTime   string          `validate:"required,clock"`
	AllDays   bool
	Days      []event.WeekDay `validate:"dive,weekday"`
}

// ActivityInput captures caller provided activity fields.
type ActivityInput struct {
	Title       string  `validate:"required,max=300"`
	Speaker     string  `validate:"max=300"`
	Description *string `validate:"omitempty,max=5000"`
}

// BatchDaysInput captures a batch day reassignment request.
type BatchDaysInput struct {
	TemplateIDs []string
	TargetDays  []event.WeekDay
	Mode        batch.Mode
}

// SlotTemplateResult carries a written template and the same-venue overlaps
// it takes part in.
type SlotTemplateResult struct {
	Template event.SlotTemplate
	Overlaps []expansion.Overlap
}

// BatchFailure records a planned update the backend rejected.
type BatchFailure struct {
	TemplateID string
	Err        error
}

// BatchResult summarises ApplyDays.
type BatchResult struct {
	Updated []event.SlotTemplate
	Skipped []batch.Skip
	Failed  []BatchFailure
}

// DefaultSlotsResult is returned by ApplyDefaultSlots.
type DefaultSlotsResult struct {
	Message      string
	SlotsCreated int
}

// User represents an organizer account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user. Token is
// the signed session JWT.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
}
