package broadcast

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/errx"
)

// RunParams configures one broadcast run.
type RunParams struct {
	ID        uuid.UUID `json:"id"`
	TimeOfDay string    `json:"time_of_day,omitempty"` // empty means derive from the clock
	Test      bool      `json:"test"`                  // resolve everything, send nothing
	TargetID  string    `json:"target_id,omitempty"`   // restrict DMs to a single member
}

// NewRunParams returns params for a run with a fresh id.
func NewRunParams() RunParams {
	return RunParams{ID: uuid.New()}
}

// Outcome is the result of a completed broadcast run.
type Outcome struct {
	ID          uuid.UUID     `json:"id"`
	TimeOfDay   string        `json:"time_of_day"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	ChannelSent bool          `json:"channel_sent"`
	Delivered   int           `json:"delivered"`
	Skipped     int           `json:"skipped"`
	Failed      []chat.Member `json:"failed,omitempty"` // members we could not DM, in roster order
}

// ===============================
// Errors
// ===============================

var ErrRegistry = errx.NewRegistry("BROADCAST")

var (
	CodeGuildUnavailable   = ErrRegistry.Register("GUILD_UNAVAILABLE", errx.TypeExternal, 502, "Guild could not be resolved")
	CodeChannelUnavailable = ErrRegistry.Register("CHANNEL_UNAVAILABLE", errx.TypeExternal, 502, "Broadcast channel could not be resolved")
	CodeRosterFailed       = ErrRegistry.Register("ROSTER_FAILED", errx.TypeExternal, 502, "Member roster could not be listed")
)

func ErrGuildUnavailable(cause error) *errx.Error {
	return ErrRegistry.New(CodeGuildUnavailable).WithCause(cause)
}

func ErrChannelUnavailable(cause error) *errx.Error {
	return ErrRegistry.New(CodeChannelUnavailable).WithCause(cause)
}

func ErrRosterFailed(cause error) *errx.Error {
	return ErrRegistry.New(CodeRosterFailed).WithCause(cause)
}
