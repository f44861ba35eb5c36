package memory

import (
	"net/http"
	"time"

	"github.com/hoshino-dev/hoshi/pkg/errx"
)

// ============================================================================
// Memory Entities
// ============================================================================

// Role identifies the speaker of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation
type Turn struct {
	Role      Role      `json:"role" db:"role"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"ts" db:"ts"`
}

// NewTurn creates a turn stamped with the current time
func NewTurn(role Role, name, content string) Turn {
	return Turn{
		Role:      role,
		Name:      name,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Record is the bounded conversational memory for one identity.
// Summary holds the compacted recap of older turns; Messages holds the
// recent raw turns, oldest first. CharCount tracks the content characters
// currently held in Messages plus Summary and is recomputed (never trusted
// incrementally) whenever a compaction runs.
type Record struct {
	Summary   string    `json:"summary" db:"summary"`
	Messages  []Turn    `json:"messages" db:"messages"`
	CharCount int       `json:"char_count" db:"char_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmptyRecord returns a fresh record with no history
func EmptyRecord() Record {
	return Record{
		Summary:   "",
		Messages:  []Turn{},
		CharCount: 0,
	}
}

// ContentChars recomputes the true character count from current contents
func (r Record) ContentChars() int {
	total := len(r.Summary)
	for _, t := range r.Messages {
		total += len(t.Content)
	}
	return total
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("MEMORY")

var (
	CodeRecordNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Memory record not found")
	CodeStoreFailure   = ErrRegistry.Register("STORE_FAILURE", errx.TypeExternal, http.StatusBadGateway, "Memory store operation failed")
)

func ErrRecordNotFound() *errx.Error {
	return ErrRegistry.New(CodeRecordNotFound)
}

func ErrStoreFailure() *errx.Error {
	return ErrRegistry.New(CodeStoreFailure)
}
