package repository

import (
	"context"
)

// Dialogue steps for the multi-message store registration flow.
const (
	StepAwaitingStoreName  = "awaiting_store_name"
	StepAwaitingAPIKey     = "awaiting_api_key"
	StepAwaitingPrompt     = "awaiting_prompt"
	StepAwaitingEditPrompt = "awaiting_edit_prompt"
)

// ConversationState holds one user's progress in a multi-step dialogue.
type ConversationState struct {
	Step string            `json:"step"`
	Data map[string]string `json:"data"` // collected input, e.g. store_name, api_key
}

// StateRepository is the port for managing any user's conversational state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
