package ai

import "context"

// SuggestionInput carries the entry-derived context used to draft feedback.
type SuggestionInput struct {
	Mood               string
	Reflection         string
	ProblemExplanation string
}

// ChatTurn is one prior exchange in a student conversation.
type ChatTurn struct {
	Role string
	Text string
}

// Suggester drafts teacher feedback and answers student chat turns.
type Suggester interface {
	SuggestFeedback(ctx context.Context, input SuggestionInput) (string, error)
	Chat(ctx context.Context, transcript []ChatTurn, message string) (string, error)
}
