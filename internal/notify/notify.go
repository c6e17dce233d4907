// Package notify signals session completion. Delivery transports (email,
// SMS) live outside this system; the log notifier is the built-in
// implementation.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Notifier announces that a session's analysis is ready. Invoked exactly
// once per session, when the pipeline reaches its final state.
type Notifier interface {
	AnalysisReady(ctx context.Context, sessionIdentifier, email string) error
}

// LogNotifier writes the completion event to the structured log, including
// the deep link a delivery transport would send out.
type LogNotifier struct {
	log     zerolog.Logger
	baseURL string
}

func NewLogNotifier(log zerolog.Logger, baseURL string) *LogNotifier {
	return &LogNotifier{log: log, baseURL: baseURL}
}

func (n *LogNotifier) AnalysisReady(ctx context.Context, sessionIdentifier, email string) error {
	n.log.Info().
		Str("session", sessionIdentifier).
		Str("email", email).
		Str("link", fmt.Sprintf("%s/sessions/%s", n.baseURL, sessionIdentifier)).
		Msg("analysis ready")
	return nil
}
