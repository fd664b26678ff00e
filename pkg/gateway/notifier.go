package gateway

import (
	"context"

	"github.com/voyago/voyago-client/pkg/logger"
)

// Notifier surfaces a classified error to the user. Implementations must not
// block; the rejection is returned to the caller regardless.
type Notifier interface {
	Notify(env *Envelope)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(env *Envelope)

func (f NotifierFunc) Notify(env *Envelope) {
	f(env)
}

// LogNotifier is the default presentation surface: a warn-level structured
// log line carrying the user-facing message.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(env *Envelope) {
	if n == nil || n.logg == nil || env == nil {
		return
	}
	ctx := n.logg.WithField(context.Background(), "status_code", env.StatusCode)
	n.logg.Warn(ctx, env.Message)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(*Envelope) {}
