package auth

import (
	"time"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/portli/internal/domain/session"
)

const (
	RedirectDelay      = 1500 * time.Millisecond
	ResetRedirectDelay = 2 * time.Second
)

var tracer = otel.Tracer("auth_usecase")

// Outcome is what a form submission produces: a notification and, when
// Next is set, a delayed navigation.
type Outcome struct {
	Flash session.Flash
	Next  string
	Delay time.Duration
}

func (o *Outcome) Succeeded() bool {
	return o.Flash.Kind == session.FlashSuccess
}

func (o *Outcome) Redirects() bool {
	return o.Next != ""
}

func rejected(msg string) *Outcome {
	return &Outcome{Flash: session.Flash{Kind: session.FlashError, Message: msg}}
}

func accepted(msg, next string, delay time.Duration) *Outcome {
	return &Outcome{
		Flash: session.Flash{Kind: session.FlashSuccess, Message: msg},
		Next:  next,
		Delay: delay,
	}
}
