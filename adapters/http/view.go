package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/logger"
)

// Page is what every template receives. User is nil for anonymous visitors.
type Page struct {
	Title string
	User  *session.User
	Flash *session.Flash
	Data  any
}

type errorView struct {
	Status  int
	Message string
}

type navStateView struct {
	Email string
	OTP   string
}

type themeOption struct {
	ID       portfolio.Theme
	Label    string
	Selected bool
}

type editorView struct {
	Doc        *portfolio.Document
	Themes     []themeOption
	Uploads    bool
	FormAction string
}

func newEditorView(doc *portfolio.Document, uploads bool, action string) editorView {
	opts := make([]themeOption, 0, len(portfolio.Themes))
	for _, t := range portfolio.Themes {
		opts = append(opts, themeOption{ID: t, Label: t.Label(), Selected: t == doc.Layout.Theme})
	}
	return editorView{Doc: doc, Themes: opts, Uploads: uploads, FormAction: action}
}

// pages renders templates with the navbar state and the pending flash of
// the current browser.
type pages struct {
	sessions *session.Provider
	logger   logger.Logger
}

// render shows flash if given, otherwise the one left by the previous request.
func (p pages) render(c *gin.Context, status int, name, title string, data any, flash *session.Flash) {
	page := Page{Title: title, Flash: flash, Data: data}

	clientID := ClientID(c)
	ctx := c.Request.Context()
	if s, ok, err := p.sessions.Load(ctx, clientID); err != nil {
		p.logger.Warn("Failed to load session for navbar", zap.Error(err))
	} else if ok {
		page.User = &s.User
	}

	if page.Flash == nil {
		f, err := p.sessions.TakeFlash(ctx, clientID)
		if err != nil {
			p.logger.Warn("Failed to read flash", zap.Error(err))
		}
		page.Flash = f
	}

	c.HTML(status, name, page)
}
