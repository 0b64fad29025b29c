package http

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

const (
	maxUploadBytes        = 8 << 20
	fieldAction           = "action"
	fieldProfileImageFile = "profile_image_file"
)

type EditorHandler struct {
	openEditorUseCase    *portfolioUC.OpenEditorUseCase
	editPortfolioUseCase *portfolioUC.EditPortfolioUseCase
	pages                pages
}

func NewEditorHandler(
	openUC *portfolioUC.OpenEditorUseCase,
	editUC *portfolioUC.EditPortfolioUseCase,
	sessions *session.Provider,
	log logger.Logger,
) *EditorHandler {
	return &EditorHandler{
		openEditorUseCase:    openUC,
		editPortfolioUseCase: editUC,
		pages:                pages{sessions: sessions, logger: log},
	}
}

func (h *EditorHandler) Open(c *gin.Context) {
	doc, err := h.openEditorUseCase.Execute(c.Request.Context(), ClientID(c))
	if err != nil {
		c.Error(err)
		return
	}
	view := newEditorView(doc, h.editPortfolioUseCase.UploadsEnabled(), c.Request.URL.Path)
	h.pages.render(c, http.StatusOK, "editor", "Edit Portfolio", view, nil)
}

func (h *EditorHandler) Submit(c *gin.Context) {
	input, cleanup, err := parseEditForm(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer cleanup()

	out, err := h.editPortfolioUseCase.Execute(c.Request.Context(), ClientID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	if out.Saved {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	view := newEditorView(out.Document, h.editPortfolioUseCase.UploadsEnabled(), c.Request.URL.Path)
	h.pages.render(c, http.StatusOK, "editor", "Edit Portfolio", view, out.Flash)
}

// parseEditForm turns the posted editor form into field updates. When a
// key is posted more than once (checkbox behind its hidden "off" input)
// the last value wins.
func parseEditForm(c *gin.Context) (portfolioUC.EditInput, func(), error) {
	var input portfolioUC.EditInput
	cleanup := func() {}

	err := c.Request.ParseMultipartForm(maxUploadBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return input, cleanup, apperror.NewInvalidInput("cannot read editor form", err)
	}

	form := c.Request.PostForm
	if input.Action, err = portfolioUC.ParseAction(form.Get(fieldAction)); err != nil {
		return input, cleanup, err
	}

	for _, name := range slices.Sorted(maps.Keys(form)) {
		// an empty file input still arrives as a form value
		if name == fieldAction || name == fieldProfileImageFile {
			continue
		}
		values := form[name]
		input.Fields = append(input.Fields, portfolioUC.FieldUpdate{Name: name, Value: values[len(values)-1]})
	}

	if c.Request.MultipartForm != nil {
		if headers := c.Request.MultipartForm.File[fieldProfileImageFile]; len(headers) > 0 && headers[0].Size > 0 {
			f, err := headers[0].Open()
			if err != nil {
				return input, cleanup, apperror.NewInvalidInput(fmt.Sprintf("cannot open %s", fieldProfileImageFile), err)
			}
			input.ProfileImage = f
			cleanup = func() { f.Close() }
		}
	}
	return input, cleanup, nil
}
