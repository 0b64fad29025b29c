package portfolio

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

const profileImageFolder = "portli/profile"

type ActionKind string

const (
	ActionNone   ActionKind = ""
	ActionAdd    ActionKind = "add"
	ActionRemove ActionKind = "remove"
	ActionSave   ActionKind = "save"
)

// Action is the button the user pressed: "add:<section>",
// "remove:<section>:<index>", "save", or nothing.
type Action struct {
	Kind    ActionKind
	Section portfolio.Section
	Index   int
}

func ParseAction(s string) (Action, error) {
	parts := strings.Split(s, ":")
	switch ActionKind(parts[0]) {
	case ActionNone:
		return Action{}, nil
	case ActionSave:
		return Action{Kind: ActionSave}, nil
	case ActionAdd:
		if len(parts) != 2 {
			break
		}
		section, err := portfolio.ParseSection(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionAdd, Section: section}, nil
	case ActionRemove:
		if len(parts) != 3 {
			break
		}
		section, err := portfolio.ParseSection(parts[1])
		if err != nil {
			return Action{}, err
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return Action{}, apperror.NewInvalidInput(fmt.Sprintf("bad item index %q", parts[2]), err)
		}
		return Action{Kind: ActionRemove, Section: section, Index: index}, nil
	}
	return Action{}, apperror.NewInvalidInput(fmt.Sprintf("unknown editor action %q", s), nil)
}

// FieldUpdate is one posted input. Name is "social.<platform>",
// "layout.<field>", "<section>.<index>.<field>" or a top-level field.
type FieldUpdate struct {
	Name  string
	Value string
}

func (f FieldUpdate) ApplyTo(doc *portfolio.Document) error {
	parts := strings.Split(f.Name, ".")
	switch {
	case len(parts) == 1:
		return doc.UpdateScalar(f.Name, f.Value)
	case len(parts) == 2 && parts[0] == "social":
		return doc.UpdateSocial(parts[1], f.Value)
	case len(parts) == 2 && parts[0] == "layout":
		return doc.UpdateLayout(parts[1], f.Value)
	case len(parts) == 3:
		section, err := portfolio.ParseSection(parts[0])
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("bad item index in %q", f.Name), err)
		}
		return doc.UpdateItem(section, index, parts[2], f.Value)
	}
	return apperror.NewInvalidInput(fmt.Sprintf("unknown editor field %q", f.Name), nil)
}

type EditInput struct {
	Fields []FieldUpdate
	Action Action
	// ProfileImage is an optional uploaded file replacing profile_image.
	ProfileImage io.Reader
}

type EditOutput struct {
	Document *portfolio.Document
	Saved    bool
	Flash    *session.Flash
}

type EditPortfolioUseCase struct {
	opener   *OpenEditorUseCase
	saver    *SavePortfolioUseCase
	sessions *session.Provider
	uploader service.Uploader
	logger   logger.Logger
}

// NewEditPortfolioUseCase accepts a nil uploader; uploaded files are then
// ignored and profile_image stays a plain URL field.
func NewEditPortfolioUseCase(
	opener *OpenEditorUseCase,
	saver *SavePortfolioUseCase,
	sessions *session.Provider,
	uploader service.Uploader,
	log logger.Logger,
) *EditPortfolioUseCase {
	return &EditPortfolioUseCase{
		opener:   opener,
		saver:    saver,
		sessions: sessions,
		uploader: uploader,
		logger:   log,
	}
}

func (uc *EditPortfolioUseCase) UploadsEnabled() bool {
	return uc.uploader != nil
}

// Execute applies every posted field to the working copy, then the action.
// The draft is stored unless a save went through.
func (uc *EditPortfolioUseCase) Execute(ctx context.Context, clientID string, input EditInput) (*EditOutput, error) {
	ctx, span := tracer.Start(ctx, "EditPortfolio")
	defer span.End()

	doc, ok, err := uc.sessions.Draft(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("read editor draft failed: %w", err)
	}
	if !ok {
		if doc, err = uc.opener.Execute(ctx, clientID); err != nil {
			return nil, err
		}
	}

	for _, f := range input.Fields {
		if err := f.ApplyTo(doc); err != nil {
			return nil, err
		}
	}

	if input.ProfileImage != nil && uc.uploader != nil {
		url, err := uc.uploader.Upload(ctx, input.ProfileImage, profileImageFolder, clientID)
		if err != nil {
			span.RecordError(err)
			uc.logger.Error("Failed to upload profile image", err, zap.String("client_id", clientID))
			return uc.keep(ctx, clientID, doc, &session.Flash{Kind: session.FlashError, Message: "Failed to upload image. Try again!"})
		}
		if err := doc.UpdateScalar("profile_image", url); err != nil {
			return nil, err
		}
	}

	switch input.Action.Kind {
	case ActionAdd:
		if err := doc.AddItem(input.Action.Section, nil); err != nil {
			return nil, err
		}
	case ActionRemove:
		if err := doc.RemoveItem(input.Action.Section, input.Action.Index); err != nil {
			return nil, err
		}
	case ActionSave:
		return uc.save(ctx, clientID, doc)
	}
	return uc.keep(ctx, clientID, doc, nil)
}

func (uc *EditPortfolioUseCase) save(ctx context.Context, clientID string, doc *portfolio.Document) (*EditOutput, error) {
	saved, err := uc.saver.Execute(ctx, clientID, doc)
	if err != nil {
		return uc.keep(ctx, clientID, doc, &session.Flash{Kind: session.FlashError, Message: "Failed to save portfolio. Try again!"})
	}

	if err := uc.sessions.ClearDraft(ctx, clientID); err != nil {
		return nil, fmt.Errorf("clear editor draft failed: %w", err)
	}
	flash := session.Flash{Kind: session.FlashSuccess, Message: "Portfolio saved successfully!"}
	if err := uc.sessions.SetFlash(ctx, clientID, flash); err != nil {
		return nil, fmt.Errorf("store flash failed: %w", err)
	}
	if saved == nil {
		saved = doc
	}
	return &EditOutput{Document: saved, Saved: true, Flash: &flash}, nil
}

func (uc *EditPortfolioUseCase) keep(ctx context.Context, clientID string, doc *portfolio.Document, flash *session.Flash) (*EditOutput, error) {
	if err := uc.sessions.SaveDraft(ctx, clientID, doc); err != nil {
		return nil, fmt.Errorf("store editor draft failed: %w", err)
	}
	return &EditOutput{Document: doc, Flash: flash}, nil
}
