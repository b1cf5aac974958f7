package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tinylink/internal/apperrors"
	"tinylink/internal/model"
	"tinylink/internal/repository"
	"tinylink/pkg/logging"
	"tinylink/pkg/utils"
)

// LinkStore is the persistence the link service needs.
type LinkStore interface {
	Find(ctx context.Context, code string) (*model.Link, error)
	Create(ctx context.Context, code, url string) (*model.Link, error)
	Increment(ctx context.Context, code string) (*model.Link, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]model.Link, error)
}

// ClickRecorder receives every successful redirect. Its failures never fail the redirect.
type ClickRecorder interface {
	RecordClick(ctx context.Context, code, visitor string) error
}

type LinkService struct {
	store    LinkStore
	recorder ClickRecorder
}

// NewLinkService builds the service; recorder may be nil.
func NewLinkService(store LinkStore, recorder ClickRecorder) *LinkService {
	return &LinkService{store: store, recorder: recorder}
}

// List returns every link, newest first.
func (s *LinkService) List(ctx context.Context) ([]model.Link, error) {
	links, err := s.store.List(ctx)
	if err != nil {
		logging.Logger.Error("Failed to list links", zap.String("op", "list"), zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgListFailed, err)
	}
	return links, nil
}

// Create stores a new link under code. Inputs are trimmed first.
func (s *LinkService) Create(ctx context.Context, code, url string) (*model.Link, error) {
	code = strings.TrimSpace(code)
	url = strings.TrimSpace(url)
	if err := validationError(utils.ValidateLinkInput(code, url)); err != nil {
		return nil, err
	}

	link, err := s.store.Create(ctx, code, url)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ConflictError(apperrors.MsgCodeExists)
		}
		logging.Logger.Error("Failed to create link",
			zap.String("op", "create"),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgCreateFailed, err)
	}

	logging.Logger.Info("Link created", zap.String("code", code))
	return link, nil
}

// Get returns the link for code without touching its counters.
func (s *LinkService) Get(ctx context.Context, code string) (*model.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
	}

	link, err := s.store.Find(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
		}
		logging.Logger.Error("Failed to get link",
			zap.String("op", "get"),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	return link, nil
}

// Delete removes the link for code.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.InvalidRequestError(apperrors.MsgCodeMissing)
	}

	if err := s.store.Delete(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFoundError(apperrors.MsgLinkNotFound)
		}
		logging.Logger.Error("Failed to delete link",
			zap.String("op", "delete"),
			zap.String("code", code),
			zap.Error(err))
		return apperrors.SystemError(apperrors.MsgDeleteFailed, err)
	}

	logging.Logger.Info("Link deleted", zap.String("code", code))
	return nil
}

// Resolve counts one click for code and returns the updated link. The store update has
// completed by the time Resolve returns.
func (s *LinkService) Resolve(ctx context.Context, code, visitor string) (*model.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.InvalidRequestError(apperrors.MsgRedirectBadRequest)
	}

	link, err := s.store.Increment(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError(apperrors.MsgRedirectNotFound)
		}
		logging.Logger.Error("Failed to resolve link",
			zap.String("op", "resolve"),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}

	if s.recorder != nil {
		if err := s.recorder.RecordClick(ctx, code, visitor); err != nil {
			logging.Logger.Warn("Failed to record click",
				zap.String("code", code),
				zap.String("visitor", visitor),
				zap.Error(err))
		}
	}
	return link, nil
}

func validationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, utils.ErrCodeTooLong):
		return apperrors.InvalidRequestError(apperrors.MsgCodeTooLong)
	case errors.Is(err, utils.ErrURLTooLong):
		return apperrors.InvalidRequestError(apperrors.MsgURLTooLong)
	default:
		return apperrors.InvalidRequestError(apperrors.MsgCodeAndURLRequired)
	}
}
