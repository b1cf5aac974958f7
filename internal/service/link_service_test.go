package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinylink/internal/apperrors"
	"tinylink/internal/model"
	"tinylink/internal/repository"
)

// memStore is an in-memory LinkStore with injectable failures.
type memStore struct {
	mu    sync.Mutex
	links map[string]*model.Link
	order []string
	err   error
}

func newMemStore() *memStore {
	return &memStore{links: map[string]*model.Link{}}
}

func (m *memStore) Find(_ context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.links[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, code, url string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.links[code]; ok {
		return nil, repository.ErrConflict
	}
	l := &model.Link{Code: code, URL: url, CreatedAt: time.Now()}
	m.links[code] = l
	m.order = append(m.order, code)
	cp := *l
	return &cp, nil
}

func (m *memStore) Increment(_ context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.links[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	l.Clicks++
	l.LastClicked = &now
	cp := *l
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.links[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.links, code)
	return nil
}

func (m *memStore) List(_ context.Context) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Link, 0, len(m.links))
	for i := len(m.order) - 1; i >= 0; i-- {
		if l, ok := m.links[m.order[i]]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

type recorderFunc func(ctx context.Context, code, visitor string) error

func (f recorderFunc) RecordClick(ctx context.Context, code, visitor string) error {
	return f(ctx, code, visitor)
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestLinkService_Create(t *testing.T) {
	svc := NewLinkService(newMemStore(), nil)
	ctx := context.Background()

	link, err := svc.Create(ctx, "  gh ", " https://github.com\n")
	require.NoError(t, err)
	assert.Equal(t, "gh", link.Code)
	assert.Equal(t, "https://github.com", link.URL)
	assert.Zero(t, link.Clicks)
	assert.Nil(t, link.LastClicked)
}

func TestLinkService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		url     string
		message string
	}{
		{"empty code", "", "https://example.com", apperrors.MsgCodeAndURLRequired},
		{"empty url", "x", "", apperrors.MsgCodeAndURLRequired},
		{"blank code", "   ", "https://example.com", apperrors.MsgCodeAndURLRequired},
		{"code too long", strings.Repeat("c", model.MaxCodeLength+1), "https://example.com", apperrors.MsgCodeTooLong},
		{"url too long", "x", "https://example.com/" + strings.Repeat("u", model.MaxURLLength), apperrors.MsgURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewLinkService(store, nil)

			_, err := svc.Create(context.Background(), tt.code, tt.url)
			requireAppError(t, err, http.StatusBadRequest, tt.message)
			assert.Empty(t, store.links)
		})
	}
}

func TestLinkService_CreateConflict(t *testing.T) {
	store := newMemStore()
	svc := NewLinkService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "gh", "https://github.com")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "gh", "https://gitlab.com")
	requireAppError(t, err, http.StatusConflict, apperrors.MsgCodeExists)
	assert.Equal(t, "https://github.com", store.links["gh"].URL)
}

func TestLinkService_StoreFailures(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk on fire")
	svc := NewLinkService(store, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	requireAppError(t, err, http.StatusInternalServerError, apperrors.MsgListFailed)

	_, err = svc.Create(ctx, "gh", "https://github.com")
	requireAppError(t, err, http.StatusInternalServerError, apperrors.MsgCreateFailed)

	err = svc.Delete(ctx, "gh")
	requireAppError(t, err, http.StatusInternalServerError, apperrors.MsgDeleteFailed)

	_, err = svc.Get(ctx, "gh")
	requireAppError(t, err, http.StatusInternalServerError, apperrors.MsgSystemError)

	_, err = svc.Resolve(ctx, "gh", "127.0.0.1")
	requireAppError(t, err, http.StatusInternalServerError, apperrors.MsgSystemError)
}

func TestLinkService_GetAndDelete(t *testing.T) {
	svc := NewLinkService(newMemStore(), nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "gh")
	requireAppError(t, err, http.StatusNotFound, apperrors.MsgLinkNotFound)

	_, err = svc.Create(ctx, "gh", "https://github.com")
	require.NoError(t, err)

	link, err := svc.Get(ctx, "gh")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com", link.URL)

	require.NoError(t, svc.Delete(ctx, "gh"))
	requireAppError(t, svc.Delete(ctx, "gh"), http.StatusNotFound, apperrors.MsgLinkNotFound)
	requireAppError(t, svc.Delete(ctx, " "), http.StatusBadRequest, apperrors.MsgCodeMissing)

	links, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLinkService_Resolve(t *testing.T) {
	var recorded []string
	recorder := recorderFunc(func(_ context.Context, code, visitor string) error {
		recorded = append(recorded, code+"@"+visitor)
		return nil
	})
	svc := NewLinkService(newMemStore(), recorder)
	ctx := context.Background()

	_, err := svc.Create(ctx, "gh", "https://github.com")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		link, err := svc.Resolve(ctx, "gh", "10.0.0.1")
		require.NoError(t, err)
		assert.EqualValues(t, i, link.Clicks)
		assert.NotNil(t, link.LastClicked)
	}
	assert.Equal(t, []string{"gh@10.0.0.1", "gh@10.0.0.1", "gh@10.0.0.1"}, recorded)

	_, err = svc.Resolve(ctx, "missing", "10.0.0.1")
	requireAppError(t, err, http.StatusNotFound, apperrors.MsgRedirectNotFound)

	_, err = svc.Resolve(ctx, "", "10.0.0.1")
	requireAppError(t, err, http.StatusBadRequest, apperrors.MsgRedirectBadRequest)
	assert.Len(t, recorded, 3)
}

func TestLinkService_ResolveIgnoresRecorderFailure(t *testing.T) {
	recorder := recorderFunc(func(context.Context, string, string) error {
		return errors.New("redis down")
	})
	svc := NewLinkService(newMemStore(), recorder)
	ctx := context.Background()

	_, err := svc.Create(ctx, "gh", "https://github.com")
	require.NoError(t, err)

	link, err := svc.Resolve(ctx, "gh", "10.0.0.1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, link.Clicks)
}
