package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tinylink/internal/model"
	"tinylink/pkg/logging"
)

// LinksAPI is the subset of Client the views use.
type LinksAPI interface {
	ListLinks(ctx context.Context) ([]model.Link, error)
	CreateLink(ctx context.Context, code, url string) (*model.Link, error)
	GetLink(ctx context.Context, code string) (*model.Link, error)
	DeleteLink(ctx context.Context, code string) error
	DailyStats(ctx context.Context, code string) ([]model.DailyStat, error)
}

type ListState int

const (
	ListLoading ListState = iota
	ListPopulated
	ListEmpty
	ListError
)

func (s ListState) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListPopulated:
		return "populated"
	case ListEmpty:
		return "empty"
	case ListError:
		return "error"
	default:
		return fmt.Sprintf("ListState(%d)", int(s))
	}
}

// Banner texts shown by the list view.
const (
	MsgLoadFailed     = "Failed to load links."
	MsgFieldsRequired = "URL and code are required."
	MsgCreateFailed   = "Failed to create link."
	MsgDeleteFailed   = "Failed to delete link."
)

// ListView is the state of the links table and its create form. It only changes
// through the action methods below, which are safe for concurrent use.
type ListView struct {
	mu sync.Mutex

	State ListState
	Links []model.Link
	Error string

	// form
	Code       string
	URL        string
	Submitting bool

	// codes with a delete in flight
	Deleting map[string]bool
}

func NewListView() *ListView {
	return &ListView{State: ListLoading, Links: []model.Link{}, Deleting: map[string]bool{}}
}

func (v *ListView) FetchSucceeded(links []model.Link) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if links == nil {
		links = []model.Link{}
	}
	v.Links = links
	if len(links) == 0 {
		v.State = ListEmpty
	} else {
		v.State = ListPopulated
	}
}

// FetchFailed keeps whatever rows were already shown.
func (v *ListView) FetchFailed(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.State = ListError
	v.Error = MsgLoadFailed
}

// SubmitStarted records the form input and reports whether a create may be sent.
// Blank fields or a create already in flight refuse the submit.
func (v *ListView) SubmitStarted(code, url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Code, v.URL = code, url
	if v.Submitting {
		return false
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(url) == "" {
		v.Error = MsgFieldsRequired
		return false
	}
	v.Error = ""
	v.Submitting = true
	return true
}

// CreateSucceeded clears the form and marks the list stale; the next Load refetches it.
func (v *ListView) CreateSucceeded() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Submitting = false
	v.Code, v.URL = "", ""
	v.Error = ""
	v.State = ListLoading
}

// CreateFailed keeps the form input and shows the server message when there is one.
func (v *ListView) CreateFailed(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Submitting = false
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		v.Error = apiErr.Message
	case errors.As(err, &apiErr):
		v.Error = fmt.Sprintf("Error %d", apiErr.Status)
	default:
		v.Error = MsgCreateFailed
	}
}

// DeleteStarted disables the row for code. It refuses when a delete for the same code is
// already in flight.
func (v *ListView) DeleteStarted(code string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.Deleting[code] {
		return false
	}
	v.Deleting[code] = true
	v.Error = ""
	return true
}

// DeleteSucceeded drops the row locally without refetching.
func (v *ListView) DeleteSucceeded(code string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.Deleting, code)
	kept := make([]model.Link, 0, len(v.Links))
	for _, l := range v.Links {
		if l.Code != code {
			kept = append(kept, l)
		}
	}
	v.Links = kept
	if len(kept) == 0 && v.State == ListPopulated {
		v.State = ListEmpty
	}
}

// DeleteFailed re-enables the row and shows why.
func (v *ListView) DeleteFailed(code string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.Deleting, code)
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		v.Error = apiErr.Message
	case errors.As(err, &apiErr):
		v.Error = fmt.Sprintf("Failed to delete (status %d). Please try again.", apiErr.Status)
	default:
		v.Error = MsgDeleteFailed
	}
}

// Loading reports whether the list has not been fetched yet.
func (v *ListView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.State == ListLoading
}

// IsDeleting reports whether a delete for code is in flight.
func (v *ListView) IsDeleting(code string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Deleting[code]
}

// Load fetches the full list.
func (v *ListView) Load(ctx context.Context, api LinksAPI) {
	links, err := api.ListLinks(ctx)
	if err != nil {
		logging.Logger.Warn("Dashboard failed to load links", zap.Error(err))
		v.FetchFailed(err)
		return
	}
	v.FetchSucceeded(links)
}

// Submit creates a link from the form input. It reports whether the link was created.
func (v *ListView) Submit(ctx context.Context, api LinksAPI, code, url string) bool {
	if !v.SubmitStarted(code, url) {
		return false
	}
	if _, err := api.CreateLink(ctx, strings.TrimSpace(code), strings.TrimSpace(url)); err != nil {
		logging.Logger.Info("Dashboard create rejected", zap.String("code", code), zap.Error(err))
		v.CreateFailed(err)
		return false
	}
	v.CreateSucceeded()
	return true
}

// Remove deletes code. Confirmation happens in the browser before this is reached.
func (v *ListView) Remove(ctx context.Context, api LinksAPI, code string) bool {
	if !v.DeleteStarted(code) {
		return false
	}
	if err := api.DeleteLink(ctx, code); err != nil {
		logging.Logger.Info("Dashboard delete failed", zap.String("code", code), zap.Error(err))
		v.DeleteFailed(code, err)
		return false
	}
	v.DeleteSucceeded(code)
	return true
}
