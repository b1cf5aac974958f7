package dashboard

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tinylink/internal/model"
	"tinylink/pkg/logging"
)

type StatsState int

const (
	StatsLoading StatsState = iota
	StatsPopulated
	StatsError
)

const (
	MsgMissingCode     = "Missing code"
	MsgStatsNotFound   = "Not found"
	MsgStatsLoadFailed = "Error loading stats"
)

// StatsView shows one link's counters. It is keyed by the code from the route and
// fetches at most once per code; a failed load is terminal.
type StatsView struct {
	Code  string
	State StatsState
	Link  *model.Link
	Days  []model.DailyStat
	Error string

	loaded bool
}

func NewStatsView() *StatsView {
	return &StatsView{State: StatsLoading}
}

// Load fetches the link for code unless this code was already loaded.
func (v *StatsView) Load(ctx context.Context, api LinksAPI, code string) {
	code = strings.TrimSpace(code)
	if v.loaded && code == v.Code {
		return
	}
	*v = StatsView{Code: code, State: StatsLoading, loaded: true}

	if code == "" {
		v.fail(MsgMissingCode)
		return
	}

	link, err := api.GetLink(ctx, code)
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Message != "":
			v.fail(apiErr.Message)
		case errors.As(err, &apiErr):
			v.fail(MsgStatsNotFound)
		default:
			logging.Logger.Warn("Dashboard failed to load link", zap.String("code", code), zap.Error(err))
			v.fail(MsgStatsLoadFailed)
		}
		return
	}

	v.Link = link
	v.State = StatsPopulated

	days, err := api.DailyStats(ctx, code)
	if err != nil {
		// the per-day table is optional; the link itself loaded fine
		logging.Logger.Warn("Dashboard failed to load daily stats", zap.String("code", code), zap.Error(err))
		return
	}
	v.Days = days
}

func (v *StatsView) Failed() bool { return v.State == StatsError }

func (v *StatsView) fail(msg string) {
	v.State = StatsError
	v.Error = msg
	v.Link = nil
	v.Days = nil
}
