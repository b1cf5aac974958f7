package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"tinylink/constant"
	"tinylink/internal/apperrors"
	"tinylink/internal/model"
	"tinylink/internal/repository"
	"tinylink/pkg/logging"
)

// DateLayout is the day format stored in daily_stats.
const DateLayout = "2006-01-02"

type DailyStatStore interface {
	Upsert(ctx context.Context, stat model.DailyStat) error
	ListByCode(ctx context.Context, code string) ([]model.DailyStat, error)
}

type LinkFinder interface {
	Find(ctx context.Context, code string) (*model.Link, error)
}

// StatsService keeps per-day click and visitor counters in Redis and periodically copies
// them into the daily_stats table. A nil pool disables the Redis side.
type StatsService struct {
	pool      *redis.Pool
	stats     DailyStatStore
	links     LinkFinder
	now       func() time.Time
	retention time.Duration
}

func NewStatsService(pool *redis.Pool, stats DailyStatStore, links LinkFinder, now func() time.Time, retentionDays int) *StatsService {
	if now == nil {
		now = time.Now
	}
	if retentionDays < 2 {
		retentionDays = 2
	}
	return &StatsService{
		pool:      pool,
		stats:     stats,
		links:     links,
		now:       now,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// RecordClick adds one click and one visitor sighting to today's buckets.
func (s *StatsService) RecordClick(ctx context.Context, code, visitor string) error {
	if s.pool == nil {
		return nil
	}
	if visitor == "" {
		visitor = "unknown"
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Warn("Failed to close Redis connection", zap.Error(err))
		}
	}()

	day := constant.GetDayKey(s.now())
	clicksKey := constant.GetDailyClicksKey(day)
	visitorsKey := constant.GetDailyVisitorsKey(code, day)
	ttl := int64(s.retention / time.Second)

	_ = conn.Send("HINCRBY", clicksKey, code, 1)
	_ = conn.Send("EXPIRE", clicksKey, ttl)
	_ = conn.Send("PFADD", visitorsKey, visitor)
	_ = conn.Send("EXPIRE", visitorsKey, ttl)

	replies, err := redis.Values(conn.Do(""))
	if err != nil {
		return fmt.Errorf("record click %q: %w", code, err)
	}
	for _, reply := range replies {
		if rerr, ok := reply.(redis.Error); ok {
			return fmt.Errorf("record click %q: %w", code, rerr)
		}
	}
	return nil
}

// Flush copies today's and yesterday's counters into daily_stats. Rows hold absolute
// totals, so running it repeatedly is safe.
func (s *StatsService) Flush(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Warn("Failed to close Redis connection", zap.Error(err))
		}
	}()

	now := s.now()
	var errs []error
	flushed := 0
	for _, t := range []time.Time{now.AddDate(0, 0, -1), now} {
		n, err := s.flushDay(ctx, conn, t)
		flushed += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		logging.Logger.Error("Daily stats flush failed", zap.Int("rows", flushed), zap.Error(err))
		return err
	}
	logging.Logger.Info("Daily stats flushed", zap.Int("rows", flushed))
	return nil
}

func (s *StatsService) flushDay(ctx context.Context, conn redis.Conn, t time.Time) (int, error) {
	day := constant.GetDayKey(t)
	clicksKey := constant.GetDailyClicksKey(day)

	clicks, err := redis.Int64Map(conn.Do("HGETALL", clicksKey))
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", clicksKey, err)
	}

	var errs []error
	n := 0
	for code, count := range clicks {
		visitors, err := redis.Int64(conn.Do("PFCOUNT", constant.GetDailyVisitorsKey(code, day)))
		if err != nil {
			errs = append(errs, fmt.Errorf("count visitors %s/%s: %w", code, day, err))
			continue
		}

		stat := model.DailyStat{
			Code:     code,
			Date:     t.Format(DateLayout),
			Clicks:   count,
			Visitors: visitors,
		}
		if err := s.stats.Upsert(ctx, stat); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// DailyStats returns the flushed per-day totals for an existing link, newest day first.
func (s *StatsService) DailyStats(ctx context.Context, code string) ([]model.DailyStat, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
	}

	if _, err := s.links.Find(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
		}
		logging.Logger.Error("Failed to load link for stats",
			zap.String("op", "stats"),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgStatsFailed, err)
	}

	days, err := s.stats.ListByCode(ctx, code)
	if err != nil {
		logging.Logger.Error("Failed to list daily stats",
			zap.String("op", "stats"),
			zap.String("code", code),
			zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgStatsFailed, err)
	}
	return days, nil
}
