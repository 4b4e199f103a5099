package service

import (
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/util"
	"time"
)

// ResetSchedule 读取时计算重置周，没有定时任务：WeekKey 等于 Current() 的记录才属于本周
type ResetSchedule struct {
	Location *time.Location
	Weekday  time.Weekday
	Hour     int
	Now      func() time.Time
}

func NewResetSchedule(cfg config.LedgerConfig) (*ResetSchedule, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &ResetSchedule{
		Location: loc,
		Weekday:  time.Weekday(cfg.ResetWeekday),
		Hour:     cfg.ResetHour,
		Now:      time.Now,
	}, nil
}

// WeekStart t 之前（含）最近一次重置时间
func WeekStart(t time.Time, loc *time.Location, weekday time.Weekday, hour int) time.Time {
	local := t.In(loc)
	back := (int(local.Weekday()) - int(weekday) + 7) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-back, hour, 0, 0, 0, loc)
	if start.After(local) {
		start = start.AddDate(0, 0, -7)
	}
	return start
}

// ResetWeekKey 时间所在重置周的键
func ResetWeekKey(t time.Time, loc *time.Location, weekday time.Weekday, hour int) model.WeekKey {
	return model.WeekKey(WeekStart(t, loc, weekday, hour).Format(util.DateFormat))
}

func (s *ResetSchedule) WeekStart(t time.Time) time.Time {
	return WeekStart(t, s.Location, s.Weekday, s.Hour)
}

func (s *ResetSchedule) WeekKey(t time.Time) model.WeekKey {
	return ResetWeekKey(t, s.Location, s.Weekday, s.Hour)
}

func (s *ResetSchedule) Current() model.WeekKey {
	return s.WeekKey(s.Now())
}

// NextReset t 之后的下一次重置
func (s *ResetSchedule) NextReset(t time.Time) time.Time {
	return s.WeekStart(t).AddDate(0, 0, 7)
}

// WeeksAgo 当前周往前第 n 周的键
func (s *ResetSchedule) WeeksAgo(n int) model.WeekKey {
	start := s.WeekStart(s.Now()).AddDate(0, 0, -7*n)
	return model.WeekKey(start.Format(util.DateFormat))
}

type ResetInfo struct {
	WeekKey          model.WeekKey `json:"weekKey"`
	WeekStart        time.Time     `json:"weekStart"`
	NextReset        time.Time     `json:"nextReset"`
	RemainingSeconds int64         `json:"remainingSeconds"`
	Remaining        string        `json:"remaining"`
}

func (s *ResetSchedule) Info() ResetInfo {
	now := s.Now()
	next := s.NextReset(now)
	remaining := next.Sub(now).Truncate(time.Second)
	return ResetInfo{
		WeekKey:          s.WeekKey(now),
		WeekStart:        s.WeekStart(now),
		NextReset:        next,
		RemainingSeconds: int64(remaining / time.Second),
		Remaining:        remaining.String(),
	}
}
