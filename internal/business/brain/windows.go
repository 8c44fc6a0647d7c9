package brain

import "time"

// Windows 单次运行的时间窗口，全部由同一个 now 推导
type Windows struct {
	Now      time.Time
	Today    time.Time // 业务时区当日零点
	WeekAgo  time.Time
	MonthAgo time.Time
}

// NewWindows 根据 now（已转换到业务时区）计算窗口
func NewWindows(now time.Time) Windows {
	y, m, d := now.Date()
	return Windows{
		Now:      now,
		Today:    time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		WeekAgo:  now.Add(-7 * 24 * time.Hour),
		MonthAgo: now.Add(-30 * 24 * time.Hour),
	}
}
