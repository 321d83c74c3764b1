package period

import (
	"fmt"
	"time"
)

// 支持的统计周期类型，与 db.TrackingConfig.PeriodType 取值一致
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// ErrUnknownType 在周期类型不受支持时返回
var ErrUnknownType = fmt.Errorf("unknown period type")

// Bounds 计算参考日期所在周期的起止日期（含端点）
// daily: start = end = ref
// weekly: 周一为起点，周日为终点
// monthly: 当月 1 号至月末（自动处理 28/29/30/31）
// yearly: 1 月 1 日至 12 月 31 日
// 返回值均归一化到零点，纯函数无副作用
func Bounds(periodType string, ref time.Time) (start, end time.Time, err error) {
	day := truncateToDay(ref)

	switch periodType {
	case Daily:
		return day, day, nil
	case Weekly:
		// time.Weekday 以周日为 0，需要换算成周一起点的偏移
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case Monthly:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1), nil
	case Yearly:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		return start, time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location()), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrUnknownType, periodType)
	}
}

// TotalDays 返回周期的总天数（7 / 28..31 / 365..366）
func TotalDays(periodType string, ref time.Time) (int, error) {
	start, end, err := Bounds(periodType, ref)
	if err != nil {
		return 0, err
	}
	return daysBetween(start, end) + 1, nil
}

// DaysElapsed 返回周期内已经过去的天数，参考日当天计入
// 周期第一天返回 1，这样 ElapsedFraction 在边界日不会归零
func DaysElapsed(periodType string, ref time.Time) (int, error) {
	start, _, err := Bounds(periodType, ref)
	if err != nil {
		return 0, err
	}
	return daysBetween(start, truncateToDay(ref)) + 1, nil
}

// DaysRemaining 返回周期内剩余天数，参考日当天不计入，周期最后一天返回 0
func DaysRemaining(periodType string, ref time.Time) (int, error) {
	_, end, err := Bounds(periodType, ref)
	if err != nil {
		return 0, err
	}
	return daysBetween(truncateToDay(ref), end), nil
}

// ElapsedFraction 返回周期已过比例，范围 (0,1]
// 计算方式为 (ref - start + 1) / (end - start + 1)，周内第 1 天约为 1/7
func ElapsedFraction(periodType string, ref time.Time) (float64, error) {
	elapsed, err := DaysElapsed(periodType, ref)
	if err != nil {
		return 0, err
	}
	total, err := TotalDays(periodType, ref)
	if err != nil {
		return 0, err
	}
	return float64(elapsed) / float64(total), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(a, b time.Time) int {
	// 按日历日计数，避免夏令时导致的小时差折算误差
	return int(b.Sub(a).Hours()/24 + 0.5)
}
