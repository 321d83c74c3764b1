package service

import (
	"sort"
	"time"

	"github.com/pillarlog/internal/db"
)

// StreakStats 汇总连胜统计
type StreakStats struct {
	Current       int `json:"current"`
	Longest       int `json:"longest"`
	SecondLongest int `json:"second_longest"`
}

// ComputeStreaks 从完整打卡历史计算当前连胜与历史前两名
// 刻意不做增量计数：每次全量重算，补录/乱序写入都不会弄脏结果
// 锚点规则：今天已有事实则从今天起算，否则从最近一条事实的日期起算
// （今天还没打卡不破坏连胜，但更早的任何缺口都会）
func ComputeStreaks(facts []db.ProgressFact, today time.Time) StreakStats {
	if len(facts) == 0 {
		return StreakStats{}
	}

	type dayFact struct {
		completed bool
	}

	days := make(map[int64]dayFact, len(facts))
	var latest int64
	for _, fact := range facts {
		key := dayKey(fact.EntryDate)
		completed := fact.IsCompleted != nil && *fact.IsCompleted
		// 同日多条会话只要有一条完成即视为当日完成
		if existing, ok := days[key]; ok {
			completed = completed || existing.completed
		}
		days[key] = dayFact{completed: completed}
		if key > latest {
			latest = key
		}
	}

	anchor := dayKey(today)
	if _, ok := days[anchor]; !ok && latest < anchor {
		anchor = latest
	}

	stats := StreakStats{}
	for d := anchor; ; d-- {
		fact, ok := days[d]
		if !ok || !fact.completed {
			break
		}
		stats.Current++
	}

	// 按日期分段为最长连续完成串，取前两名
	keys := make([]int64, 0, len(days))
	for key, fact := range days {
		if fact.completed {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	run := 0
	for i, key := range keys {
		if i > 0 && key == keys[i-1]+1 {
			run++
		} else {
			recordRun(&stats, run)
			run = 1
		}
	}
	recordRun(&stats, run)

	return stats
}

func recordRun(stats *StreakStats, run int) {
	if run > stats.Longest {
		stats.SecondLongest = stats.Longest
		stats.Longest = run
	} else if run > stats.SecondLongest {
		stats.SecondLongest = run
	}
}

// dayKey 将日期折算成自纪元起的天数，忽略时区内的时分秒
func dayKey(t time.Time) int64 {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
