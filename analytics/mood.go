package analytics

import (
	"sort"
	"strings"

	"moonlife/models"
)

// MoodStat 单个心情标签的消费统计
type MoodStat struct {
	Mood        string  `json:"mood"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	AvgAmount   float64 `json:"avg_amount"`
	AvgScore    float64 `json:"avg_score"`
}

// MoodExpenseStats 统计指定月份带心情标签的消费
// 心情直接记在消费记录上，按标签分组求笔数、总额、均额和幸福感均分；
// 没有带标签的记录时返回空映射，怎么展示"暂无数据"是调用方的事
func MoodExpenseStats(expenses []models.ExpenseRecord, yearMonth string) map[string]MoodStat {
	stats := make(map[string]MoodStat)
	scoreSum := make(map[string]int)

	for _, e := range expenses {
		if !e.HasMood() || !strings.HasPrefix(e.Date, yearMonth) {
			continue
		}
		st := stats[e.Mood]
		st.Mood = e.Mood
		st.Count++
		st.TotalAmount += e.Amount
		stats[e.Mood] = st
		scoreSum[e.Mood] += models.MoodScore(e.Mood)
	}

	for mood, st := range stats {
		st.AvgAmount = st.TotalAmount / float64(st.Count)
		st.AvgScore = float64(scoreSum[mood]) / float64(st.Count)
		stats[mood] = st
	}
	return stats
}

// RankMoodsByAvgAmount 按平均消费金额从高到低排列
// 并列时按标签的固定顺序，保证结果稳定
func RankMoodsByAvgAmount(stats map[string]MoodStat) []MoodStat {
	return rankMoods(stats, func(a, b MoodStat) bool {
		return a.AvgAmount > b.AvgAmount
	})
}

// RankMoodsByCount 按出现次数从高到低排列
func RankMoodsByCount(stats map[string]MoodStat) []MoodStat {
	return rankMoods(stats, func(a, b MoodStat) bool {
		return a.Count > b.Count
	})
}

func rankMoods(stats map[string]MoodStat, less func(a, b MoodStat) bool) []MoodStat {
	out := make([]MoodStat, 0, len(stats))
	for _, mood := range models.GetMoods() {
		if st, ok := stats[mood]; ok {
			out = append(out, st)
		}
	}
	// 表外的标签理论上不存在，兜底放到末尾
	for mood, st := range stats {
		if !models.IsValidMood(mood) {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}
