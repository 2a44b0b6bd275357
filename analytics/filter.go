package analytics

import (
	"sort"
	"strings"
	"time"

	"moonlife/models"
)

// 时间范围筛选取值
const (
	RangeAll   = ""      // 不限
	RangeToday = "today" // 今天
	RangeWeek  = "week"  // 最近7天
	RangeMonth = "month" // 本自然月
)

// Filter 消费记录筛选条件，三个条件取交集
type Filter struct {
	Search    string // 备注或类别的子串匹配，不区分大小写
	Category  string // 精确匹配
	DateRange string // RangeAll / RangeToday / RangeWeek / RangeMonth
}

// FilterExpenses 筛选消费记录并按日期从新到旧排序
// now 决定相对时间范围的基准；同日记录保持原有先后顺序
func FilterExpenses(expenses []models.ExpenseRecord, f Filter, now time.Time) []models.ExpenseRecord {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var out []models.ExpenseRecord
	for _, e := range expenses {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Note), search) &&
			!strings.Contains(strings.ToLower(e.Category), search) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if !matchDateRange(e.Date, f.DateRange, now) {
			continue
		}
		out = append(out, e)
	}

	// ISO 日期字符串按字典序比较即按时间比较
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

func matchDateRange(date, dateRange string, now time.Time) bool {
	if dateRange == RangeAll {
		return true
	}
	d, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch dateRange {
	case RangeToday:
		return d.Equal(today)
	case RangeWeek:
		return !d.Before(today.AddDate(0, 0, -7)) && !d.After(today)
	case RangeMonth:
		return d.Year() == now.Year() && d.Month() == now.Month()
	default:
		return false
	}
}
