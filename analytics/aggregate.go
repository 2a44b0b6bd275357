// Package analytics 把无序的记账流水变成统计结果
// 全部是纯函数：只读传入的快照，不碰存储，不依赖全局状态
package analytics

import (
	"sort"
	"strings"
	"time"

	"moonlife/models"
)

// CategoryTotal 单个类别的消费合计
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// CategoryTotals 按类别汇总消费金额，按合计从高到低排序
// 并列时保持首次出现的先后顺序
func CategoryTotals(expenses []models.ExpenseRecord) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	var order []string
	for _, e := range expenses {
		t, ok := totals[e.Category]
		if !ok {
			t = &CategoryTotal{Category: e.Category}
			totals[e.Category] = t
			order = append(order, e.Category)
		}
		t.Total += e.Amount
		t.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, *totals[c])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// DailyTotal 某一天的消费合计
type DailyTotal struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Total float64 `json:"total"`
}

// DailyTotals 统计截止 asOf 往前 windowDays 天的每日消费
// 固定返回 windowDays+1 个元素，按日期升序，没有消费的日子补零；
// 归属按记录的 Date 字段算，不看 CreatedAt
func DailyTotals(expenses []models.ExpenseRecord, windowDays int, asOf time.Time) []DailyTotal {
	if windowDays < 0 {
		windowDays = 0
	}

	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	start := end.AddDate(0, 0, -windowDays)

	out := make([]DailyTotal, 0, windowDays+1)
	index := make(map[string]int, windowDays+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(models.DateLayout)
		index[key] = len(out)
		out = append(out, DailyTotal{Date: key})
	}

	for _, e := range expenses {
		if i, ok := index[e.Date]; ok {
			out[i].Total += e.Amount
		}
	}
	return out
}

// MonthlyCategorySpend 按类别汇总指定月份（YYYY-MM）的消费
func MonthlyCategorySpend(expenses []models.ExpenseRecord, yearMonth string) map[string]float64 {
	spend := make(map[string]float64)
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, yearMonth) {
			spend[e.Category] += e.Amount
		}
	}
	return spend
}

// 预算状态档位
const (
	SeverityNormal  = "normal"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// BudgetStatus 单个预算的使用情况
type BudgetStatus struct {
	Category           string  `json:"category"`
	Amount             float64 `json:"amount"`
	Used               float64 `json:"used"`
	Remaining          float64 `json:"remaining"`
	Overage            float64 `json:"overage"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Severity           string  `json:"severity"`
}

// EvalBudget 计算预算使用情况
// monthlySpend 取自 MonthlyCategorySpend 的结果，没有该类别则按 0 处理
func EvalBudget(budget models.BudgetEntry, monthlySpend map[string]float64) BudgetStatus {
	used := monthlySpend[budget.Category]
	st := BudgetStatus{
		Category: budget.Category,
		Amount:   budget.Amount,
		Used:     used,
	}

	// 预算为 0 不能除，直接按爆表处理
	if budget.Amount <= 0 {
		st.Overage = used
		st.UtilizationPercent = 100
		st.Severity = SeverityDanger
		return st
	}

	pct := used / budget.Amount * 100
	if pct > 100 {
		pct = 100
	}
	st.UtilizationPercent = pct
	if rem := budget.Amount - used; rem > 0 {
		st.Remaining = rem
	}
	if over := used - budget.Amount; over > 0 {
		st.Overage = over
	}

	switch {
	case pct >= 100:
		st.Severity = SeverityDanger
	case pct >= 80:
		st.Severity = SeverityWarning
	default:
		st.Severity = SeverityNormal
	}
	return st
}
