package analytics

import (
	"testing"
	"time"

	"moonlife/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteExpense(note, category, date string) models.ExpenseRecord {
	return models.ExpenseRecord{Amount: 10, Category: category, Date: date, Note: note}
}

func TestFilterExpenses_Search(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("Coffee run", "餐饮", "2024-06-09"),
		noteExpense("午餐", "餐饮", "2024-06-08"),
		noteExpense("地铁", "交通", "2024-06-07"),
	}

	// 搜索不区分大小写，匹配备注
	out := FilterExpenses(expenses, Filter{Search: "coffee"}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "Coffee run", out[0].Note)

	// 也匹配类别
	out = FilterExpenses(expenses, Filter{Search: "交通"}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "地铁", out[0].Note)

	// 空搜索词不过滤
	out = FilterExpenses(expenses, Filter{}, now)
	assert.Len(t, out, 3)
}

func TestFilterExpenses_Category(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("午餐", "餐饮", "2024-06-08"),
		noteExpense("地铁", "交通", "2024-06-07"),
	}

	out := FilterExpenses(expenses, Filter{Category: "餐饮"}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "午餐", out[0].Note)
}

func TestFilterExpenses_DateRange(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("今天", "餐饮", "2024-06-10"),
		noteExpense("六天前", "餐饮", "2024-06-04"),
		noteExpense("八天前", "餐饮", "2024-06-02"),
		noteExpense("上个月", "餐饮", "2024-05-20"),
	}

	out := FilterExpenses(expenses, Filter{DateRange: RangeToday}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "今天", out[0].Note)

	out = FilterExpenses(expenses, Filter{DateRange: RangeWeek}, now)
	assert.Len(t, out, 2)

	out = FilterExpenses(expenses, Filter{DateRange: RangeMonth}, now)
	assert.Len(t, out, 3)
}

func TestFilterExpenses_Conjunction(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("咖啡", "餐饮", "2024-06-10"),
		noteExpense("咖啡", "餐饮", "2024-05-01"),
		noteExpense("咖啡机", "购物", "2024-06-10"),
	}

	// 三个条件取交集
	out := FilterExpenses(expenses, Filter{
		Search:    "咖啡",
		Category:  "餐饮",
		DateRange: RangeMonth,
	}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-06-10", out[0].Date)
	assert.Equal(t, "餐饮", out[0].Category)
}

func TestFilterExpenses_SortAndStability(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	first := noteExpense("同日在前", "餐饮", "2024-06-08")
	second := noteExpense("同日在后", "餐饮", "2024-06-08")
	expenses := []models.ExpenseRecord{
		noteExpense("最早", "餐饮", "2024-06-01"),
		first,
		second,
		noteExpense("最新", "餐饮", "2024-06-09"),
	}

	out := FilterExpenses(expenses, Filter{}, now)
	require.Len(t, out, 4)
	// 日期从新到旧，同日保持原顺序
	assert.Equal(t, "最新", out[0].Note)
	assert.Equal(t, "同日在前", out[1].Note)
	assert.Equal(t, "同日在后", out[2].Note)
	assert.Equal(t, "最早", out[3].Note)
}

func TestFilterExpenses_EmptyResult(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("午餐", "餐饮", "2024-06-08"),
	}

	// 没有匹配是合法结果，返回空序列而不是报错
	out := FilterExpenses(expenses, Filter{Search: "不存在的关键字"}, now)
	assert.Empty(t, out)
}

func TestFilterExpenses_BadDateExcluded(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	expenses := []models.ExpenseRecord{
		noteExpense("坏日期", "餐饮", "not-a-date"),
		noteExpense("正常", "餐饮", "2024-06-10"),
	}

	// 指定时间范围时日期解析失败的记录被排除
	out := FilterExpenses(expenses, Filter{DateRange: RangeMonth}, now)
	require.Len(t, out, 1)
	assert.Equal(t, "正常", out[0].Note)
}
