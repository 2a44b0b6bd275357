package models

import (
	"errors"
	"strings"
	"time"
)

// BudgetEntry 类别预算（每月上限）
// 同一类别最多一条，重复提交时覆盖金额而不是新增
type BudgetEntry struct {
	ID        uint      `json:"id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate 校验必填字段
func (b *BudgetEntry) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("类别不能为空")
	}
	if b.Amount <= 0 {
		return errors.New("预算金额必须大于0")
	}
	return nil
}
