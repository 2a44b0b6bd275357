package models

import (
	"errors"
	"strings"
	"time"
)

// DateLayout 记账日期格式（只到天，不带时间）
const DateLayout = "2006-01-02"

// ExpenseImage 消费凭证图片（data URL 编码）
type ExpenseImage struct {
	ID   string `json:"id"`
	Data string `json:"data"`
	Name string `json:"name"`
}

// ExpenseRecord 消费记录模型
// Mood 为空表示记账时没有选择心情
type ExpenseRecord struct {
	ID        uint           `json:"id"`
	Amount    float64        `json:"amount"`
	Category  string         `json:"category"`
	Date      string         `json:"date"` // YYYY-MM-DD
	Note      string         `json:"note"`
	Images    []ExpenseImage `json:"images,omitempty"`
	Mood      string         `json:"mood,omitempty"`
	MoodNote  string         `json:"mood_note,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate 校验必填字段
func (e *ExpenseRecord) Validate() error {
	if e.Amount <= 0 {
		return errors.New("金额必须大于0")
	}
	if strings.TrimSpace(e.Category) == "" {
		return errors.New("类别不能为空")
	}
	if _, err := time.ParseInLocation(DateLayout, e.Date, time.Local); err != nil {
		return errors.New("日期格式错误，应为: 2006-01-02")
	}
	if e.Mood != "" && !IsValidMood(e.Mood) {
		return errors.New("无效的心情标签")
	}
	return nil
}

// HasMood 是否带心情标签
func (e *ExpenseRecord) HasMood() bool {
	return e.Mood != ""
}

// 默认消费类别
const (
	CategoryFood          = "餐饮"
	CategoryTransport     = "交通"
	CategoryShopping      = "购物"
	CategoryEntertainment = "娱乐"
	CategoryMedical       = "医疗"
	CategoryEducation     = "教育"
	CategoryHousing       = "住房"
	CategoryOther         = "其他"
)

// GetCategories 获取所有默认消费类别
func GetCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryMedical,
		CategoryEducation,
		CategoryHousing,
		CategoryOther,
	}
}
