package models

import "time"

// 心情标签（固定 6 种，不可配置）
const (
	MoodHappy   = "happy"
	MoodExcited = "excited"
	MoodCalm    = "calm"
	MoodWorried = "worried"
	MoodSad     = "sad"
	MoodAngry   = "angry"
)

// MoodInfo 心情标签的展示信息与幸福感评分
type MoodInfo struct {
	Name  string `json:"name"`  // 中文名
	Emoji string `json:"emoji"` // 展示表情
	Score int    `json:"score"` // 幸福感评分 0-5，越高越积极
}

// moodTable 心情标签静态映射表
var moodTable = map[string]MoodInfo{
	MoodHappy:   {Name: "开心", Emoji: "😊", Score: 5},
	MoodExcited: {Name: "兴奋", Emoji: "🤩", Score: 4},
	MoodCalm:    {Name: "平静", Emoji: "😌", Score: 3},
	MoodWorried: {Name: "担心", Emoji: "😰", Score: 2},
	MoodSad:     {Name: "难过", Emoji: "😢", Score: 1},
	MoodAngry:   {Name: "生气", Emoji: "😠", Score: 0},
}

// moodOrder 标签的固定展示顺序（按评分从高到低）
var moodOrder = []string{
	MoodHappy, MoodExcited, MoodCalm, MoodWorried, MoodSad, MoodAngry,
}

// IsValidMood 是否为合法的心情标签
func IsValidMood(mood string) bool {
	_, ok := moodTable[mood]
	return ok
}

// MoodScore 获取心情评分，未知标签按中性 3 分处理
func MoodScore(mood string) int {
	if info, ok := moodTable[mood]; ok {
		return info.Score
	}
	return 3
}

// MoodName 获取心情中文名
func MoodName(mood string) string {
	if info, ok := moodTable[mood]; ok {
		return info.Name
	}
	return "未知"
}

// MoodEmoji 获取心情表情
func MoodEmoji(mood string) string {
	if info, ok := moodTable[mood]; ok {
		return info.Emoji
	}
	return "😐"
}

// GetMoods 按固定顺序返回所有心情标签
func GetMoods() []string {
	out := make([]string, len(moodOrder))
	copy(out, moodOrder)
	return out
}

// GetMoodInfo 获取心情标签的完整信息
func GetMoodInfo(mood string) (MoodInfo, bool) {
	info, ok := moodTable[mood]
	return info, ok
}

// MoodEntry 独立心情记录（旧版数据格式）
// 当前版本心情直接记在 ExpenseRecord 上，这个结构只用于读取旧存档，
// 启动时由 storage.AttachLegacyMoods 迁移到同日的消费记录上
type MoodEntry struct {
	ID        uint      `json:"id"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}
