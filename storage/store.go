package storage

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"moonlife/models"
)

// RecordStore 三个集合的唯一持有者
// 所有读操作返回快照副本，统计、筛选、洞察组件只读快照不改状态；
// 写操作在锁内完成并立即落盘，保证后续读取一定能看到已提交的数据
type RecordStore struct {
	mu sync.Mutex
	kv KV

	expenses []models.ExpenseRecord
	moods    []models.MoodEntry
	budgets  []models.BudgetEntry
}

// Open 加载三个集合并构建 RecordStore
// 键不存在视为空集合；内容无法解析时返回 PersistenceError，不静默丢数据
func Open(kv KV) (*RecordStore, error) {
	s := &RecordStore{kv: kv}
	if err := loadCollection(kv, KeyExpenses, &s.expenses); err != nil {
		return nil, err
	}
	if err := loadCollection(kv, KeyMoods, &s.moods); err != nil {
		return nil, err
	}
	if err := loadCollection(kv, KeyBudgets, &s.budgets); err != nil {
		return nil, err
	}
	return s, nil
}

func loadCollection[T any](kv KV, key string, dst *[]T) error {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &PersistenceError{Key: key, Op: "decode", Err: err}
	}
	return nil
}

func (s *RecordStore) saveCollection(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Key: key, Op: "encode", Err: err}
	}
	return s.kv.Set(key, string(data))
}

// Expenses 返回消费记录快照
func (s *RecordStore) Expenses() []models.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExpenseRecord, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Moods 返回旧版心情记录快照
func (s *RecordStore) Moods() []models.MoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MoodEntry, len(s.moods))
	copy(out, s.moods)
	return out
}

// Budgets 返回预算快照
func (s *RecordStore) Budgets() []models.BudgetEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BudgetEntry, len(s.budgets))
	copy(out, s.budgets)
	return out
}

// AddExpense 新增消费记录，分配ID、写入创建时间并立即落盘
func (s *RecordStore) AddExpense(rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	if err := rec.Validate(); err != nil {
		return models.ExpenseRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = nextExpenseID(s.expenses)
	rec.CreatedAt = time.Now()
	s.expenses = append(s.expenses, rec)

	if err := s.saveCollection(KeyExpenses, s.expenses); err != nil {
		s.expenses = s.expenses[:len(s.expenses)-1]
		return models.ExpenseRecord{}, err
	}
	return rec, nil
}

// SetBudget 设置类别预算，类别已存在时原地覆盖金额，集合长度不变
// 返回值第二项表示是否为新建
func (s *RecordStore) SetBudget(category string, amount float64) (models.BudgetEntry, bool, error) {
	entry := models.BudgetEntry{Category: category, Amount: amount}
	if err := entry.Validate(); err != nil {
		return models.BudgetEntry{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.budgets {
		if s.budgets[i].Category == category {
			old := s.budgets[i].Amount
			s.budgets[i].Amount = amount
			if err := s.saveCollection(KeyBudgets, s.budgets); err != nil {
				s.budgets[i].Amount = old
				return models.BudgetEntry{}, false, err
			}
			return s.budgets[i], false, nil
		}
	}

	entry.ID = nextBudgetID(s.budgets)
	entry.CreatedAt = time.Now()
	s.budgets = append(s.budgets, entry)
	if err := s.saveCollection(KeyBudgets, s.budgets); err != nil {
		s.budgets = s.budgets[:len(s.budgets)-1]
		return models.BudgetEntry{}, false, err
	}
	return entry, true, nil
}

// RemoveExpenseImage 删除某条消费记录上的一张凭证图片
// 记录或图片不存在时返回错误，图片数据较大，删除后立即落盘释放空间
func (s *RecordStore) RemoveExpenseImage(recordID uint, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.expenses {
		if s.expenses[i].ID != recordID {
			continue
		}
		for j, img := range s.expenses[i].Images {
			if img.ID != imageID {
				continue
			}
			old := s.expenses[i].Images
			images := make([]models.ExpenseImage, 0, len(old)-1)
			images = append(images, old[:j]...)
			images = append(images, old[j+1:]...)
			s.expenses[i].Images = images
			if err := s.saveCollection(KeyExpenses, s.expenses); err != nil {
				s.expenses[i].Images = old
				return err
			}
			return nil
		}
		return errors.New("图片不存在")
	}
	return errors.New("记录不存在")
}

// AttachLegacyMoods 把旧版独立心情记录迁移到同日的消费记录上
// 只给当天还没有心情的记录打标签，返回打上标签的记录数
func (s *RecordStore) AttachLegacyMoods() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.moods) == 0 {
		return 0, nil
	}

	byDate := make(map[string]models.MoodEntry)
	for _, m := range s.moods {
		// 同一天多条心情时保留最后一条
		byDate[m.Date] = m
	}

	attached := 0
	for i := range s.expenses {
		if s.expenses[i].Mood != "" {
			continue
		}
		m, ok := byDate[s.expenses[i].Date]
		if !ok || !models.IsValidMood(m.Mood) {
			continue
		}
		s.expenses[i].Mood = m.Mood
		s.expenses[i].MoodNote = m.Note
		attached++
	}

	if attached == 0 {
		return 0, nil
	}
	if err := s.saveCollection(KeyExpenses, s.expenses); err != nil {
		return 0, err
	}
	return attached, nil
}

// 旧版用时间戳当ID，快速连点会撞号，这里改成单调递增
func nextExpenseID(list []models.ExpenseRecord) uint {
	var max uint
	for _, e := range list {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

func nextBudgetID(list []models.BudgetEntry) uint {
	var max uint
	for _, b := range list {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}
