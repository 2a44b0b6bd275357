package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// 三个集合各占一个存储键
const (
	KeyExpenses = "expenses"
	KeyMoods    = "moods" // 旧版独立心情记录
	KeyBudgets  = "budgets"
)

// KV 键值持久化接口
// Get 对不存在的键返回 ok=false 而不是错误
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// PersistenceError 存储层错误
// 存档损坏时必须显式报错，不允许静默当作空集合处理
type PersistenceError struct {
	Key string
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("存储错误 [%s %s]: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// FileKV 文件版键值存储，每个键对应数据目录下的一个 JSON 文件
type FileKV struct {
	dir string
}

// NewFileKV 创建文件存储，目录不存在时自动创建
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get 读取键对应的文件内容
func (f *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &PersistenceError{Key: key, Op: "read", Err: err}
	}
	return string(data), true, nil
}

// Set 写入键对应的文件，先写临时文件再改名，避免写一半留下坏档
func (f *FileKV) Set(key, value string) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return &PersistenceError{Key: key, Op: "write", Err: err}
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return &PersistenceError{Key: key, Op: "write", Err: err}
	}
	return nil
}
