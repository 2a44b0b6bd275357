package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KVEntry kv_entries 表，一行一个集合
type KVEntry struct {
	KeyName   string    `gorm:"primaryKey;size:64;column:key_name"`
	Value     string    `gorm:"type:longtext;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 设置表名
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormKV 数据库版键值存储，适合把数据放在远端 MySQL 的场景
type GormKV struct {
	db *gorm.DB
}

// NewGormKV 基于已有连接创建存储并迁移表结构
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("迁移 kv_entries 表失败: %w", err)
	}
	return &GormKV{db: db}, nil
}

// OpenMySQLKV 连接 MySQL 并创建键值存储
func OpenMySQLKV(dsn string) (*GormKV, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return NewGormKV(db)
}

// Get 读取键值
func (g *GormKV) Get(key string) (string, bool, error) {
	var entry KVEntry
	err := g.db.Where("key_name = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &PersistenceError{Key: key, Op: "read", Err: err}
	}
	return entry.Value, true, nil
}

// Set 写入键值，已存在则覆盖
func (g *GormKV) Set(key, value string) error {
	entry := KVEntry{KeyName: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return &PersistenceError{Key: key, Op: "write", Err: err}
	}
	return nil
}
