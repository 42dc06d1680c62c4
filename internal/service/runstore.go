package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fleetcollector/fleetcollector/internal/database"
	"github.com/fleetcollector/fleetcollector/internal/model"
)

// RunStore 采集任务与结果的持久化
// 数据库未初始化时所有写操作静默跳过，CLI可在无库模式下运行
type RunStore struct{}

// NewRunStore 创建存储器
func NewRunStore() *RunStore {
	return &RunStore{}
}

func (s *RunStore) ready() bool {
	return database.GetDB() != nil
}

// CreateRun 登记一次采集任务
func (s *RunStore) CreateRun(run *model.CollectionRun) error {
	if !s.ready() {
		return nil
	}
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Create(run).Error
	}, 3, 50*time.Millisecond)
}

// FinishRun 更新任务完成状态与统计
func (s *RunStore) FinishRun(run *model.CollectionRun) error {
	if !s.ready() {
		return nil
	}
	now := time.Now()
	run.FinishedAt = &now
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Save(run).Error
	}, 3, 50*time.Millisecond)
}

// SaveRecord 保存单台设备的采集结果
func (s *RunStore) SaveRecord(record *model.DeviceRecord) error {
	if !s.ready() {
		return nil
	}
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Create(record).Error
	}, 3, 50*time.Millisecond)
}

// GetRun 查询单次任务
func (s *RunStore) GetRun(id string) (*model.CollectionRun, error) {
	if !s.ready() {
		return nil, fmt.Errorf("database not initialized")
	}
	var run model.CollectionRun
	if err := database.GetDB().First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 按时间倒序列出任务
func (s *RunStore) ListRuns(limit int) ([]model.CollectionRun, error) {
	if !s.ready() {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	var runs []model.CollectionRun
	err := database.GetDB().Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// ListRecords 列出一次任务的所有设备结果
func (s *RunStore) ListRecords(runID string) ([]model.DeviceRecord, error) {
	if !s.ready() {
		return nil, fmt.Errorf("database not initialized")
	}
	var records []model.DeviceRecord
	err := database.GetDB().Where("run_id = ?", runID).Order("id").Find(&records).Error
	return records, err
}
