package model

import (
	"encoding/json"
	"time"
)

// 采集任务状态
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// CollectionRun 一次全网采集任务
type CollectionRun struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Status      string     `gorm:"size:16;index" json:"status"`
	HostsTotal  int        `json:"hosts_total"`
	HostsDone   int        `json:"hosts_done"`
	HostsFailed int        `json:"hosts_failed"`
	ReportPath  string     `gorm:"size:512" json:"report_path"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (CollectionRun) TableName() string {
	return "collection_runs"
}

// DeviceRecord 单台设备的采集结果
type DeviceRecord struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID    string `gorm:"size:36;index" json:"run_id"`
	Hostname string `gorm:"size:128" json:"hostname"`
	IP       string `gorm:"size:64;index" json:"ip"`
	Platform string `gorm:"size:16" json:"platform"`
	// ValuesJSON 报表列键到采集值的映射（JSON）
	ValuesJSON string `gorm:"type:text" json:"-"`
	// RawPathsJSON 命令到原始回显归档路径的映射（JSON）
	RawPathsJSON string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (DeviceRecord) TableName() string {
	return "device_records"
}

// SetValues 序列化采集值
func (r *DeviceRecord) SetValues(values map[string]string) {
	b, _ := json.Marshal(values)
	r.ValuesJSON = string(b)
}

// Values 反序列化采集值
func (r *DeviceRecord) Values() map[string]string {
	values := make(map[string]string)
	if r.ValuesJSON != "" {
		_ = json.Unmarshal([]byte(r.ValuesJSON), &values)
	}
	return values
}

// SetRawPaths 序列化原始回显归档路径
func (r *DeviceRecord) SetRawPaths(paths map[string]string) {
	if len(paths) == 0 {
		return
	}
	b, _ := json.Marshal(paths)
	r.RawPathsJSON = string(b)
}

// RawPaths 反序列化原始回显归档路径
func (r *DeviceRecord) RawPaths() map[string]string {
	paths := make(map[string]string)
	if r.RawPathsJSON != "" {
		_ = json.Unmarshal([]byte(r.RawPathsJSON), &paths)
	}
	return paths
}
