package entity

import (
	"time"

	"gorm.io/datatypes"
)

// BrainReport 体检报告持久化记录
type BrainReport struct {
	// 基础字段
	ID          string `gorm:"column:id;primaryKey;type:varchar(64)"`
	HealthScore int    `gorm:"column:health_score;not null"`
	Summary     string `gorm:"column:summary;type:text"`
	AutoFix     bool   `gorm:"column:auto_fix;not null;default:false"`
	Question    string `gorm:"column:question;type:text"`

	// 完整报告
	Report datatypes.JSON `gorm:"column:report;type:json;not null"`

	// 时间戳
	GeneratedAt time.Time `gorm:"column:generated_at;not null;index:idx_report_generated_at"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (BrainReport) TableName() string {
	return "brain_reports"
}
