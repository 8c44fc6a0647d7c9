package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"healthbrain/common/entity"
	"healthbrain/common/model"
)

// 历史报告查询上限
const (
	DefaultReportLimit = 20
	MaxReportLimit     = 50
)

// ReportRepository 体检报告仓储
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报告仓储实例
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save 保存一份完整报告
func (r *ReportRepository) Save(ctx context.Context, report *model.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	po := &entity.BrainReport{
		ID:          report.RunID,
		HealthScore: report.HealthScore,
		Summary:     report.Summary,
		AutoFix:     report.AutoFix,
		Question:    report.Question,
		Report:      datatypes.JSON(raw),
		GeneratedAt: report.GeneratedAt,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.RunID, err)
	}
	return nil
}

// List 按生成时间倒序列出最近的报告
func (r *ReportRepository) List(ctx context.Context, limit int) ([]*model.ReportSummary, error) {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	if limit > MaxReportLimit {
		limit = MaxReportLimit
	}

	var rows []entity.BrainReport
	err := r.db.WithContext(ctx).
		Order("generated_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]*model.ReportSummary, 0, len(rows))
	for i := range rows {
		summary, err := toReportSummary(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func toReportSummary(po *entity.BrainReport) (*model.ReportSummary, error) {
	var report model.Report
	if err := json.Unmarshal(po.Report, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", po.ID, err)
	}
	return &model.ReportSummary{
		RunID:       po.ID,
		HealthScore: po.HealthScore,
		Summary:     po.Summary,
		AutoFix:     po.AutoFix,
		GeneratedAt: po.GeneratedAt.Unix(),
		Report:      &report,
	}, nil
}
