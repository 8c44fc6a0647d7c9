package brain

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"healthbrain/common/model"
)

const (
	clvMonths                = 12
	suspiciousPhonePenalty   = 10
	pendingWithdrawalPenalty = 5
	pendingWithdrawalLimit   = 10
	lowStockPenalty          = 2
	outOfStockPenalty        = 5
)

// Analyzer 采集经营分析数据
type Analyzer struct {
	reader AnalyticsReader
	limit  int
}

// NewAnalyzer 创建分析器，limit 为排行榜长度
func NewAnalyzer(reader AnalyticsReader, limit int) *Analyzer {
	if limit <= 0 {
		limit = 5
	}
	return &Analyzer{reader: reader, limit: limit}
}

// Analyze 并发查询排行与客户价值，任一失败整体失败
func (a *Analyzer) Analyze(ctx context.Context, w Windows) (*model.Analytics, error) {
	var (
		merchants  []model.RankedEntity
		affiliates []model.RankedEntity
		spending   model.CustomerSpending
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.reader.TopMerchants(gctx, w.MonthAgo, a.limit)
		if err != nil {
			return fmt.Errorf("top merchants: %w", err)
		}
		merchants = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.reader.TopAffiliateStores(gctx, w.MonthAgo, a.limit)
		if err != nil {
			return fmt.Errorf("top affiliates: %w", err)
		}
		affiliates = rows
		return nil
	})
	g.Go(func() error {
		s, err := a.reader.CustomerSpending(gctx)
		if err != nil {
			return fmt.Errorf("customer spending: %w", err)
		}
		spending = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if merchants == nil {
		merchants = []model.RankedEntity{}
	}
	if affiliates == nil {
		affiliates = []model.RankedEntity{}
	}
	return &model.Analytics{
		TopMerchants:  merchants,
		TopAffiliates: affiliates,
		Customers:     CustomerValueOf(spending),
	}, nil
}

// CustomerValueOf 客单价、复购率与估算 CLV
// CLV = 客单价 × (复购率 + 1) × 12
func CustomerValueOf(s model.CustomerSpending) model.CustomerValue {
	v := model.CustomerValue{
		AvgOrderValue:   decimal.Zero,
		RepeatCustomers: s.RepeatCustomers,
		TotalCustomers:  s.Customers,
		EstimatedCLV:    decimal.Zero,
	}
	if s.Orders > 0 {
		v.AvgOrderValue = s.Total.Div(decimal.NewFromInt(s.Orders)).Round(2)
	}
	if s.Customers > 0 {
		v.RepeatRate = round1(float64(s.RepeatCustomers) / float64(s.Customers) * 100)
	}
	factor := decimal.NewFromFloat(v.RepeatRate / 100).Add(decimal.NewFromInt(1))
	v.EstimatedCLV = v.AvgOrderValue.Mul(factor).Mul(decimal.NewFromInt(clvMonths)).Round(2)
	return v
}

// SecurityReportOf 从本次发现推导安全子评分
func SecurityReportOf(actions []model.Action) *model.SecurityReport {
	r := &model.SecurityReport{}
	for _, a := range actions {
		if a.Data == nil {
			continue
		}
		switch a.Data.Kind {
		case model.EvidenceOTPAbuse:
			r.SuspiciousPhones += len(a.Data.Phones)
		case model.EvidenceStaleWithdrawal:
			r.PendingWithdrawals += len(a.Data.Withdrawals)
		case model.EvidenceStaleMerchantWithdrawal:
			r.MerchantPendingWithdrawals += len(a.Data.Withdrawals)
		}
	}

	score := maxHealthScore - r.SuspiciousPhones*suspiciousPhonePenalty
	if r.PendingWithdrawals > pendingWithdrawalLimit {
		score -= pendingWithdrawalPenalty
	}
	r.Score = clampScore(score)
	return r
}

// PerformanceReportOf 从库存类发现推导性能子评分
func PerformanceReportOf(actions []model.Action) *model.PerformanceReport {
	r := &model.PerformanceReport{}
	for _, a := range actions {
		if a.Data == nil {
			continue
		}
		switch a.Data.Kind {
		case model.EvidenceLowStock:
			r.LowStock += len(a.Data.Products)
		case model.EvidenceOutOfStock:
			r.OutOfStock += len(a.Data.Products)
		}
	}
	r.Score = clampScore(maxHealthScore - r.LowStock*lowStockPenalty - r.OutOfStock*outOfStockPenalty)
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
