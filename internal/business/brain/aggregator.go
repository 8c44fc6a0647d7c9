package brain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"healthbrain/common/entity"
	"healthbrain/common/model"
)

// Aggregator 并发采集平台统计快照
type Aggregator struct {
	reader StatsReader
}

// NewAggregator 创建统计采集器
func NewAggregator(reader StatsReader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Aggregate 一次性并发执行全部计数与汇总查询
// 任一查询失败即整体失败，不返回部分快照
func (a *Aggregator) Aggregate(ctx context.Context, w Windows) (*model.Stats, error) {
	stats := &model.Stats{}
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, q CountQuery) {
		g.Go(func() error {
			n, err := a.reader.Count(gctx, q)
			if err != nil {
				return fmt.Errorf("count %s: %w", describeCount(q), err)
			}
			*dst = n
			return nil
		})
	}
	sum := func(dst *decimal.Decimal, since time.Time) {
		q := SumQuery{
			Table:        TableOrders,
			AmountColumn: "total_amount_sar",
			Status:       entity.OrderStatusDelivered,
			Column:       "created_at",
			Since:        &since,
		}
		g.Go(func() error {
			v, err := a.reader.Sum(gctx, q)
			if err != nil {
				return fmt.Errorf("sum revenue since %s: %w", since.Format(time.RFC3339), err)
			}
			*dst = v
			return nil
		})
	}

	// 1. 用户
	count(&stats.Users.Total, CountQuery{Table: TableProfiles})
	count(&stats.Users.ActiveWeek, CountQuery{Table: TableProfiles, Column: "last_activity_at", Since: &w.WeekAgo})

	// 2. 订单
	count(&stats.Orders.Total, CountQuery{Table: TableOrders})
	count(&stats.Orders.Today, CountQuery{Table: TableOrders, Column: "created_at", Since: &w.Today})
	count(&stats.Orders.Week, CountQuery{Table: TableOrders, Column: "created_at", Since: &w.WeekAgo})
	count(&stats.Orders.Month, CountQuery{Table: TableOrders, Column: "created_at", Since: &w.MonthAgo})
	count(&stats.Orders.Pending, CountQuery{Table: TableOrders, Status: entity.OrderStatusPending})
	count(&stats.Orders.Delivered, CountQuery{Table: TableOrders, Status: entity.OrderStatusDelivered})

	// 3. 商品、店铺、商家
	count(&stats.Products.Total, CountQuery{Table: TableProducts})
	count(&stats.Stores.Total, CountQuery{Table: TableAffiliateStores})
	count(&stats.Merchants.Total, CountQuery{Table: TableMerchants})

	// 4. 收入
	sum(&stats.Revenue.Today, w.Today)
	sum(&stats.Revenue.Week, w.WeekAgo)
	sum(&stats.Revenue.Month, w.MonthAgo)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	derive(stats)
	return stats, nil
}

// derive 计算派生指标
func derive(stats *model.Stats) {
	stats.Orders.AvgDaily = float64(stats.Orders.Week) / 7
	stats.Orders.TodayProgress = TodayProgress(stats.Orders.Today, stats.Orders.AvgDaily)

	if stats.Users.Total > 0 {
		stats.Users.GrowthRate = float64(stats.Users.ActiveWeek) / float64(stats.Users.Total) * 100
	}

	if stats.Revenue.Month.IsPositive() {
		growth := stats.Revenue.Week.Mul(decimal.NewFromInt(4)).
			Sub(stats.Revenue.Month).
			Div(stats.Revenue.Month).
			Mul(decimal.NewFromInt(100))
		stats.Revenue.Growth = growth.Round(2).InexactFloat64()
	}
}

// TodayProgress 今日订单相对日均的百分比，日均不足 1 时按 1 计算
func TodayProgress(today int64, avgDaily float64) float64 {
	return float64(today) / math.Max(avgDaily, 1) * 100
}

func describeCount(q CountQuery) string {
	desc := q.Table
	if q.Status != "" {
		desc += " status=" + q.Status
	}
	if q.Since != nil {
		desc += fmt.Sprintf(" %s>=%s", q.Column, q.Since.Format(time.RFC3339))
	}
	return desc
}
