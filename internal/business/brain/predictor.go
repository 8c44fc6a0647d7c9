package brain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"healthbrain/common/model"
)

const (
	declineProgress   = 50.0
	declineAfterHour  = 14
	surgeProgress     = 150.0
	declineConfidence = 0.75
	surgeConfidence   = 0.9
	revenueWindowDays = 30
)

// Predict 根据今日进度给出销售趋势判断
// now 需已转换到业务时区；无触发条件时返回空切片
func Predict(stats *model.Stats, now time.Time) []model.Prediction {
	predictions := make([]model.Prediction, 0)
	if stats == nil {
		return predictions
	}

	progress := TodayProgress(stats.Orders.Today, stats.Orders.AvgDaily)
	avgRevenue := AvgDailyRevenue(stats.Revenue)

	if progress < declineProgress && now.Hour() >= declineAfterHour {
		shortfall := nonNegative(avgRevenue.Sub(stats.Revenue.Today))
		predictions = append(predictions, model.Prediction{
			Type:            model.PredictionSalesDecline,
			Title:           "Sales running below average",
			Description:     fmt.Sprintf("Today's orders are at %.0f%% of the daily average", progress),
			Confidence:      declineConfidence,
			Suggestion:      "Launch a flash promotion or notify affiliates to push today's offers",
			PredictedImpact: fmt.Sprintf("Potential shortfall: %s SAR", shortfall.StringFixed(2)),
		})
	}

	if progress > surgeProgress {
		extra := nonNegative(stats.Revenue.Today.Sub(avgRevenue))
		predictions = append(predictions, model.Prediction{
			Type:            model.PredictionSalesSurge,
			Title:           "Sales running above average",
			Description:     fmt.Sprintf("Today's orders are at %.0f%% of the daily average", progress),
			Confidence:      surgeConfidence,
			Suggestion:      "Check inventory levels and shipping capacity",
			PredictedImpact: fmt.Sprintf("Additional revenue: %s SAR", extra.StringFixed(2)),
		})
	}

	return predictions
}

// AvgDailyRevenue 近 30 天已送达收入的日均值
func AvgDailyRevenue(r model.RevenueStats) decimal.Decimal {
	return r.Month.Div(decimal.NewFromInt(revenueWindowDays))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
