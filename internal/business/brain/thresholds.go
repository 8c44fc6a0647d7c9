package brain

import (
	"time"

	"github.com/shopspring/decimal"

	"healthbrain/pkg/config"
)

// Thresholds 引擎运行参数，显式传入，引擎不读取进程环境
type Thresholds struct {
	Location             *time.Location
	RunTimeout           time.Duration
	StaleOrderAge        time.Duration
	StaleOrderLimit      int
	StaleWithdrawalAge   time.Duration
	OTPWindow            time.Duration
	OTPMaxAttempts       int64
	LowStockThreshold    int64
	ProductEvidenceLimit int
	FraudWindow          time.Duration
	FraudMinOrderAmount  decimal.Decimal
	FraudMinOrders       int64
	FraudMinTotal        decimal.Decimal
	// ExpiredOTPBacklog 过期 OTP 会话数严格大于该值时提示清理
	ExpiredOTPBacklog int64
	// OTPFloodThreshold OTPWindow 内未验证会话总数严格大于该值时告警
	OTPFloodThreshold int64
	TopRankingLimit   int
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		Location:             time.UTC,
		RunTimeout:           25 * time.Second,
		StaleOrderAge:        72 * time.Hour,
		StaleOrderLimit:      20,
		StaleWithdrawalAge:   72 * time.Hour,
		OTPWindow:            time.Hour,
		OTPMaxAttempts:       5,
		LowStockThreshold:    5,
		ProductEvidenceLimit: 10,
		FraudWindow:          7 * 24 * time.Hour,
		FraudMinOrderAmount:  decimal.NewFromInt(1000),
		FraudMinOrders:       3,
		FraudMinTotal:        decimal.NewFromInt(5000),
		ExpiredOTPBacklog:    10,
		OTPFloodThreshold:    50,
		TopRankingLimit:      5,
	}
}

// NewThresholds 从配置转换，未配置的字段保留默认值
func NewThresholds(c config.BrainConfig) (Thresholds, error) {
	th := DefaultThresholds()

	loc, err := c.Location()
	if err != nil {
		return th, err
	}
	th.Location = loc

	if c.RunTimeout > 0 {
		th.RunTimeout = c.RunTimeout
	}
	if c.StaleOrderAge > 0 {
		th.StaleOrderAge = c.StaleOrderAge
	}
	if c.StaleOrderLimit > 0 {
		th.StaleOrderLimit = c.StaleOrderLimit
	}
	if c.StaleWithdrawalAge > 0 {
		th.StaleWithdrawalAge = c.StaleWithdrawalAge
	}
	if c.OTPWindow > 0 {
		th.OTPWindow = c.OTPWindow
	}
	if c.OTPMaxAttempts > 0 {
		th.OTPMaxAttempts = c.OTPMaxAttempts
	}
	if c.LowStockThreshold > 0 {
		th.LowStockThreshold = c.LowStockThreshold
	}
	if c.ProductEvidenceLimit > 0 {
		th.ProductEvidenceLimit = c.ProductEvidenceLimit
	}
	if c.FraudWindow > 0 {
		th.FraudWindow = c.FraudWindow
	}
	if c.FraudMinOrderAmount > 0 {
		th.FraudMinOrderAmount = decimal.NewFromFloat(c.FraudMinOrderAmount)
	}
	if c.FraudMinOrders > 0 {
		th.FraudMinOrders = c.FraudMinOrders
	}
	if c.FraudMinTotal > 0 {
		th.FraudMinTotal = decimal.NewFromFloat(c.FraudMinTotal)
	}
	if c.ExpiredOTPBacklog > 0 {
		th.ExpiredOTPBacklog = c.ExpiredOTPBacklog
	}
	if c.OTPFloodThreshold > 0 {
		th.OTPFloodThreshold = c.OTPFloodThreshold
	}
	if c.TopRankingLimit > 0 {
		th.TopRankingLimit = c.TopRankingLimit
	}

	return th, nil
}
