package brain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"healthbrain/common/entity"
	"healthbrain/common/model"
)

// 参与统计的表名
const (
	TableProfiles        = "profiles"
	TableOrders          = "order_hub"
	TableProducts        = "products"
	TableAffiliateStores = "affiliate_stores"
	TableMerchants       = "merchants"
)

// CountQuery 计数查询：表 + 可选状态过滤 + 可选时间下界（Column >= Since）
type CountQuery struct {
	Table  string
	Status string
	Column string
	Since  *time.Time
}

// SumQuery 金额汇总查询
type SumQuery struct {
	Table        string
	AmountColumn string
	Status       string
	Column       string
	Since        *time.Time
}

// IDSample 命中总数与前若干条记录 ID
type IDSample struct {
	IDs   []string
	Total int64
}

// StatsReader 统计快照所需的只读查询
type StatsReader interface {
	Count(ctx context.Context, q CountQuery) (int64, error)
	Sum(ctx context.Context, q SumQuery) (decimal.Decimal, error)
}

// RuleSource 各规则自带的定向查询
type RuleSource interface {
	NegativeBalances(ctx context.Context) ([]entity.WalletBalance, error)
	StalePendingOrders(ctx context.Context, before time.Time, limit int) ([]entity.Order, error)
	UnverifiedOTPAttempts(ctx context.Context, since time.Time) ([]model.PhoneAttempts, error)
	StalePendingWithdrawals(ctx context.Context, before time.Time) ([]entity.WithdrawalRequest, error)
	StalePendingMerchantWithdrawals(ctx context.Context, before time.Time) ([]entity.MerchantWithdrawalRequest, error)
	LowStockProducts(ctx context.Context, below int64, limit int) ([]entity.Product, error)
	ActiveOutOfStockProducts(ctx context.Context, limit int) ([]entity.Product, error)
	HighValueOrdersByPhone(ctx context.Context, since time.Time, minAmount decimal.Decimal) ([]model.FraudSuspect, error)

	ProfilesWithoutAuthUser(ctx context.Context, limit int) (IDSample, error)
	ProductsWithoutMerchant(ctx context.Context, limit int) (IDSample, error)
	BannedActiveMembers(ctx context.Context, limit int) (IDSample, error)
	ExpiredActiveCoupons(ctx context.Context, now time.Time, limit int) (IDSample, error)
	CountExpiredOTPSessions(ctx context.Context, now time.Time) (int64, error)
	CountUnverifiedOTPSessions(ctx context.Context, since time.Time) (int64, error)
}

// AnalyticsReader 经营分析查询
type AnalyticsReader interface {
	TopMerchants(ctx context.Context, since time.Time, limit int) ([]model.RankedEntity, error)
	TopAffiliateStores(ctx context.Context, since time.Time, limit int) ([]model.RankedEntity, error)
	CustomerSpending(ctx context.Context) (model.CustomerSpending, error)
}

// Remediation 幂等的修复写操作，返回影响行数
type Remediation interface {
	DeleteExpiredOTPSessions(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredCoupons(ctx context.Context, now time.Time) (int64, error)
	DeactivateBannedMembers(ctx context.Context) (int64, error)
	DisableOutOfStockProducts(ctx context.Context) (int64, error)
}

// Store 引擎依赖的全部数据访问
type Store interface {
	StatsReader
	RuleSource
	AnalyticsReader
	Remediation
}
