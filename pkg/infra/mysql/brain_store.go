package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthbrain/common/entity"
	"healthbrain/common/model"
	"healthbrain/internal/business/brain"
)

// BrainStore 体检引擎的数据访问实现（gorm）
type BrainStore struct {
	db *gorm.DB
}

var _ brain.Store = (*BrainStore)(nil)

// NewBrainStore 创建 BrainStore 实例
func NewBrainStore(db *gorm.DB) *BrainStore {
	return &BrainStore{db: db}
}

// applyFilters 状态过滤 + 时间下界
func applyFilters(tx *gorm.DB, status, column string, since *time.Time) *gorm.DB {
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if column != "" && since != nil {
		tx = tx.Where(clause.Gte{Column: clause.Column{Name: column}, Value: *since})
	}
	return tx
}

// Count 按条件计数
func (s *BrainStore) Count(ctx context.Context, q brain.CountQuery) (int64, error) {
	var n int64
	tx := applyFilters(s.db.WithContext(ctx).Table(q.Table), q.Status, q.Column, q.Since)
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s failed: %w", q.Table, err)
	}
	return n, nil
}

// Sum 按条件汇总金额，无记录时为 0
func (s *BrainStore) Sum(ctx context.Context, q brain.SumQuery) (decimal.Decimal, error) {
	var total decimal.Decimal
	tx := s.db.WithContext(ctx).
		Table(q.Table).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", q.AmountColumn))
	tx = applyFilters(tx, q.Status, q.Column, q.Since)

	if err := tx.Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum %s.%s failed: %w", q.Table, q.AmountColumn, err)
	}
	return total, nil
}

// NegativeBalances 余额为负的钱包
func (s *BrainStore) NegativeBalances(ctx context.Context) ([]entity.WalletBalance, error) {
	var wallets []entity.WalletBalance
	err := s.db.WithContext(ctx).
		Where("available_balance_sar < ?", 0).
		Order("available_balance_sar").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("query negative balances failed: %w", err)
	}
	return wallets, nil
}

// StalePendingOrders 创建时间早于 before 的 PENDING 订单，最旧优先
func (s *BrainStore) StalePendingOrders(ctx context.Context, before time.Time, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entity.OrderStatusPending, before).
		Order("created_at").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("query stale orders failed: %w", err)
	}
	return orders, nil
}

// UnverifiedOTPAttempts 窗口内每个手机号的未验证 OTP 次数
func (s *BrainStore) UnverifiedOTPAttempts(ctx context.Context, since time.Time) ([]model.PhoneAttempts, error) {
	var rows []model.PhoneAttempts
	err := s.db.WithContext(ctx).
		Model(&entity.CustomerOTPSession{}).
		Select("phone, COUNT(*) AS attempts").
		Where("verified = ? AND created_at >= ?", false, since).
		Group("phone").
		Order("attempts DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query otp attempts failed: %w", err)
	}
	return rows, nil
}

// StalePendingWithdrawals 超时未处理的联盟用户提现
func (s *BrainStore) StalePendingWithdrawals(ctx context.Context, before time.Time) ([]entity.WithdrawalRequest, error) {
	var requests []entity.WithdrawalRequest
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entity.WithdrawalStatusPending, before).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("query stale withdrawals failed: %w", err)
	}
	return requests, nil
}

// StalePendingMerchantWithdrawals 超时未处理的商家提现
func (s *BrainStore) StalePendingMerchantWithdrawals(ctx context.Context, before time.Time) ([]entity.MerchantWithdrawalRequest, error) {
	var requests []entity.MerchantWithdrawalRequest
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entity.WithdrawalStatusPending, before).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("query stale merchant withdrawals failed: %w", err)
	}
	return requests, nil
}

// LowStockProducts 0 < 库存 < below 的商品
func (s *BrainStore) LowStockProducts(ctx context.Context, below int64, limit int) ([]entity.Product, error) {
	var products []entity.Product
	err := s.db.WithContext(ctx).
		Where("stock_quantity > ? AND stock_quantity < ?", 0, below).
		Order("stock_quantity").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("query low stock products failed: %w", err)
	}
	return products, nil
}

// ActiveOutOfStockProducts 仍在售但库存为 0 的商品
func (s *BrainStore) ActiveOutOfStockProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	var products []entity.Product
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity = ?", true, 0).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("query out of stock products failed: %w", err)
	}
	return products, nil
}

// HighValueOrdersByPhone 窗口内大额订单按手机号聚合
func (s *BrainStore) HighValueOrdersByPhone(ctx context.Context, since time.Time, minAmount decimal.Decimal) ([]model.FraudSuspect, error) {
	var rows []model.FraudSuspect
	err := s.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("customer_phone AS phone, COUNT(*) AS count, COALESCE(SUM(total_amount_sar), 0) AS total").
		Where("total_amount_sar >= ? AND created_at >= ?", minAmount, since).
		Where("customer_phone IS NOT NULL AND customer_phone <> ''").
		Group("customer_phone").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query high value orders failed: %w", err)
	}
	return rows, nil
}

// sampleIDs 命中总数与按 id 排序的前 limit 条 ID
func (s *BrainStore) sampleIDs(ctx context.Context, what string, limit int, scope func(*gorm.DB) *gorm.DB) (brain.IDSample, error) {
	var out brain.IDSample
	if err := scope(s.db.WithContext(ctx)).Count(&out.Total).Error; err != nil {
		return out, fmt.Errorf("count %s failed: %w", what, err)
	}
	if out.Total == 0 {
		return out, nil
	}
	if err := scope(s.db.WithContext(ctx)).Order("id").Limit(limit).Pluck("id", &out.IDs).Error; err != nil {
		return out, fmt.Errorf("sample %s failed: %w", what, err)
	}
	return out, nil
}

// ProfilesWithoutAuthUser 未关联登录账号的用户资料
func (s *BrainStore) ProfilesWithoutAuthUser(ctx context.Context, limit int) (brain.IDSample, error) {
	return s.sampleIDs(ctx, "orphan profiles", limit, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&entity.Profile{}).Where("auth_user_id IS NULL")
	})
}

// ProductsWithoutMerchant 未归属商家的商品
func (s *BrainStore) ProductsWithoutMerchant(ctx context.Context, limit int) (brain.IDSample, error) {
	return s.sampleIDs(ctx, "orphan products", limit, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&entity.Product{}).Where("merchant_id IS NULL OR merchant_id = ''")
	})
}

// BannedActiveMembers 已封禁但仍激活的成员
func (s *BrainStore) BannedActiveMembers(ctx context.Context, limit int) (brain.IDSample, error) {
	return s.sampleIDs(ctx, "banned members", limit, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&entity.RoomMember{}).Where("is_banned = ? AND is_active = ?", true, true)
	})
}

// ExpiredActiveCoupons 过期但仍启用的优惠券，过滤条件与 DeactivateExpiredCoupons 一致
func (s *BrainStore) ExpiredActiveCoupons(ctx context.Context, now time.Time, limit int) (brain.IDSample, error) {
	return s.sampleIDs(ctx, "expired coupons", limit, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&entity.AffiliateCoupon{}).
			Where("is_active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, now)
	})
}

// CountExpiredOTPSessions 已过期的 OTP 会话数
func (s *BrainStore) CountExpiredOTPSessions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&entity.CustomerOTPSession{}).
		Where("expires_at < ?", now).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count expired otp sessions failed: %w", err)
	}
	return n, nil
}

// CountUnverifiedOTPSessions since 之后创建且未验证的 OTP 会话数
func (s *BrainStore) CountUnverifiedOTPSessions(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&entity.CustomerOTPSession{}).
		Where("verified = ? AND created_at >= ?", false, since).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unverified otp sessions failed: %w", err)
	}
	return n, nil
}

// TopMerchants 窗口内订单明细金额最高的商家
func (s *BrainStore) TopMerchants(ctx context.Context, since time.Time, limit int) ([]model.RankedEntity, error) {
	var rows []model.RankedEntity
	err := s.db.WithContext(ctx).
		Model(&entity.OrderItem{}).
		Select("merchant_id AS id, COALESCE(SUM(total_price_sar), 0) AS amount").
		Where("created_at >= ? AND merchant_id IS NOT NULL AND merchant_id <> ''", since).
		Group("merchant_id").
		Order("amount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query top merchants failed: %w", err)
	}
	return rows, nil
}

// TopAffiliateStores 窗口内订单金额最高的联盟店铺
func (s *BrainStore) TopAffiliateStores(ctx context.Context, since time.Time, limit int) ([]model.RankedEntity, error) {
	var rows []model.RankedEntity
	err := s.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("affiliate_store_id AS id, COALESCE(SUM(total_amount_sar), 0) AS amount").
		Where("created_at >= ? AND affiliate_store_id IS NOT NULL AND affiliate_store_id <> ''", since).
		Group("affiliate_store_id").
		Order("amount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query top affiliates failed: %w", err)
	}
	return rows, nil
}

// CustomerSpending 已送达订单的订单数、金额与按手机号的复购统计
func (s *BrainStore) CustomerSpending(ctx context.Context) (model.CustomerSpending, error) {
	var out model.CustomerSpending

	delivered := s.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("status = ?", entity.OrderStatusDelivered)
	err := delivered.
		Select("COUNT(*), COALESCE(SUM(total_amount_sar), 0)").
		Row().Scan(&out.Orders, &out.Total)
	if err != nil {
		return out, fmt.Errorf("query delivered orders failed: %w", err)
	}

	perPhone := s.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("customer_phone, COUNT(*) AS n").
		Where("status = ? AND customer_phone IS NOT NULL AND customer_phone <> ''", entity.OrderStatusDelivered).
		Group("customer_phone")
	err = s.db.WithContext(ctx).
		Table("(?) AS per_phone", perPhone).
		Select("COUNT(*), COALESCE(SUM(CASE WHEN n > 1 THEN 1 ELSE 0 END), 0)").
		Row().Scan(&out.Customers, &out.RepeatCustomers)
	if err != nil {
		return out, fmt.Errorf("query repeat customers failed: %w", err)
	}
	return out, nil
}

// DeleteExpiredOTPSessions 删除已过期的 OTP 会话
func (s *BrainStore) DeleteExpiredOTPSessions(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.CustomerOTPSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired otp sessions failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeactivateExpiredCoupons 停用已过有效期的优惠券
func (s *BrainStore) DeactivateExpiredCoupons(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&entity.AffiliateCoupon{}).
		Where("is_active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivate expired coupons failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeactivateBannedMembers 停用仍处于激活状态的封禁成员
func (s *BrainStore) DeactivateBannedMembers(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&entity.RoomMember{}).
		Where("is_banned = ? AND is_active = ?", true, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivate banned members failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DisableOutOfStockProducts 下架库存为 0 的在售商品
func (s *BrainStore) DisableOutOfStockProducts(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("is_active = ? AND stock_quantity = ?", true, 0).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("disable out of stock products failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
