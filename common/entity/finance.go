package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletBalance 联盟用户钱包余额
type WalletBalance struct {
	ID                  string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	AffiliateProfileID  string          `gorm:"column:affiliate_profile_id;type:varchar(64);not null"`
	AvailableBalanceSAR decimal.Decimal `gorm:"column:available_balance_sar;type:decimal(14,2);not null;default:0"`
}

// TableName 指定表名
func (WalletBalance) TableName() string {
	return "wallet_balances"
}

// WithdrawalRequest 联盟用户提现申请
type WithdrawalRequest struct {
	ID                 string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	AffiliateProfileID string          `gorm:"column:affiliate_profile_id;type:varchar(64);not null"`
	AmountSAR          decimal.Decimal `gorm:"column:amount_sar;type:decimal(14,2);not null"`
	Status             string          `gorm:"column:status;type:varchar(32);not null;index:idx_withdrawal_status_created"`
	CreatedAt          time.Time       `gorm:"column:created_at;not null;index:idx_withdrawal_status_created"`
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// MerchantWithdrawalRequest 商家提现申请
type MerchantWithdrawalRequest struct {
	ID         string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	MerchantID string          `gorm:"column:merchant_id;type:varchar(64);not null"`
	AmountSAR  decimal.Decimal `gorm:"column:amount_sar;type:decimal(14,2);not null"`
	Status     string          `gorm:"column:status;type:varchar(32);not null;index:idx_merchant_withdrawal_status_created"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null;index:idx_merchant_withdrawal_status_created"`
}

// TableName 指定表名
func (MerchantWithdrawalRequest) TableName() string {
	return "merchant_withdrawal_requests"
}

// 提现状态常量
const (
	WithdrawalStatusPending = "PENDING"
)

// AffiliateCoupon 联盟优惠券
type AffiliateCoupon struct {
	ID         string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	Code       string     `gorm:"column:code;type:varchar(64)"`
	IsActive   bool       `gorm:"column:is_active;not null"`
	ValidUntil *time.Time `gorm:"column:valid_until"`
}

// TableName 指定表名
func (AffiliateCoupon) TableName() string {
	return "affiliate_coupons"
}
