package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EvidenceKind 证据类型（tagged union 的判别字段）
type EvidenceKind string

// 证据类型常量
const (
	EvidenceNegativeBalance         EvidenceKind = "negative_balance"
	EvidenceStaleOrder              EvidenceKind = "stale_order"
	EvidenceOTPAbuse                EvidenceKind = "otp_abuse"
	EvidenceStaleWithdrawal         EvidenceKind = "stale_withdrawal"
	EvidenceStaleMerchantWithdrawal EvidenceKind = "stale_merchant_withdrawal"
	EvidenceLowStock                EvidenceKind = "low_stock"
	EvidenceOutOfStock              EvidenceKind = "out_of_stock"
	EvidenceFraudSuspect            EvidenceKind = "fraud_suspect"
	EvidenceRemediation             EvidenceKind = "remediation"
	EvidenceOrphanProfile           EvidenceKind = "orphan_profile"
	EvidenceOrphanProduct           EvidenceKind = "orphan_product"
	EvidenceBannedMember            EvidenceKind = "banned_active_member"
	EvidenceExpiredCoupon           EvidenceKind = "expired_active_coupon"
	EvidenceExpiredOTPBacklog       EvidenceKind = "expired_otp_backlog"
	EvidenceOTPFlood                EvidenceKind = "otp_flood"
)

// Evidence Action 附带的证据，Kind 决定哪个字段有值
type Evidence struct {
	Kind EvidenceKind `json:"kind"`

	Wallets     []WalletRecord     `json:"wallets,omitempty"`
	Orders      []OrderRecord      `json:"orders,omitempty"`
	Phones      []PhoneAttempts    `json:"phones,omitempty"`
	Withdrawals []WithdrawalRecord `json:"withdrawals,omitempty"`
	Products    []ProductRecord    `json:"products,omitempty"`
	Suspects    []FraudSuspect     `json:"suspects,omitempty"`
	Remediation *RemediationResult `json:"remediation,omitempty"`

	// IDs 样本记录 ID，Count 为命中总数
	IDs   []string `json:"ids,omitempty"`
	Count *int64   `json:"count,omitempty"`

	// Total 提现类证据的金额合计
	Total *decimal.Decimal `json:"total,omitempty"`
}

// WalletRecord 余额为负的钱包
type WalletRecord struct {
	ID                 string          `json:"id"`
	AffiliateProfileID string          `json:"affiliate_profile_id"`
	AvailableBalance   decimal.Decimal `json:"available_balance"`
}

// OrderRecord 滞留订单
type OrderRecord struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhoneAttempts 单个手机号的未验证 OTP 次数
type PhoneAttempts struct {
	Phone    string `json:"phone"`
	Attempts int64  `json:"attempts"`
}

// WithdrawalRecord 滞留提现申请，OwnerID 为联盟用户或商家 ID
type WithdrawalRecord struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductRecord 库存异常商品
type ProductRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MerchantID    string `json:"merchant_id,omitempty"`
	StockQuantity int64  `json:"stock_quantity"`
}

// FraudSuspect 疑似欺诈的下单手机号
type FraudSuspect struct {
	Phone string          `json:"phone"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// RemediationResult 单个修复动作的执行结果
type RemediationResult struct {
	Mutation     string `json:"mutation"`
	RowsAffected int64  `json:"rows_affected"`
}

// NewNegativeBalanceEvidence 创建负余额证据
func NewNegativeBalanceEvidence(wallets []WalletRecord) *Evidence {
	return &Evidence{Kind: EvidenceNegativeBalance, Wallets: wallets}
}

// NewStaleOrderEvidence 创建滞留订单证据
func NewStaleOrderEvidence(orders []OrderRecord) *Evidence {
	return &Evidence{Kind: EvidenceStaleOrder, Orders: orders}
}

// NewOTPAbuseEvidence 创建 OTP 滥用证据
func NewOTPAbuseEvidence(phones []PhoneAttempts) *Evidence {
	return &Evidence{Kind: EvidenceOTPAbuse, Phones: phones}
}

// NewWithdrawalEvidence 创建提现证据并计算合计
func NewWithdrawalEvidence(kind EvidenceKind, records []WithdrawalRecord) *Evidence {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return &Evidence{Kind: kind, Withdrawals: records, Total: &total}
}

// NewProductEvidence 创建商品库存证据
func NewProductEvidence(kind EvidenceKind, products []ProductRecord) *Evidence {
	return &Evidence{Kind: kind, Products: products}
}

// NewFraudEvidence 创建疑似欺诈证据
func NewFraudEvidence(suspects []FraudSuspect) *Evidence {
	return &Evidence{Kind: EvidenceFraudSuspect, Suspects: suspects}
}

// NewRemediationEvidence 创建修复结果证据
func NewRemediationEvidence(mutation string, rows int64) *Evidence {
	return &Evidence{
		Kind:        EvidenceRemediation,
		Remediation: &RemediationResult{Mutation: mutation, RowsAffected: rows},
	}
}

// NewSampleEvidence 创建样本证据，ids 可为空
func NewSampleEvidence(kind EvidenceKind, ids []string, count int64) *Evidence {
	return &Evidence{Kind: kind, IDs: ids, Count: &count}
}
