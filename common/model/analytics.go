package model

import "github.com/shopspring/decimal"

// Analytics 只读的经营分析，不参与健康分
type Analytics struct {
	TopMerchants  []RankedEntity `json:"top_merchants"`
	TopAffiliates []RankedEntity `json:"top_affiliates"`
	Customers     CustomerValue  `json:"customer_value"`
}

// RankedEntity 按金额排名的商家或联盟店铺
type RankedEntity struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// CustomerSpending 已送达订单按手机号聚合的原始数据
type CustomerSpending struct {
	Orders          int64
	Total           decimal.Decimal
	Customers       int64
	RepeatCustomers int64
}

// CustomerValue 客户价值，RepeatRate 单位为 %
type CustomerValue struct {
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	RepeatRate      float64         `json:"repeat_rate"`
	RepeatCustomers int64           `json:"repeat_customers"`
	TotalCustomers  int64           `json:"total_customers"`
	EstimatedCLV    decimal.Decimal `json:"estimated_clv"`
}

// SecurityReport 安全子评分，由本次发现推导
type SecurityReport struct {
	SuspiciousPhones           int `json:"suspicious_phones"`
	PendingWithdrawals         int `json:"pending_withdrawals"`
	MerchantPendingWithdrawals int `json:"merchant_pending_withdrawals"`
	Score                      int `json:"security_score"`
}

// PerformanceReport 库存子评分，计数受证据条数上限约束
type PerformanceReport struct {
	LowStock   int `json:"low_stock_count"`
	OutOfStock int `json:"out_of_stock_count"`
	Score      int `json:"performance_score"`
}
