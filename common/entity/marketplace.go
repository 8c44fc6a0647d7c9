package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile 用户资料
type Profile struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	AuthUserID     *string    `gorm:"column:auth_user_id;type:varchar(64)"`
	LastActivityAt *time.Time `gorm:"column:last_activity_at;index:idx_profile_last_activity"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// Order 订单中心记录
type Order struct {
	ID               string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderNumber      string          `gorm:"column:order_number;type:varchar(64)"`
	Status           string          `gorm:"column:status;type:varchar(32);not null;index:idx_order_status_created"`
	TotalAmountSAR   decimal.Decimal `gorm:"column:total_amount_sar;type:decimal(14,2);not null;default:0"`
	CustomerPhone    string          `gorm:"column:customer_phone;type:varchar(32);index:idx_order_phone_created"`
	AffiliateStoreID string          `gorm:"column:affiliate_store_id;type:varchar(64)"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null;index:idx_order_status_created;index:idx_order_phone_created"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "order_hub"
}

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusDelivered = "DELIVERED"
)

// OrderItem 订单明细，按商家拆分
type OrderItem struct {
	ID            string          `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderID       string          `gorm:"column:order_id;type:varchar(64);index:idx_order_item_order"`
	MerchantID    string          `gorm:"column:merchant_id;type:varchar(64)"`
	TotalPriceSAR decimal.Decimal `gorm:"column:total_price_sar;type:decimal(14,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;index:idx_order_item_created"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Product 商品
type Product struct {
	ID            string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name          string    `gorm:"column:name;type:varchar(255)"`
	MerchantID    string    `gorm:"column:merchant_id;type:varchar(64)"`
	StockQuantity int64     `gorm:"column:stock_quantity;not null;default:0"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// AffiliateStore 联盟店铺
type AffiliateStore struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (AffiliateStore) TableName() string {
	return "affiliate_stores"
}

// Merchant 商家
type Merchant struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
