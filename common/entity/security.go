package entity

import "time"

// CustomerOTPSession 顾客 OTP 会话
type CustomerOTPSession struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Phone     string    `gorm:"column:phone;type:varchar(32);not null;index:idx_otp_phone_created"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_otp_phone_created"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_otp_expires_at"`
}

// TableName 指定表名
func (CustomerOTPSession) TableName() string {
	return "customer_otp_sessions"
}

// RoomMember 聊天室成员
type RoomMember struct {
	ID       string `gorm:"column:id;primaryKey;type:varchar(64)"`
	RoomID   string `gorm:"column:room_id;type:varchar(64)"`
	UserID   string `gorm:"column:user_id;type:varchar(64)"`
	IsBanned bool   `gorm:"column:is_banned;not null;default:false"`
	IsActive bool   `gorm:"column:is_active;not null"`
}

// TableName 指定表名
func (RoomMember) TableName() string {
	return "room_members"
}
