package model

import "time"

// Member 会员到期记录，user_id 为 LINE 平台分配的不透明 id。
// 记录只会被覆盖（重新开通刷新 expires_at），不会被删除。
type Member struct {
	UserId    string    `gorm:"primaryKey;type:varchar(64)"`
	ExpiresAt time.Time `gorm:"not null"`
}

// PendingActivation 待审核的开通申请：用户提交的汇款末五码等
// 外部账务凭据，与其 LINE user id 的未确认绑定。
// 同一 account_ref 后提交者覆盖先提交者。
type PendingActivation struct {
	AccountRef string    `gorm:"primaryKey;type:varchar(64)"`
	UserId     string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// Draw 一期历史开奖：开奖日期与 5 个 1..39 的号码（逗号分隔）。
type Draw struct {
	DrawDate string `gorm:"primaryKey;type:varchar(10)"` // "2006-01-02"
	Numbers  string `gorm:"type:varchar(32);not null"`   // "3,14,22,31,39"
}

// DailyPick 当日建议的缓存行。一个日期只计算一次，当日所有
// 请求返回同一行，保证用户拿到稳定答案。
type DailyPick struct {
	PickDate  string    `gorm:"primaryKey;type:varchar(10)"`
	Numbers   string    `gorm:"type:varchar(32);not null"` // "03 14 22 31 39"
	HotZone   string    `gorm:"type:varchar(8)"`
	TopHot    string    `gorm:"type:varchar(32)"`
	Note      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}
