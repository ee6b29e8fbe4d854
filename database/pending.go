package database

import (
	"errors"
	"time"

	"peipao-bot/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 审批时不存在对应的待审记录。
var ErrNotFound = errors.New("pending activation not found")

// SubmitPendingActivation 登记一笔待审核的开通申请。
// 同一 account_ref 重复提交时整行覆盖（user_id 与 created_at 都刷新）。
func SubmitPendingActivation(accountRef string, userId string) error {
	record := &model.PendingActivation{
		AccountRef: accountRef,
		UserId:     userId,
		CreatedAt:  time.Now(),
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

// ApprovePendingActivation 原子地取出并删除一笔待审记录，返回其
// user_id。读和删必须在同一个事务里：两个管理员同时审批同一笔
// 申请时，只有一个能弹出成功，另一个得到 ErrNotFound。
func ApprovePendingActivation(accountRef string) (string, error) {
	var userId string
	err := db.Transaction(func(tx *gorm.DB) error {
		var record model.PendingActivation
		if err := tx.Where("account_ref = ?", accountRef).First(&record).Error; err != nil {
			if IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		userId = record.UserId
		return tx.Where("account_ref = ?", accountRef).Delete(&model.PendingActivation{}).Error
	})
	if err != nil {
		return "", err
	}
	return userId, nil
}

// ListRecentPendingActivations 按提交时间倒序返回最多 limit 笔待审记录。
func ListRecentPendingActivations(limit int) ([]*model.PendingActivation, error) {
	var records []*model.PendingActivation
	err := db.Order("created_at desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
