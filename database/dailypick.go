package database

import (
	"peipao-bot/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 缓存只保留最近 60 天，老的行在写入事务里顺手修剪掉。
const dailyPickKeep = 60

// GetDailyPick 读取某日的建议缓存；没有则返回 nil, nil。
func GetDailyPick(pickDate string) (*model.DailyPick, error) {
	var pick model.DailyPick
	err := db.Where("pick_date = ?", pickDate).First(&pick).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &pick, nil
}

// SaveDailyPick 在一个事务里写入当日缓存并修剪旧记录。
// 并发首次请求可能同时走到这里，按日期覆盖写，后写者生效。
func SaveDailyPick(pick *model.DailyPick) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(pick).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.DailyPick{}).Count(&count).Error; err != nil {
			return err
		}
		if count > dailyPickKeep {
			limit := int(count) - dailyPickKeep
			var stale []model.DailyPick
			if err := tx.Order("pick_date asc").Limit(limit).Find(&stale).Error; err != nil {
				return err
			}
			if len(stale) > 0 {
				if err := tx.Delete(&stale).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
