package database

import (
	"errors"
	"time"

	"peipao-bot/database/model"

	"gorm.io/gorm/clause"
)

// ErrInvalidDate 管理员指定的到期日无法按 "2006-01-02" 解析。
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// endOfDay 把一个时刻归一到所在日历日的 23:59:59（基准时区）。
// 会员资格按"日"计，当天最后一秒前都有效。
func endOfDay(t time.Time, tz *time.Location) time.Time {
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, tz)
}

// ExtendMembership 将会员到期日设为（当前日期 + days 天）的 23:59:59，
// 覆盖写入，返回计算出的到期时刻。
func ExtendMembership(userId string, days int, tz *time.Location) (time.Time, error) {
	expiry := endOfDay(time.Now().In(tz).AddDate(0, 0, days), tz)
	member := &model.Member{UserId: userId, ExpiresAt: expiry}
	err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(member).Error
	if err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

// SetMembershipExpiry 将到期日直接设为指定日历日的 23:59:59。
func SetMembershipExpiry(userId string, dateStr string, tz *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, tz)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	expiry := endOfDay(day, tz)
	member := &model.Member{UserId: userId, ExpiresAt: expiry}
	err = db.Clauses(clause.OnConflict{UpdateAll: true}).Create(member).Error
	if err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}

// GetMembershipExpiry 查询到期时刻；未开通过返回 found == false。
func GetMembershipExpiry(userId string) (time.Time, bool, error) {
	var member model.Member
	err := db.Where("user_id = ?", userId).First(&member).Error
	if err != nil {
		if IsNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return member.ExpiresAt, true, nil
}

// IsMembershipActive 判断会员当前是否有效。比较前两侧都归一到
// 基准时区——sqlite 读回的时间戳时区与写入时未必一致。
func IsMembershipActive(userId string, tz *time.Location) (bool, error) {
	expiry, found, err := GetMembershipExpiry(userId)
	if err != nil || !found {
		return false, err
	}
	return expiry.In(tz).After(time.Now().In(tz)), nil
}
