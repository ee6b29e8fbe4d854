package database

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"peipao-bot/database/model"
	"peipao-bot/logger"

	"gorm.io/gorm/clause"
)

const (
	syntheticSeed = 539
	syntheticDays = 240
	maxDrawNumber = 39
	drawArity     = 5
)

// UpsertDraws 按日期整行覆盖写入，日期重叠时以本次数据为准。
func UpsertDraws(records []*model.Draw) error {
	if len(records) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(records).Error
}

// CountDraws 返回历史开奖行数。
func CountDraws() (int64, error) {
	var count int64
	err := db.Model(&model.Draw{}).Count(&count).Error
	return count, err
}

// LoadRecentDraws 按开奖日期倒序返回最多 limit 期号码。
// 上游数据源格式不齐，解析后不足 5 个号码的行直接跳过。
func LoadRecentDraws(limit int) ([][]int, error) {
	var rows []*model.Draw
	err := db.Order("draw_date desc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	draws := make([][]int, 0, len(rows))
	for _, row := range rows {
		numbers, ok := ParseDrawNumbers(row.Numbers)
		if !ok {
			logger.Debugf("skip malformed draw row %s: %q", row.DrawDate, row.Numbers)
			continue
		}
		draws = append(draws, numbers)
	}
	return draws, nil
}

// ParseDrawNumbers 把 "3,14,22,31,39" 解析为号码切片，
// 个数不等于 5 或含非数字时返回 ok == false。
func ParseDrawNumbers(raw string) ([]int, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != drawArity {
		return nil, false
	}
	numbers := make([]int, 0, drawArity)
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, false
		}
		numbers = append(numbers, n)
	}
	return numbers, true
}

// FormatDrawNumbers 是 ParseDrawNumbers 的写入侧。
func FormatDrawNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}

// SeedDrawsIfEmpty 空库时生成 240 期合成历史，截止到 now 所在日期。
// 固定种子保证每次部署生成完全相同的号码序列。三个号段的权重做
// 慢漂移随机游走：每 20 期调一次，一个随机号段 +0.25，另一个不同
// 号段 -0.15（下限 0.85），让合成数据带有"热区"信号，避免模型退化。
func SeedDrawsIfEmpty(now time.Time, tz *time.Location) error {
	count, err := CountDraws()
	if err != nil || count > 0 {
		return err
	}

	rng := rand.New(rand.NewSource(syntheticSeed))
	weights := [3]float64{1.0, 1.0, 1.0}
	records := make([]*model.Draw, 0, syntheticDays)
	today := now.In(tz)

	for i := 0; i < syntheticDays; i++ {
		if i%20 == 0 {
			up := rng.Intn(3)
			down := rng.Intn(3)
			for down == up {
				down = rng.Intn(3)
			}
			weights[up] += 0.25
			weights[down] -= 0.15
			if weights[down] < 0.85 {
				weights[down] = 0.85
			}
		}

		date := today.AddDate(0, 0, i-(syntheticDays-1)).Format("2006-01-02")
		records = append(records, &model.Draw{
			DrawDate: date,
			Numbers:  FormatDrawNumbers(syntheticDraw(rng, weights)),
		})
	}

	logger.Infof("draw store empty, seeding %d synthetic draws", len(records))
	return UpsertDraws(records)
}

// syntheticDraw 按当前号段权重抽 5 个号段，再在号段内均匀取号，
// 去重后用全范围均匀号补足到 5 个，升序返回。
func syntheticDraw(rng *rand.Rand, weights [3]float64) []int {
	picked := make(map[int]struct{}, drawArity)
	for i := 0; i < drawArity; i++ {
		zone := weightedZone(rng, weights)
		n := zone*13 + 1 + rng.Intn(13)
		picked[n] = struct{}{}
	}
	for len(picked) < drawArity {
		picked[1+rng.Intn(maxDrawNumber)] = struct{}{}
	}

	numbers := make([]int, 0, drawArity)
	for n := range picked {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func weightedZone(rng *rand.Rand, weights [3]float64) int {
	total := weights[0] + weights[1] + weights[2]
	r := rng.Float64() * total
	acc := 0.0
	for zone, w := range weights {
		acc += w
		if r < acc {
			return zone
		}
	}
	return len(weights) - 1
}
