package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"peipao-bot/database"
	"peipao-bot/database/model"
	"peipao-bot/logger"
	"peipao-bot/util/common"
	"peipao-bot/web/locale"
)

const (
	longWindow  = 240
	shortWindow = 30
	pickSize    = 5

	// 历史数据完全拿不到时的固定兜底号码。
	fallbackNumbers = "03 14 22 31 39"
)

// 号段枚举顺序即并列时的胜出顺序。
var zoneLabels = [3]string{"1-13", "14-26", "27-39"}

// drawFrequency 统计每个号码在给定期数内出现的次数，下标即号码。
func drawFrequency(draws [][]int) [40]int {
	var freq [40]int
	for _, draw := range draws {
		for _, n := range draw {
			if n >= 1 && n <= 39 {
				freq[n]++
			}
		}
	}
	return freq
}

// hotZoneAndTop 在短窗口内找出总出现次数最多的号段，以及出现
// 次数最高的 5 个号码。号码先按 1..39 升序排好再做稳定排序，
// 次数并列时自然落在数字小的一侧；号段并列时按枚举顺序取先者。
func hotZoneAndTop(short [][]int) (string, []int) {
	freq := drawFrequency(short)

	var zoneTotals [3]int
	for n := 1; n <= 39; n++ {
		zoneTotals[(n-1)/13] += freq[n]
	}
	hotZone := 0
	for zone := 1; zone < 3; zone++ {
		if zoneTotals[zone] > zoneTotals[hotZone] {
			hotZone = zone
		}
	}

	numbers := make([]int, 39)
	for i := range numbers {
		numbers[i] = i + 1
	}
	sort.SliceStable(numbers, func(i, j int) bool {
		return freq[numbers[i]] > freq[numbers[j]]
	})

	top := make([]int, pickSize)
	copy(top, numbers[:pickSize])
	return zoneLabels[hotZone], top
}

// weightedPick 加权不放回抽样：长窗口频率占 0.6、短窗口占 0.4，
// 外加 0.01 下限保证零频号码仍可能被抽中。每轮在剩余总权重内取
// 均匀随机数，按号码升序累加权重，累加值达到随机数时选中并从
// 池中移除。换成有放回抽样或改变累加顺序都会改变输出分布，
// 调整前先想清楚。
func weightedPick(freqLong, freqShort [40]int, k int, rng *rand.Rand) []int {
	maxLong, maxShort := 0, 0
	for n := 1; n <= 39; n++ {
		if freqLong[n] > maxLong {
			maxLong = freqLong[n]
		}
		if freqShort[n] > maxShort {
			maxShort = freqShort[n]
		}
	}

	pool := make([]int, 0, 39)
	weights := make([]float64, 0, 39)
	for n := 1; n <= 39; n++ {
		w := 0.01
		if maxLong > 0 {
			w += 0.6 * float64(freqLong[n]) / float64(maxLong)
		}
		if maxShort > 0 {
			w += 0.4 * float64(freqShort[n]) / float64(maxShort)
		}
		pool = append(pool, n)
		weights = append(weights, w)
	}

	picked := make([]int, 0, k)
	for len(picked) < k && len(pool) > 0 {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		r := rng.Float64() * total
		acc := 0.0
		chosen := len(pool) - 1
		for i, w := range weights {
			acc += w
			if acc >= r {
				chosen = i
				break
			}
		}
		picked = append(picked, pool[chosen])
		pool = append(pool[:chosen], pool[chosen+1:]...)
		weights = append(weights[:chosen], weights[chosen+1:]...)
	}

	sort.Ints(picked)
	return picked
}

func formatPickNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, fmt.Sprintf("%02d", n))
	}
	return strings.Join(parts, " ")
}

// DrawFetcher 上游开奖数据源，失败时返回空切片而不是错误。
type DrawFetcher interface {
	FetchRecentDraws(limit int) []*model.Draw
}

// PickService 负责当日建议的缓存与计算。
type PickService struct {
	fetcher     DrawFetcher
	tz          *time.Location
	seedHistory bool
	lookback    int
}

func NewPickService(fetcher DrawFetcher, tz *time.Location, seedHistory bool, lookback int) *PickService {
	return &PickService{
		fetcher:     fetcher,
		tz:          tz,
		seedHistory: seedHistory,
		lookback:    lookback,
	}
}

// GetOrBuild 返回 now 所在日历日的建议。缓存命中原样返回，
// 不重算也不重新抽样；未命中才刷新历史数据并跑一次模型，
// 结果落库后当日所有请求都拿同一份答案。
func (s *PickService) GetOrBuild(now time.Time) (*model.DailyPick, error) {
	today := now.In(s.tz).Format("2006-01-02")

	cached, err := database.GetDailyPick(today)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	// 刷新历史数据都是尽力而为：上游挂了绝不能让用户请求失败。
	if s.fetcher != nil {
		if records := s.fetcher.FetchRecentDraws(s.lookback); len(records) > 0 {
			if err := database.UpsertDraws(records); err != nil {
				logger.Warningf("upsert fetched draws failed: %v", err)
			}
		}
	}
	if s.seedHistory {
		if err := database.SeedDrawsIfEmpty(now, s.tz); err != nil {
			logger.Warningf("seed synthetic draws failed: %v", err)
		}
	}

	draws, err := database.LoadRecentDraws(longWindow)
	if err != nil {
		return nil, err
	}

	pick := s.buildPick(today, draws)
	// 兜底结果同样落库：当日答案必须稳定，哪怕上游中途恢复。
	if err := database.SaveDailyPick(pick); err != nil {
		logger.Warningf("save daily pick for %s failed: %v", today, err)
	}
	return pick, nil
}

func (s *PickService) buildPick(today string, draws [][]int) *model.DailyPick {
	if len(draws) == 0 {
		return &model.DailyPick{
			PickDate:  today,
			Numbers:   fallbackNumbers,
			Note:      locale.I18n("pick.fallbackNote"),
			CreatedAt: time.Now(),
		}
	}

	short := draws[:min(shortWindow, len(draws))]
	freqLong := drawFrequency(draws)
	freqShort := drawFrequency(short)
	hotZone, top := hotZoneAndTop(short)

	// webhook 请求在各自的 goroutine 里跑，cron 预热还会再加一个；
	// *rand.Rand 不是并发安全的，采样源必须每次构建单独建一个。
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	numbers := weightedPick(freqLong, freqShort, pickSize, rng)

	return &model.DailyPick{
		PickDate:  today,
		Numbers:   formatPickNumbers(numbers),
		HotZone:   hotZone,
		TopHot:    formatPickNumbers(top),
		Note:      randomReminder(),
		CreatedAt: time.Now(),
	}
}

// randomReminder 从文案池里挑一句理性提醒。只在建缓存时挑一次，
// 随当日结果落库，所以当天所有人看到同一句。
func randomReminder() string {
	keys := []string{"pick.reminder1", "pick.reminder2", "pick.reminder3"}
	return locale.I18n(keys[common.RandomInt(len(keys))])
}
