package job

import (
	"peipao-bot/database"
	"peipao-bot/logger"
	"peipao-bot/web/service"
)

// FetchDrawsJob 每天把上游最新开奖同步进历史库，让当日首个
// 用户请求不必等上游。拉取失败只记日志，下次再试。
type FetchDrawsJob struct {
	fetchService *service.FetchService
	lookback     int
}

func NewFetchDrawsJob(fetchService *service.FetchService, lookback int) *FetchDrawsJob {
	return &FetchDrawsJob{fetchService: fetchService, lookback: lookback}
}

func (j *FetchDrawsJob) Run() {
	records := j.fetchService.FetchRecentDraws(j.lookback)
	if len(records) == 0 {
		logger.Warning("fetch draws job: no records from upstream")
		return
	}
	if err := database.UpsertDraws(records); err != nil {
		logger.Warningf("fetch draws job: upsert failed: %v", err)
		return
	}
	logger.Infof("fetch draws job: upserted %d draws", len(records))
}
