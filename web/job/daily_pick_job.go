package job

import (
	"time"

	"peipao-bot/logger"
	"peipao-bot/web/service"
)

// DailyPickJob 每天凌晨预先构建当日建议缓存，用户白天的请求
// 都走缓存命中路径。构建本身幂等，失败也会在首个用户请求时重试。
type DailyPickJob struct {
	pickService *service.PickService
}

func NewDailyPickJob(pickService *service.PickService) *DailyPickJob {
	return &DailyPickJob{pickService: pickService}
}

func (j *DailyPickJob) Run() {
	pick, err := j.pickService.GetOrBuild(time.Now())
	if err != nil {
		logger.Warningf("daily pick job: build failed: %v", err)
		return
	}
	logger.Infof("daily pick job: %s ready (%s)", pick.PickDate, pick.Numbers)
}
