package job

import (
	"strconv"
	"time"

	"peipao-bot/config"
	"peipao-bot/web/global"
	"peipao-bot/web/locale"

	"github.com/shirou/gopsutil/v4/cpu"
)

// 连续超阈值告警实现
type CheckCpuJob struct {
	overThresholdCount int       // 连续超阈值计数器
	lastNotifyTime     time.Time // 最近一次告警时间
}

func NewCheckCpuJob() *CheckCpuJob {
	return &CheckCpuJob{}
}

// Run 是 Job 接口方法
func (j *CheckCpuJob) Run() {
	threshold := config.GetCpuThreshold()
	notifyInterval := 10 * time.Minute // 两次告警最小间隔

	percent, err := cpu.Percent(10*time.Second, false) // 10秒采样
	if err != nil || len(percent) == 0 {
		return
	}

	now := time.Now()
	if percent[0] > threshold {
		j.overThresholdCount++
	} else {
		j.overThresholdCount = 0
	}

	// 连续3次超阈值，且距离上次告警超过告警间隔
	if j.overThresholdCount >= 3 && now.Sub(j.lastNotifyTime) > notifyInterval {
		tgBot := global.GetTgBot()
		if tgBot == nil || !tgBot.IsRunning() {
			return
		}
		msg := locale.I18n("tgbot.cpuAlert",
			"Percent=="+strconv.FormatFloat(percent[0], 'f', 2, 64),
			"Threshold=="+strconv.FormatFloat(threshold, 'f', 0, 64),
		)
		tgBot.SendMessage(msg)
		j.lastNotifyTime = now
		j.overThresholdCount = 0
	}
}
