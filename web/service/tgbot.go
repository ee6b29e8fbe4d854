package service

import (
	"context"

	"peipao-bot/config"
	"peipao-bot/logger"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

var (
	bot       *telego.Bot
	adminIds  []int64
	isRunning bool
)

// Tgbot 管理员告警通道：新的开通申请、CPU 告警等推送到
// 配置的 Telegram chat id。未配置 token 时整个功能关闭，
// 机器人其余部分不受影响。
type Tgbot struct{}

func NewTgbot() *Tgbot {
	return &Tgbot{}
}

func (t *Tgbot) Start() error {
	token := config.GetTgBotToken()
	if token == "" {
		logger.Info("Telegram admin notifier disabled (no token)")
		return nil
	}

	adminIds = config.GetTgBotChatIds()
	if len(adminIds) == 0 {
		logger.Warning("Telegram bot token set but no admin chat id, notifier disabled")
		return nil
	}

	var err error
	bot, err = telego.NewBot(token)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot API:", err)
		return err
	}

	isRunning = true
	logger.Info("Telegram admin notifier started")
	return nil
}

func (t *Tgbot) Stop() {
	isRunning = false
	adminIds = nil
	bot = nil
}

func (t *Tgbot) IsRunning() bool {
	return isRunning
}

// SendMessage 把消息推送给所有管理员 chat。
func (t *Tgbot) SendMessage(msg string) error {
	if !isRunning {
		return nil
	}
	t.SendMsgToTgbotAdmins(msg)
	return nil
}

func (t *Tgbot) SendMsgToTgbotAdmins(msg string) {
	for _, adminId := range adminIds {
		_, err := bot.SendMessage(context.Background(), tu.Message(tu.ID(adminId), msg))
		if err != nil {
			logger.Warningf("send message to admin %d failed: %v", adminId, err)
		}
	}
}
