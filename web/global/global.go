package global

// AdminNotifier 管理员告警通道的抽象。job 和 service 通过这里
// 拿到 Telegram bot 引用，避免与具体实现产生循环依赖。
type AdminNotifier interface {
	SendMessage(msg string) error
	IsRunning() bool
}

var tgBot AdminNotifier

// SetTgBot 由 web server 在启动时注入。
func SetTgBot(t AdminNotifier) {
	tgBot = t
}

func GetTgBot() AdminNotifier {
	return tgBot
}
