package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

const (
	name    = "peipao-bot"
	version = "1.2.0"

	// 〔中文注释〕: 默认管理口令，仅用于本地调试。生产环境必须通过
	// PB_ADMIN_SECRET 覆盖，main 启动时会对默认值发出警告。
	DefaultAdminSecret = "1234"
)

// 台湾彩券开奖时间使用固定 UTC+8，不依赖宿主机时区数据库。
var tzTaipei = time.FixedZone("CST", 8*60*60)

// fileConfig 对应可选的 peipao.toml 覆盖文件。
type fileConfig struct {
	Listen       string `toml:"listen"`
	Port         int    `toml:"port"`
	DBPath       string `toml:"db_path"`
	AdminSecret  string `toml:"admin_secret"`
	ChannelToken string `toml:"channel_token"`
	DrawAPIURL   string `toml:"draw_api_url"`
	TgBotToken   string `toml:"tg_bot_token"`
	TgBotChatId  string `toml:"tg_bot_chat_id"`
}

var fileCfg fileConfig

// LoadFile 读取可选的 TOML 配置文件。文件不存在不算错误，
// 解析失败才返回 error。环境变量的优先级始终高于文件。
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, &fileCfg)
}

func GetVersion() string {
	return version
}

func GetName() string {
	return name
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PB_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("PB_DEBUG") == "true"
}

func GetTimezone() *time.Location {
	return tzTaipei
}

func GetDBPath() string {
	if path := os.Getenv("PB_DB_PATH"); path != "" {
		return path
	}
	if fileCfg.DBPath != "" {
		return fileCfg.DBPath
	}
	return "members.db"
}

func GetListen() string {
	if listen := os.Getenv("PB_LISTEN"); listen != "" {
		return listen
	}
	if fileCfg.Listen != "" {
		return fileCfg.Listen
	}
	return ""
}

func GetPort() int {
	if port := os.Getenv("PB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	if fileCfg.Port != 0 {
		return fileCfg.Port
	}
	return 8080
}

func GetAdminSecret() string {
	if secret := os.Getenv("PB_ADMIN_SECRET"); secret != "" {
		return secret
	}
	if fileCfg.AdminSecret != "" {
		return fileCfg.AdminSecret
	}
	return DefaultAdminSecret
}

// GetChannelToken LINE Messaging API 的 channel access token。
func GetChannelToken() string {
	if token := os.Getenv("CHANNEL_ACCESS_TOKEN"); token != "" {
		return token
	}
	return fileCfg.ChannelToken
}

func GetDrawAPIURL() string {
	if url := os.Getenv("PB_DRAW_API_URL"); url != "" {
		return url
	}
	if fileCfg.DrawAPIURL != "" {
		return fileCfg.DrawAPIURL
	}
	return "https://api.taiwanlottery.com/TLCAPIWeB/Lottery/LottoResult"
}

// GetDrawLookback 向上游拉取的最大期数。
func GetDrawLookback() int {
	if raw := os.Getenv("PB_DRAW_LOOKBACK"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 240
}

// IsSeedHistoryEnabled 控制空库时是否生成合成历史数据。
// 关闭后若上游不可用，当日建议会走固定兜底号码。
func IsSeedHistoryEnabled() bool {
	return os.Getenv("PB_SEED_HISTORY") != "false"
}

func GetTgBotToken() string {
	if token := os.Getenv("PB_TG_BOT_TOKEN"); token != "" {
		return token
	}
	return fileCfg.TgBotToken
}

// GetTgBotChatIds 管理员 Telegram chat id 列表，逗号分隔。
func GetTgBotChatIds() []int64 {
	raw := os.Getenv("PB_TG_BOT_CHAT_ID")
	if raw == "" {
		raw = fileCfg.TgBotChatId
	}
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func GetCpuThreshold() float64 {
	if raw := os.Getenv("PB_CPU_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return 90
}
