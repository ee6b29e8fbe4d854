package service

import (
	"errors"
	"strings"
	"time"

	"peipao-bot/database"
	"peipao-bot/logger"
	"peipao-bot/util/common"
	"peipao-bot/web/global"
	"peipao-bot/web/locale"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const lineReplyURL = "https://api.line.me/v2/bot/message/reply"

const pendingListLimit = 10

// Event webhook 解包后的单条消息事件。
type Event struct {
	Type       string
	Text       string
	ReplyToken string
	UserId     string
}

// EventResult 单条事件的处理结果。处理循环据此记日志并继续
// 下一条，一条坏事件不影响整批。
type EventResult struct {
	Command string
	Err     error
}

// Notifier 出站回复通道。只管送出，不保证送达，失败只记日志。
type Notifier interface {
	SendReply(replyToken string, text string)
}

// LineNotifier 通过 LINE Messaging API 的 reply 端点回复消息。
type LineNotifier struct {
	channelToken string
	client       *fasthttp.Client
}

func NewLineNotifier(channelToken string) *LineNotifier {
	return &LineNotifier{
		channelToken: channelToken,
		client:       &fasthttp.Client{},
	}
}

type lineReplyPayload struct {
	ReplyToken string            `json:"replyToken"`
	Messages   []lineTextMessage `json:"messages"`
}

type lineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (n *LineNotifier) SendReply(replyToken string, text string) {
	payload := lineReplyPayload{
		ReplyToken: replyToken,
		Messages:   []lineTextMessage{{Type: "text", Text: text}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("marshal line reply failed: %v", err)
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(lineReplyURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+n.channelToken)
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, fetchTimeout); err != nil {
		logger.Warningf("line reply failed: %v", err)
		return
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		logger.Warningf("line reply: api returned %d: %s", resp.StatusCode(), resp.Body())
	}
}

// BotService 命令路由：解析指令、做会员门禁和管理员鉴权，
// 再调各个 store / PickService，最后把文案交给 notifier。
type BotService struct {
	adminSecret string
	tz          *time.Location
	notifier    Notifier
	pickService *PickService
}

func NewBotService(adminSecret string, tz *time.Location, notifier Notifier, pickService *PickService) *BotService {
	return &BotService{
		adminSecret: adminSecret,
		tz:          tz,
		notifier:    notifier,
		pickService: pickService,
	}
}

// HandleEvent 同步处理一条消息事件。非 message 事件由上层过滤，
// 这里只负责文本指令。
func (s *BotService) HandleEvent(event Event) EventResult {
	fields := strings.Fields(strings.TrimSpace(event.Text))
	if len(fields) == 0 {
		s.reply(event, locale.I18n("bot.usage"))
		return EventResult{Command: "empty"}
	}

	switch fields[0] {
	case "綁定":
		return s.handleSubmit(event, fields)
	case "待審":
		return s.handleListPending(event, fields)
	case "開通":
		return s.handleApprove(event, fields)
	case "設到期":
		return s.handleSetExpiry(event, fields)
	case "查詢":
		return s.handleQueryExpiry(event)
	case "今日陪跑":
		return s.handleDailyPick(event)
	case "幫助":
		s.reply(event, locale.I18n("bot.usage"))
		return EventResult{Command: "help"}
	default:
		s.reply(event, locale.I18n("bot.usage"))
		return EventResult{Command: "unknown"}
	}
}

// checkAdmin 管理员口令按精确字符串比较。口令错误只回一句
// 统一的拒绝文案，不透露是哪个字段有问题。
func (s *BotService) checkAdmin(secret string) bool {
	return secret == s.adminSecret
}

func (s *BotService) reply(event Event, text string) {
	s.notifier.SendReply(event.ReplyToken, text)
}

func (s *BotService) handleSubmit(event Event, fields []string) EventResult {
	result := EventResult{Command: "submit"}
	if len(fields) != 2 {
		s.reply(event, locale.I18n("bot.usageSubmit"))
		return result
	}

	accountRef := fields[1]
	if err := database.SubmitPendingActivation(accountRef, event.UserId); err != nil {
		result.Err = err
		return result
	}
	s.reply(event, locale.I18n("bot.submitOk", "Ref=="+accountRef))

	if tgBot := global.GetTgBot(); tgBot != nil && tgBot.IsRunning() {
		msg := locale.I18n("tgbot.pendingAlert", "Ref=="+accountRef, "User=="+event.UserId)
		if err := tgBot.SendMessage(msg); err != nil {
			logger.Warningf("send pending alert failed: %v", err)
		}
	}
	return result
}

func (s *BotService) handleListPending(event Event, fields []string) EventResult {
	result := EventResult{Command: "list-pending"}
	if len(fields) != 2 {
		s.reply(event, locale.I18n("bot.usagePending"))
		return result
	}
	if !s.checkAdmin(fields[1]) {
		s.reply(event, locale.I18n("bot.wrongSecret"))
		return result
	}

	records, err := database.ListRecentPendingActivations(pendingListLimit)
	if err != nil {
		result.Err = err
		return result
	}
	if len(records) == 0 {
		s.reply(event, locale.I18n("bot.pendingEmpty"))
		return result
	}

	var sb strings.Builder
	sb.WriteString(locale.I18n("bot.pendingHeader"))
	for _, record := range records {
		sb.WriteString("\n")
		sb.WriteString(record.CreatedAt.In(s.tz).Format("01/02 15:04"))
		sb.WriteString("　")
		sb.WriteString(record.AccountRef)
		sb.WriteString("　")
		sb.WriteString(record.UserId)
	}
	s.reply(event, sb.String())
	return result
}

func (s *BotService) handleApprove(event Event, fields []string) EventResult {
	result := EventResult{Command: "approve"}
	if len(fields) != 3 {
		s.reply(event, locale.I18n("bot.usageApprove"))
		return result
	}
	if !s.checkAdmin(fields[1]) {
		s.reply(event, locale.I18n("bot.wrongSecret"))
		return result
	}

	accountRef := fields[2]
	userId, err := database.ApprovePendingActivation(accountRef)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.reply(event, locale.I18n("bot.approveNotFound", "Ref=="+accountRef))
			return result
		}
		result.Err = common.NewErrorf("approve %s: %v", accountRef, err)
		return result
	}

	expiry, err := database.ExtendMembership(userId, 30, s.tz)
	if err != nil {
		result.Err = common.NewErrorf("extend membership for %s: %v", userId, err)
		return result
	}
	s.reply(event, locale.I18n("bot.approveOk",
		"User=="+userId,
		"Expiry=="+expiry.Format("2006-01-02"),
	))
	return result
}

func (s *BotService) handleSetExpiry(event Event, fields []string) EventResult {
	result := EventResult{Command: "set-expiry"}
	if len(fields) != 4 {
		s.reply(event, locale.I18n("bot.usageSetExpiry"))
		return result
	}
	if !s.checkAdmin(fields[1]) {
		s.reply(event, locale.I18n("bot.wrongSecret"))
		return result
	}

	userId, dateStr := fields[2], fields[3]
	expiry, err := database.SetMembershipExpiry(userId, dateStr, s.tz)
	if err != nil {
		if errors.Is(err, database.ErrInvalidDate) {
			s.reply(event, locale.I18n("bot.badDate"))
			return result
		}
		result.Err = err
		return result
	}
	s.reply(event, locale.I18n("bot.setExpiryOk",
		"User=="+userId,
		"Expiry=="+expiry.Format("2006-01-02"),
	))
	return result
}

func (s *BotService) handleQueryExpiry(event Event) EventResult {
	result := EventResult{Command: "query-expiry"}
	expiry, found, err := database.GetMembershipExpiry(event.UserId)
	if err != nil {
		result.Err = err
		return result
	}
	if !found {
		s.reply(event, locale.I18n("bot.notActivated"))
		return result
	}
	s.reply(event, locale.I18n("bot.expiryReply",
		"Expiry=="+expiry.In(s.tz).Format("2006-01-02 15:04:05"),
	))
	return result
}

func (s *BotService) handleDailyPick(event Event) EventResult {
	result := EventResult{Command: "daily-pick"}

	active, err := database.IsMembershipActive(event.UserId, s.tz)
	if err != nil {
		result.Err = err
		return result
	}
	if !active {
		// 非会员不触发缓存构建，门禁在前。
		s.reply(event, locale.I18n("bot.needMembership"))
		return result
	}

	pick, err := s.pickService.GetOrBuild(time.Now())
	if err != nil {
		result.Err = err
		return result
	}

	dateStr := time.Now().In(s.tz).Format("01/02")
	var msg string
	if pick.HotZone == "" {
		msg = locale.I18n("bot.dailyFallback",
			"Date=="+dateStr,
			"Note=="+pick.Note,
			"Numbers=="+pick.Numbers,
		)
	} else {
		msg = locale.I18n("bot.daily",
			"Date=="+dateStr,
			"HotZone=="+pick.HotZone,
			"TopHot=="+pick.TopHot,
			"Note=="+pick.Note,
			"Numbers=="+pick.Numbers,
		)
	}
	s.reply(event, msg)
	return result
}
