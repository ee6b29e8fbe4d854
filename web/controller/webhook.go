package controller

import (
	"fmt"
	"net/http"

	"peipao-bot/config"
	"peipao-bot/logger"
	"peipao-bot/web/service"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// webhookPayload LINE 平台推送的事件批，一次可能带多条消息。
type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserId string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type WebhookController struct {
	botService *service.BotService

	processedEvents atomic.Int64
	failedEvents    atomic.Int64
}

func NewWebhookController(g *gin.RouterGroup, botService *service.BotService) *WebhookController {
	w := &WebhookController{botService: botService}
	w.initRouter(g)
	return w
}

func (w *WebhookController) initRouter(g *gin.RouterGroup) {
	g.GET("/", w.index)
	g.POST("/webhook", w.webhook)
}

func (w *WebhookController) index(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("%s %s is running. processed=%d failed=%d",
		config.GetName(), config.GetVersion(),
		w.processedEvents.Load(), w.failedEvents.Load()))
}

// webhook 逐条同步处理事件。单条失败只记日志并继续下一条，
// 并且无论内部成败都回 200——LINE 平台收到非 200 会整批重推，
// 那会把已处理的事件再跑一遍。
func (w *WebhookController) webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logger.Warningf("read webhook body failed: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warningf("parse webhook body failed: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}

	for _, event := range payload.Events {
		if event.Type != "message" || event.Message.Type != "text" {
			continue
		}

		traceId := uuid.New().String()[:8]
		result := w.botService.HandleEvent(service.Event{
			Type:       event.Type,
			Text:       event.Message.Text,
			ReplyToken: event.ReplyToken,
			UserId:     event.Source.UserId,
		})

		w.processedEvents.Inc()
		if result.Err != nil {
			w.failedEvents.Inc()
			logger.Warningf("[%s] command %s failed: %v", traceId, result.Command, result.Err)
		} else {
			logger.Debugf("[%s] command %s ok", traceId, result.Command)
		}
	}

	c.String(http.StatusOK, "OK")
}
