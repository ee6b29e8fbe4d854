package controller

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"peipao-bot/database"
	"peipao-bot/web/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	replies []string
}

func (n *captureNotifier) SendReply(replyToken string, text string) {
	n.replies = append(n.replies, text)
}

func newTestEngine(t *testing.T) (*gin.Engine, *captureNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "test.db")))

	tz := time.FixedZone("CST", 8*60*60)
	notifier := &captureNotifier{}
	pickService := service.NewPickService(nil, tz, true, 240)
	botService := service.NewBotService("s3cret", tz, notifier, pickService)

	engine := gin.New()
	NewWebhookController(engine.Group("/"), botService)
	return engine, notifier
}

func TestWebhookProcessesMessageEvents(t *testing.T) {
	engine, notifier := newTestEngine(t)

	body := `{"events":[
		{"type":"message","replyToken":"r1","source":{"userId":"U1"},"message":{"type":"text","text":"幫助"}},
		{"type":"follow","replyToken":"r2","source":{"userId":"U2"}},
		{"type":"message","replyToken":"r3","source":{"userId":"U3"},"message":{"type":"sticker"}}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	// 只有文本消息被处理，follow 和贴图事件无声跳过
	assert.Len(t, notifier.replies, 1)
}

func TestWebhookAlwaysAnswersOK(t *testing.T) {
	engine, _ := newTestEngine(t)

	// 坏 payload 也回 200，避免平台整批重推
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestIndexReportsRunning(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "is running")
}
