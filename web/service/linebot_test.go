package service

import (
	"testing"
	"time"

	"peipao-bot/database"
	"peipao-bot/web/locale"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	replies []string
}

func (f *fakeNotifier) SendReply(replyToken string, text string) {
	f.replies = append(f.replies, text)
}

func (f *fakeNotifier) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.replies)
	return f.replies[len(f.replies)-1]
}

func newTestBot(t *testing.T) (*BotService, *fakeNotifier) {
	t.Helper()
	setupTestDB(t)
	notifier := &fakeNotifier{}
	pickService := NewPickService(nil, testTZ, true, 240)
	return NewBotService("s3cret", testTZ, notifier, pickService), notifier
}

func textEvent(userId string, text string) Event {
	return Event{Type: "message", Text: text, ReplyToken: "rt-" + userId, UserId: userId}
}

func TestUnknownCommandRepliesUsage(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("U1", "亂打一通"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.usage"), notifier.last(t))

	result = bot.HandleEvent(textEvent("U1", "   "))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.usage"), notifier.last(t))
}

func TestSubmitAndApproveFlow(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("U1", "綁定 ABC123"))
	require.NoError(t, result.Err)
	assert.Contains(t, notifier.last(t), "ABC123")

	result = bot.HandleEvent(textEvent("ADMIN", "開通 s3cret ABC123"))
	require.NoError(t, result.Err)
	assert.Contains(t, notifier.last(t), "U1")

	// 审批后 U1 立即生效，效期约为今天 +30 天的 23:59:59
	active, err := database.IsMembershipActive("U1", testTZ)
	require.NoError(t, err)
	assert.True(t, active)

	expiry, found, err := database.GetMembershipExpiry("U1")
	require.NoError(t, err)
	require.True(t, found)
	wantDay := time.Now().In(testTZ).AddDate(0, 0, 30)
	assert.Equal(t, wantDay.Day(), expiry.In(testTZ).Day())
	assert.Equal(t, 23, expiry.In(testTZ).Hour())

	// 同一笔申请不能审批两次
	result = bot.HandleEvent(textEvent("ADMIN", "開通 s3cret ABC123"))
	require.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.approveNotFound", "Ref==ABC123"), notifier.last(t))
}

func TestWrongSecretNeverMutates(t *testing.T) {
	bot, notifier := newTestBot(t)

	require.NoError(t, bot.HandleEvent(textEvent("U1", "綁定 ABC123")).Err)

	// 字段齐全但口令错误：统一拒绝文案，不动任何 store
	result := bot.HandleEvent(textEvent("ADMIN", "開通 wrong ABC123"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.wrongSecret"), notifier.last(t))

	result = bot.HandleEvent(textEvent("ADMIN", "設到期 wrong U1 2026-12-31"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.wrongSecret"), notifier.last(t))

	result = bot.HandleEvent(textEvent("ADMIN", "待審 wrong"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.wrongSecret"), notifier.last(t))

	// 待审记录还在，会员没被开通
	records, err := database.ListRecentPendingActivations(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ABC123", records[0].AccountRef)

	_, found, err := database.GetMembershipExpiry("U1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMalformedAdminCommandRepliesUsage(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("ADMIN", "開通 s3cret"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.usageApprove"), notifier.last(t))

	result = bot.HandleEvent(textEvent("ADMIN", "設到期 s3cret U1"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.usageSetExpiry"), notifier.last(t))

	result = bot.HandleEvent(textEvent("U1", "綁定"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.usageSubmit"), notifier.last(t))
}

func TestSetExpiryBadDate(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("ADMIN", "設到期 s3cret U1 2026/12/31"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.badDate"), notifier.last(t))

	_, found, err := database.GetMembershipExpiry("U1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQueryExpiry(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("U1", "查詢"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.notActivated"), notifier.last(t))

	_, err := database.ExtendMembership("U1", 30, testTZ)
	require.NoError(t, err)

	result = bot.HandleEvent(textEvent("U1", "查詢"))
	assert.NoError(t, result.Err)
	assert.Contains(t, notifier.last(t), "23:59:59")
}

func TestDailyPickGatedOnMembership(t *testing.T) {
	bot, notifier := newTestBot(t)

	today := time.Now().In(testTZ).Format("2006-01-02")

	result := bot.HandleEvent(textEvent("U1", "今日陪跑"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.needMembership"), notifier.last(t))

	// 非会员的请求不触发缓存构建
	cached, err := database.GetDailyPick(today)
	require.NoError(t, err)
	assert.Nil(t, cached)

	_, err = database.ExtendMembership("U1", 30, testTZ)
	require.NoError(t, err)

	result = bot.HandleEvent(textEvent("U1", "今日陪跑"))
	require.NoError(t, result.Err)
	first := notifier.last(t)
	assert.Contains(t, first, "今日陪跑建議")

	// 当日重复请求拿到逐字节相同的回复
	result = bot.HandleEvent(textEvent("U1", "今日陪跑"))
	require.NoError(t, result.Err)
	assert.Equal(t, first, notifier.last(t))
}

func TestListPendingForAdmin(t *testing.T) {
	bot, notifier := newTestBot(t)

	result := bot.HandleEvent(textEvent("ADMIN", "待審 s3cret"))
	assert.NoError(t, result.Err)
	assert.Equal(t, locale.I18n("bot.pendingEmpty"), notifier.last(t))

	require.NoError(t, bot.HandleEvent(textEvent("U1", "綁定 ABC123")).Err)
	require.NoError(t, bot.HandleEvent(textEvent("U2", "綁定 XYZ789")).Err)

	result = bot.HandleEvent(textEvent("ADMIN", "待審 s3cret"))
	assert.NoError(t, result.Err)
	reply := notifier.last(t)
	assert.Contains(t, reply, "ABC123")
	assert.Contains(t, reply, "XYZ789")
	assert.Contains(t, reply, "U1")
}
