package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestI18nRendersTemplateParams(t *testing.T) {
	require.NoError(t, InitLocalizer())

	msg := I18n("bot.approveNotFound", "Ref==ABC123")
	assert.Contains(t, msg, "ABC123")

	msg = I18n("bot.daily",
		"Date==01/02",
		"HotZone==1-13",
		"TopHot==01 02 03 04 05",
		"Note==x",
		"Numbers==03 14 22 31 39",
	)
	assert.Contains(t, msg, "01/02")
	assert.Contains(t, msg, "近30期熱區：1-13")
	assert.Contains(t, msg, "03 14 22 31 39")
}

func TestI18nPlainMessages(t *testing.T) {
	require.NoError(t, InitLocalizer())

	// 无参数文案不能把 key 原样吐回去
	for _, key := range []string{"bot.usage", "bot.wrongSecret", "bot.needMembership", "pick.fallbackNote"} {
		msg := I18n(key)
		assert.NotEqual(t, key, msg)
		assert.NotEmpty(t, msg)
	}
}
