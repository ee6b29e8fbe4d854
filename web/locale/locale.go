package locale

import (
	"embed"
	"strings"

	"peipao-bot/logger"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*
var translationFS embed.FS

var localizer *i18n.Localizer

// InitLocalizer 加载内嵌的 zh_TW 文案目录。机器人面向台湾用户，
// 目前只有一种语言，但所有用户可见文案都走这里，不散落在代码里。
func InitLocalizer() error {
	bundle := i18n.NewBundle(language.TraditionalChinese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	if _, err := bundle.LoadMessageFileFS(translationFS, "translation/zh_TW.toml"); err != nil {
		return err
	}
	localizer = i18n.NewLocalizer(bundle, "zh_TW")
	return nil
}

// I18n 取出文案，参数按 "Name==Value" 传入模板。
func I18n(key string, params ...string) string {
	if localizer == nil {
		if err := InitLocalizer(); err != nil {
			logger.Errorf("init localizer failed: %v", err)
			return key
		}
	}

	templateData := make(map[string]any, len(params))
	for _, param := range params {
		pair := strings.SplitN(param, "==", 2)
		if len(pair) == 2 {
			templateData[pair[0]] = pair[1]
		}
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		logger.Errorf("localize %s failed: %v", key, err)
		return key
	}
	return msg
}
