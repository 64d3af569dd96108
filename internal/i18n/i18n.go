package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"fpgaterm/internal/logger"
	"os"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFiles embed.FS

// supported languages, index 0 is the fallback
var supported = []language.Tag{
	language.English,
	language.MustParse("zh-CN"),
}

var matcher = language.NewMatcher(supported)

// I18n 国际化管理器
type I18n struct {
	currentLang string
	messages    map[string]string
	fallback    map[string]string
}

// NewI18n 创建国际化管理器. lang "auto" or "" detects the system language.
func NewI18n(lang string) *I18n {
	i18n := &I18n{
		messages: make(map[string]string),
		fallback: make(map[string]string),
	}

	if lang == "" || strings.EqualFold(lang, "auto") {
		lang = detectSystemLanguage()
	}
	i18n.SetLanguage(lang)

	return i18n
}

// SetLanguage 设置语言
func (i *I18n) SetLanguage(lang string) error {
	lang = normalizeLanguageCode(lang)

	if err := i.loadLanguageFile("en", &i.fallback); err != nil {
		logger.Warn(fmt.Sprintf("无法加载回退语言文件: %v", err))
	}

	if err := i.loadLanguageFile(lang, &i.messages); err != nil {
		logger.Warn(fmt.Sprintf("无法加载语言文件 %s: %v", lang, err))
		lang = "en"
		i.messages = make(map[string]string)
		for k, v := range i.fallback {
			i.messages[k] = v
		}
	}

	i.currentLang = lang
	logger.Debug(fmt.Sprintf("语言设置为: %s", lang))
	return nil
}

// T 翻译文本
func (i *I18n) T(key string, args ...interface{}) string {
	if text, exists := i.messages[key]; exists {
		if len(args) > 0 {
			return fmt.Sprintf(text, args...)
		}
		return text
	}

	if text, exists := i.fallback[key]; exists {
		if len(args) > 0 {
			return fmt.Sprintf(text, args...)
		}
		return text
	}

	logger.Warn(fmt.Sprintf("未找到翻译键: %s", key))
	return key
}

// GetCurrentLanguage 获取当前语言
func (i *I18n) GetCurrentLanguage() string {
	return i.currentLang
}

// GetAvailableLanguages 获取可用语言列表
func (i *I18n) GetAvailableLanguages() []string {
	langs := make([]string, len(supported))
	for idx, tag := range supported {
		langs[idx] = tag.String()
	}
	return langs
}

// loadLanguageFile 加载语言文件
func (i *I18n) loadLanguageFile(lang string, target *map[string]string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)

	data, err := localeFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("读取语言文件失败: %w", err)
	}

	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("解析语言文件失败: %w", err)
	}

	*target = messages
	return nil
}

// detectSystemLanguage 检测系统语言
func detectSystemLanguage() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang := os.Getenv(env); lang != "" {
			return normalizeLanguageCode(lang)
		}
	}
	return "en"
}

// normalizeLanguageCode maps locale strings such as "zh_CN.UTF-8" or "en-GB" onto the
// closest supported tag.
func normalizeLanguageCode(lang string) string {
	if idx := strings.Index(lang, "."); idx != -1 {
		lang = lang[:idx]
	}
	if idx := strings.Index(lang, "@"); idx != -1 {
		lang = lang[:idx]
	}
	lang = strings.ReplaceAll(lang, "_", "-")

	tag, err := language.Parse(lang)
	if err != nil {
		return supported[0].String()
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return supported[0].String()
	}
	return supported[index].String()
}

// 全局实例
var globalI18n *I18n

// Init 初始化全局国际化实例
func Init(lang string) {
	globalI18n = NewI18n(lang)
}

// T 全局翻译函数
func T(key string, args ...interface{}) string {
	if globalI18n == nil {
		Init("auto")
	}
	return globalI18n.T(key, args...)
}

// GetCurrentLanguage 获取当前语言
func GetCurrentLanguage() string {
	if globalI18n == nil {
		Init("auto")
	}
	return globalI18n.GetCurrentLanguage()
}
