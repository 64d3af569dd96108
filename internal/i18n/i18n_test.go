package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguageCode(t *testing.T) {
	tests := map[string]string{
		"zh_CN.UTF-8":    "zh-CN",
		"zh-CN":          "zh-CN",
		"en_US.UTF-8":    "en",
		"en-GB":          "en",
		"de_DE@euro":     "en",
		"C":              "en",
		"":               "en",
		"not a language": "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeLanguageCode(in), "input %q", in)
	}
}

func TestTranslateWithFallback(t *testing.T) {
	zh := NewI18n("zh_CN.UTF-8")
	assert.Equal(t, "zh-CN", zh.GetCurrentLanguage())
	assert.Equal(t, "连接", zh.T("connection.connect"))

	en := NewI18n("en")
	assert.Equal(t, "Connect", en.T("connection.connect"))
	assert.Equal(t, "missing.key", en.T("missing.key"))
}

func TestDetectFromEnvironment(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")
	assert.Equal(t, "zh-CN", NewI18n("auto").GetCurrentLanguage())
}

func TestLocalesShareKeys(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := localeFiles.ReadFile("locales/" + name + ".json")
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}
	en, zh := load("en"), load("zh-CN")
	for key := range en {
		assert.Contains(t, zh, key)
	}
	assert.Len(t, zh, len(en))
	assert.ElementsMatch(t, []string{"en", "zh-CN"}, NewI18n("en").GetAvailableLanguages())
}
