package convert

import (
	"strings"

	"golang.org/x/text/language"
)

// User visible export messages. Named placeholders are substituted by Msg.
var i18nMessages = map[string]map[string]string{
	"en": {
		"converting":       "Converting to Word document...",
		"exported":         "Word document exported",
		"success":          "Successfully exported to {filename}",
		"error_no_content": "No content found to export!",
		"error_export":     "Error exporting Word document: {error}",
		"export_failed":    "Export failed: {error}",
		"figure_prefix":    "Figure",
		"references":       "References",
	},
	"zh": {
		"converting":       "正在转换为 Word 文档...",
		"exported":         "Word 文档导出完成",
		"success":          "成功导出至 {filename}",
		"error_no_content": "没有找到可导出的内容！",
		"error_export":     "导出 Word 文档时出错: {error}",
		"export_failed":    "导出失败: {error}",
		"figure_prefix":    "图",
		"references":       "参考文献",
	},
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Chinese,
})

// langKey maps a configured ui language to a message table key.
func langKey(ui string) string {
	ui = strings.TrimSpace(ui)
	if ui == "" {
		return "en"
	}
	tag, _ := language.MatchStrings(langMatcher, ui)
	if base, _ := tag.Base(); base.String() == "zh" {
		return "zh"
	}
	return "en"
}

// Msg returns a localized message with {name} placeholders substituted.
// Unknown keys fall back to english, then to the key itself.
func Msg(lang, key string, args map[string]string) string {
	table, ok := i18nMessages[lang]
	if !ok {
		table = i18nMessages["en"]
	}
	msg, ok := table[key]
	if !ok {
		if msg, ok = i18nMessages["en"][key]; !ok {
			msg = key
		}
	}
	for name, value := range args {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}
