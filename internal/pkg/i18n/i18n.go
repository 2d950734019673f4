package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.Korean,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Default 默认语言
func Default() language.Tag {
	return language.Korean
}

// Printer 返回指定语言的 message.Printer
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveAcceptLanguage 根据 Accept-Language 头选择最匹配的语言
func ResolveAcceptLanguage(header string) language.Tag {
	header = strings.TrimSpace(header)
	if header == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return supportedTags[idx]
}

// Sprint 按语言翻译 key，未注册的 key 原样返回
func Sprint(tag language.Tag, key string) string {
	return Printer(tag).Sprintf(key)
}
