package biz

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"keum-identity/internal/biz/model"
)

const maxNicknameLength = 10

// 英文字母、数字、韩文音节（U+AC00–U+D7A3）
var nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9가-힣]+$`)

// ValidateNickname 按原始输入校验昵称，合法时原样返回。
// 分解形式的韩文（字母 U+1100–U+11FF）不做合成，直接视为非法字符。
func ValidateNickname(nickname string) (string, error) {
	if strings.TrimSpace(nickname) == "" {
		return "", model.ErrInvalidNicknameFormat.WithReason("NICKNAME_EMPTY")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return "", model.ErrInvalidNicknameFormat.WithReason("NICKNAME_TOO_LONG")
	}
	if !nicknamePattern.MatchString(nickname) {
		return "", model.ErrInvalidNicknameFormat
	}
	return nickname, nil
}
