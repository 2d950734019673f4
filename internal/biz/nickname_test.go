package biz

import (
	"testing"

	"keum-identity/internal/biz/model"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		want     string
		reason   string
		wantErr  bool
	}{
		{name: "ascii letters", nickname: "abc", want: "abc"},
		{name: "mixed case and digits", nickname: "ABc123", want: "ABc123"},
		{name: "hangul", nickname: "금붕어", want: "금붕어"},
		{name: "hangul mixed", nickname: "a1가", want: "a1가"},
		{name: "single char", nickname: "z", want: "z"},
		{name: "ten runes", nickname: "가나다라마바사아자차", want: "가나다라마바사아자차"},
		{name: "empty", nickname: "", reason: "NICKNAME_EMPTY", wantErr: true},
		{name: "blank", nickname: "   ", reason: "NICKNAME_EMPTY", wantErr: true},
		{name: "eleven runes", nickname: "abcdefghijk", reason: "NICKNAME_TOO_LONG", wantErr: true},
		{name: "space inside", nickname: "ab cd", wantErr: true},
		{name: "punctuation", nickname: "hello!", wantErr: true},
		{name: "underscore", nickname: "a_b", wantErr: true},
		{name: "hangul jamo", nickname: "ㄱㄴ", wantErr: true},
		{name: "fullwidth latin", nickname: "ｆｕｌｌ", wantErr: true},
		{name: "emoji", nickname: "hi😀", wantErr: true},
		{name: "cjk ideograph", nickname: "金", wantErr: true},
		{name: "decomposed hangul", nickname: norm.NFD.String("한글"), wantErr: true},
		{name: "decomposed hangul mixed", nickname: "ab" + norm.NFD.String("가"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNickname(tt.nickname)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidNicknameFormat)
				if tt.reason != "" {
					e, ok := model.AsError(err)
					assert.True(t, ok)
					assert.Equal(t, tt.reason, e.Reason)
				}
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 合法昵称原样返回
func TestValidateNickname_EchoesValidInput(t *testing.T) {
	alphabet := []rune("aZ09가힣")
	for _, a := range alphabet {
		for _, b := range alphabet {
			nickname := string([]rune{a, b})
			got, err := ValidateNickname(nickname)
			assert.NoError(t, err, nickname)
			assert.Equal(t, nickname, got)
		}
	}
}
