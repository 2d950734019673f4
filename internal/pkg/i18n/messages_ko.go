package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Korean

	message.SetString(lang, KeyInvalidNicknameFormat, "닉네임은 영어, 한글, 숫자만 가능합니다.")
	message.SetString(lang, KeyNicknameEmpty, "닉네임이 비어있습니다.")
	message.SetString(lang, KeyNicknameTooLong, "닉네임의 길이는 11자 이내여야 합니다.")
	message.SetString(lang, KeyNicknameTaken, "이미 존재하는 닉네임입니다.")
	message.SetString(lang, KeyUsernameTaken, "이미 가입된 사용자입니다.")
	message.SetString(lang, KeyAuthFailed, "만료되거나 존재하지 않는 RefreshToken 입니다. 다시 로그인을 시도해주세요")
	message.SetString(lang, KeyUnknownUser, "존재하지 않는 username 입니다.")
	message.SetString(lang, KeyPermissionDenied, "사용자가 정확하지 않습니다.")
	message.SetString(lang, KeyProviderExchange, "소셜 로그인에 실패했습니다. 처음부터 다시 시도해주세요.")
	message.SetString(lang, KeyHandshakeExpired, "로그인 시간이 만료되었습니다. 처음부터 다시 시도해주세요.")
	message.SetString(lang, KeyUnsupportedProvider, "지원하지 않는 로그인 방식입니다.")
	message.SetString(lang, KeyBadRequest, "잘못된 요청입니다.")
	message.SetString(lang, KeyRateLimited, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")
	message.SetString(lang, KeyInternal, "서버 오류가 발생했습니다.")
	message.SetString(lang, KeyUnauthenticated, "유효하지 않은 AccessToken 입니다.")

	message.SetString(lang, KeyNicknameChecked, "닉네임 중복 확인 성공")
	message.SetString(lang, KeyNicknameUpdated, "닉네임 업데이트 성공")
	message.SetString(lang, KeyTokenReissued, "AccessToken 재발급이 완료되었습니다.")
	message.SetString(lang, KeyWithdrawn, "회원탈퇴가 완료되었습니다.")
	message.SetString(lang, KeyJoined, "회원가입이 완료되었습니다.")
	message.SetString(lang, KeyLoggedIn, "로그인이 완료되었습니다.")
	message.SetString(lang, KeyHandshakeSignUp, "회원가입이 필요합니다.")
	message.SetString(lang, KeyHandshakeSignIn, "가입된 사용자입니다. 로그인을 진행해주세요.")
}
