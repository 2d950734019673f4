package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, KeyInvalidNicknameFormat, "Nickname may only contain English letters, Hangul and digits.")
	message.SetString(lang, KeyNicknameEmpty, "Nickname is empty.")
	message.SetString(lang, KeyNicknameTooLong, "Nickname must be at most 10 characters long.")
	message.SetString(lang, KeyNicknameTaken, "Nickname is already taken.")
	message.SetString(lang, KeyUsernameTaken, "User is already registered.")
	message.SetString(lang, KeyAuthFailed, "Refresh token is expired or invalid. Please log in again.")
	message.SetString(lang, KeyUnknownUser, "Username does not exist.")
	message.SetString(lang, KeyPermissionDenied, "User does not match.")
	message.SetString(lang, KeyProviderExchange, "Social login failed. Please start over.")
	message.SetString(lang, KeyHandshakeExpired, "Login window expired. Please start over.")
	message.SetString(lang, KeyUnsupportedProvider, "Unsupported login provider.")
	message.SetString(lang, KeyBadRequest, "Bad request.")
	message.SetString(lang, KeyRateLimited, "Too many requests. Please try again later.")
	message.SetString(lang, KeyInternal, "Internal server error.")
	message.SetString(lang, KeyUnauthenticated, "Access token is missing or invalid.")

	message.SetString(lang, KeyNicknameChecked, "Nickname is available.")
	message.SetString(lang, KeyNicknameUpdated, "Nickname updated.")
	message.SetString(lang, KeyTokenReissued, "Access token reissued.")
	message.SetString(lang, KeyWithdrawn, "Account withdrawn.")
	message.SetString(lang, KeyJoined, "Sign-up completed.")
	message.SetString(lang, KeyLoggedIn, "Logged in.")
	message.SetString(lang, KeyHandshakeSignUp, "Sign-up required.")
	message.SetString(lang, KeyHandshakeSignIn, "Registered user. Continue to log in.")
}
