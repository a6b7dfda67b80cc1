// Package common contains shared constants and sentinel errors used across
// accountkeeper components.
package common

const (
	// AccessTokenCookieName is the cookie carrying the short-lived access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the cookie carrying the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// EnvironmentProduction enables Secure cookies.
	EnvironmentProduction = "production"
)
