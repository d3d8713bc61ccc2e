package security

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpIssuer names the gateway in authenticator apps.
const totpIssuer = "authgate"

// GenerateTOTPKey creates a new TOTP enrollment key for the admin account.
func GenerateTOTPKey(account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
	})
}

// ValidateTOTP reports whether the code matches the stored secret.
func ValidateTOTP(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
