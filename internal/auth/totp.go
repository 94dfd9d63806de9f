package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "Hostel Mess"

// GenerateTOTP creates a new authenticator secret for an admin and returns
// the secret with its otpauth:// URL for QR enrolment.
func GenerateTOTP(account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP checks a 6-digit code against the secret, allowing one
// period of clock skew.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
