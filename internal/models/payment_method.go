package models

import "errors"

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "Online"
	PaymentCash   PaymentMethod = "Cash"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// ParsePaymentMethod only accepts the exact values Online and Cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentOnline, PaymentCash:
		return PaymentMethod(s), nil
	}
	return "", ErrInvalidPaymentMethod
}
