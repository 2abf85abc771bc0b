package domain

import "fmt"

// PaymentMethod is the closed set of payment choices offered at checkout.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentNetBanking     PaymentMethod = "netbanking"
)

// Values accepted by the order endpoint.
const (
	ServerPaymentCOD    = "cod"
	ServerPaymentOnline = "online"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCashOnDelivery, PaymentCard, PaymentUPI, PaymentNetBanking:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// ServerValue maps the four user-facing choices to the two values the order endpoint accepts.
func (m PaymentMethod) ServerValue() string {
	if m == PaymentCashOnDelivery {
		return ServerPaymentCOD
	}
	return ServerPaymentOnline
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentUPI:
		return "UPI"
	case PaymentNetBanking:
		return "Net Banking"
	default:
		return string(m)
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}
