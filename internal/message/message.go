// Package message builds outbound payment-reminder deep links. Nothing is
// sent from the backend; the links open the operator's own messaging app.
package message

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

func ReminderText(name string, owed decimal.Decimal) string {
	return fmt.Sprintf("Dear %s, your outstanding balance at the station is Rs %s. Kindly arrange the payment. Thank you.", name, owed.StringFixed(2))
}

func ReceiptText(name string, txType string, amount decimal.Decimal, balanceAfter decimal.Decimal) string {
	return fmt.Sprintf("Dear %s, a %s transaction of Rs %s has been recorded on your account. Balance after: Rs %s.", name, txType, amount.StringFixed(2), balanceAfter.StringFixed(2))
}

// WhatsAppLink returns a wa.me URL. The number is reduced to digits; wa.me
// rejects plus signs and separators.
func WhatsAppLink(phone string, text string) string {
	digits := digitsOnly(phone)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}

func SMSLink(phone string, text string) string {
	digits := digitsOnly(phone)
	if digits == "" {
		return ""
	}
	return "sms:" + digits + "?body=" + url.QueryEscape(text)
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
