package email

import (
	"errors"
	"net"
	"strings"
)

// SMTPDiag clasifica un error de envío.
type SMTPDiag struct {
	Code      string // auth|tls|dial|timeout|rate_limited|invalid_recipient|rejected|network|unknown
	Temporary bool   // si un reintento manual tiene sentido
}

type diagRule struct {
	code      string
	temporary bool
	match     func(s string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// reglas evaluadas en orden; la primera que coincide gana
var diagRules = []diagRule{
	{"timeout", true, containsAny("timeout", "deadline exceeded")},
	{"dial", true, containsAny("connection refused", "connectex:", "no such host", "dial tcp")},
	{"tls", false, func(s string) bool {
		return strings.Contains(s, "x509:") ||
			strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate"))
	}},
	{"auth", false, func(s string) bool {
		return containsAny("5.7.8", "535", "username and password not accepted", "authentication failed")(s) ||
			strings.Contains(s, "auth") && strings.Contains(s, "failed")
	}},
	{"rate_limited", true, containsAny("4.7.0", "rate limit", "try again later", "temporarily unavailable", "451", "421")},
	{"invalid_recipient", false, containsAny("5.1.1", "user unknown", "mailbox not found", "no such user")},
	{"rejected", false, containsAny("5.7.1", "message rejected", "policy", "dmarc", "spf")},
}

// DiagnoseSMTP analiza un error SMTP y retorna su clasificación.
func DiagnoseSMTP(err error) SMTPDiag {
	if err == nil {
		return SMTPDiag{Code: "unknown"}
	}

	var ne net.Error
	isNet := errors.As(err, &ne)
	if isNet && ne.Timeout() {
		return SMTPDiag{Code: "timeout", Temporary: true}
	}

	s := strings.ToLower(err.Error())
	for _, r := range diagRules {
		if r.match(s) {
			return SMTPDiag{Code: r.code, Temporary: r.temporary}
		}
	}

	if isNet {
		return SMTPDiag{Code: "network", Temporary: true}
	}
	return SMTPDiag{Code: "unknown"}
}
