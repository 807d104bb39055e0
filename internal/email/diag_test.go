package email

import (
	"errors"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "read tcp: i/o deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDiagnoseSMTP(t *testing.T) {
	cases := []struct {
		err  error
		code string
		temp bool
	}{
		{nil, "unknown", false},
		{timeoutErr{}, "timeout", true},
		{errors.New("dial tcp 10.0.0.1:587: connect: connection refused"), "dial", true},
		{errors.New("x509: certificate signed by unknown authority"), "tls", false},
		{errors.New("535 5.7.8 Username and Password not accepted"), "auth", false},
		{errors.New("421 4.7.0 Try again later"), "rate_limited", true},
		{errors.New("550 5.1.1 user unknown"), "invalid_recipient", false},
		{errors.New("550 5.7.1 message rejected by policy"), "rejected", false},
		{errors.New("something odd"), "unknown", false},
	}
	for _, tc := range cases {
		got := DiagnoseSMTP(tc.err)
		if got.Code != tc.code || got.Temporary != tc.temp {
			t.Fatalf("DiagnoseSMTP(%v) = %+v, want code=%s temp=%v", tc.err, got, tc.code, tc.temp)
		}
	}
}
