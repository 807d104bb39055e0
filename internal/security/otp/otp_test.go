package otp

import (
	"strconv"
	"testing"
)

func TestGenerate_Range(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate err: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("invalid code %q", code)
		}
		n, _ := strconv.Atoi(code)
		if n < Min || n > Max {
			t.Fatalf("code out of range: %d", n)
		}
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"123456":  true,
		"999999":  true,
		"012345":  false,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}
