// Package otp genera los códigos numéricos de un solo uso enviados por email.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	// Min y Max acotan el código: siempre 6 dígitos, sin cero a la izquierda.
	Min = 100000
	Max = 999999
)

var span = big.NewInt(Max - Min + 1)

// Generate devuelve un código uniforme en [Min, Max] usando crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+Min, 10), nil
}

// Generator abstrae la generación para poder fijar el código en tests.
type Generator func() (string, error)

// Valid indica si s tiene la forma de un código emitido (6 dígitos).
func Valid(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s[0] != '0'
}
