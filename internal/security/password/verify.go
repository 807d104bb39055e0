package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verify compara plain contra un hash almacenado. Acepta argon2id (formato
// propio) y bcrypt ($2a$/$2b$/$2y$), que es el formato de las cuentas
// importadas del sistema anterior.
func Verify(plain, stored string) bool {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return verifyArgon2id(plain, stored)
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

// NeedsRehash indica si el hash no es argon2id con los parámetros dados.
func NeedsRehash(p Params, stored string) bool {
	if !strings.HasPrefix(stored, "$argon2id$") {
		return true
	}
	want := fmt.Sprintf("$m=%d,t=%d,p=%d$", p.Memory, p.Time, p.Parallelism)
	return !strings.Contains(stored, want)
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
