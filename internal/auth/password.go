package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id (inclui os parâmetros dentro do próprio hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// IsHash indica se o valor gravado na coluna Senha já é um hash Argon2id.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$argon2id$")
}

// Verify compara a senha com o valor gravado. Senhas antigas em texto puro
// são aceitas; legacy=true sinaliza que o valor deve ser convertido em hash.
func Verify(password, stored string) (ok bool, legacy bool, err error) {
	if stored == "" {
		return false, false, nil
	}
	if !IsHash(stored) {
		match := subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
		return match, match, nil
	}
	ok, err = argon2id.ComparePasswordAndHash(password, stored)
	return ok, false, err
}
