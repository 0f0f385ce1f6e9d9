package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience é o público dos tokens emitidos pelo painel.
const Audience = "painel"

// Claims carrega nome e papel do usuário autenticado.
type Claims struct {
	Name string `json:"nome"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal devolve o usuário representado pelo token.
func (c *Claims) Principal() Principal {
	return Principal{Name: c.Name, Role: c.Role}
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// TTL informa a validade dos tokens emitidos.
func (m *JWTManager) TTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken cria um JWT HS256 para o usuário. Retorna token e jti.
func (m *JWTManager) GenerateAccessToken(p Principal) (string, string, error) {
	now := m.now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Name: p.Name,
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Name,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate verifica assinatura, público e expiração.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Name == "" {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}
