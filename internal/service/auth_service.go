package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica perfil inativo.
	ErrAccountDisabled = errors.New("usuário inválido ou inativo")
	// ErrInvalidRole indica papel desconhecido gravado na planilha.
	ErrInvalidRole = errors.New("role inválida na planilha")
	// ErrAdminRoleRequired impede que o login "admin" entre sem papel admin.
	ErrAdminRoleRequired = errors.New("login admin requer role=admin")
	// ErrFirstAccess indica que o perfil ainda não definiu senha.
	ErrFirstAccess = errors.New("primeiro acesso: defina uma senha")
	// ErrPasswordAlreadySet bloqueia o fluxo de primeiro acesso repetido.
	ErrPasswordAlreadySet = errors.New("senha já definida")
)

type profileStore interface {
	FindByName(ctx context.Context, name string) (profile.Profile, error)
	SetPassword(ctx context.Context, name, hash string) error
}

// AuthService concentra login, primeiro acesso e logout.
type AuthService struct {
	profiles    profileStore
	jwt         *auth.JWTManager
	revocations auth.RevocationList
}

// NewAuthService cria novo serviço.
func NewAuthService(profiles profileStore, jwtMgr *auth.JWTManager, revocations auth.RevocationList) *AuthService {
	if revocations == nil {
		revocations = auth.NoRevocations{}
	}
	return &AuthService{profiles: profiles, jwt: jwtMgr, revocations: revocations}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Revocations expõe a lista de tokens revogados.
func (s *AuthService) Revocations() auth.RevocationList {
	return s.revocations
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	Token     string         `json:"token"`
	User      auth.Principal `json:"user"`
	ExpiresAt time.Time      `json:"expiraEm"`
}

func (s *AuthService) lookup(ctx context.Context, name string) (profile.Profile, error) {
	name = util.NormalizeText(name)
	if name == "" {
		return profile.Profile{}, apperr.Validation("Nome é obrigatório")
	}

	p, err := s.profiles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Str("nome", name).Msg("login: usuário não encontrado")
			return profile.Profile{}, ErrInvalidCredentials
		}
		return profile.Profile{}, err
	}
	if !p.Active {
		return profile.Profile{}, ErrAccountDisabled
	}
	if !auth.ValidRole(p.Role) {
		return profile.Profile{}, ErrInvalidRole
	}
	if util.EqualsIgnoreCase(name, auth.RoleAdmin) && p.Role != auth.RoleAdmin {
		return profile.Profile{}, ErrAdminRoleRequired
	}
	return p, nil
}

// Login autentica pelo nome do atendente e senha.
func (s *AuthService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	p, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrFirstAccess
	}

	ok, legacy, err := auth.Verify(password, p.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("nome", p.Name).Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	if legacy {
		s.upgradeLegacyPassword(ctx, p.Name, password)
	}

	return s.issue(p.Principal())
}

func (s *AuthService) upgradeLegacyPassword(ctx context.Context, name, password string) {
	hash, err := auth.Hash(password)
	if err != nil {
		log.Warn().Err(err).Msg("login: hash da senha antiga falhou")
		return
	}
	if err := s.profiles.SetPassword(ctx, name, hash); err != nil {
		log.Warn().Err(err).Str("nome", name).Msg("login: conversão da senha antiga falhou")
		return
	}
	log.Info().Str("nome", name).Msg("login: senha antiga convertida para argon2id")
}

// FirstAccess define a senha de um perfil que ainda não possui uma e já
// devolve a sessão.
func (s *AuthService) FirstAccess(ctx context.Context, name, password string) (*LoginResult, error) {
	if err := util.ValidatePassword(password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	p, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.PasswordHash != "" {
		return nil, ErrPasswordAlreadySet
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetPassword(ctx, p.Name, hash); err != nil {
		return nil, err
	}
	log.Info().Str("nome", p.Name).Msg("primeiro acesso concluído")

	return s.issue(p.Principal())
}

func (s *AuthService) issue(p auth.Principal) (*LoginResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		User:      p,
		ExpiresAt: util.Now().Add(s.jwt.TTL()).UTC(),
	}, nil
}

// Logout revoga o token até a sua expiração.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}
