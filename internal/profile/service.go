package profile

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/rowstore"
	"github.com/gestaozabele/atendimento/internal/util"
)

var (
	errNotFound      = apperr.NotFound("Colaborador não encontrado")
	errAlreadyActive = apperr.Conflict("Colaborador já existe e está ativo")
	errInvalidKey    = apperr.Validation("Atividade inválida")
)

// Service concentra as regras da aba de perfis.
type Service struct {
	store  rowstore.Store
	schema *rowstore.Schema
}

// NewService cria o serviço de perfis.
func NewService(store rowstore.Store, schema *rowstore.Schema) *Service {
	return &Service{store: store, schema: schema}
}

// EnsureSchema cria o cabeçalho da aba quando vazia.
func (s *Service) EnsureSchema(ctx context.Context) error {
	return s.schema.Ensure(ctx, TableName, Columns())
}

// List devolve todos os perfis na ordem da planilha.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	tbl, err := s.store.ReadRows(ctx, TableName)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		p := FromRow(row)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ListActiveCollaborators filtra perfis ativos com papel colaborador.
func (s *Service) ListActiveCollaborators(ctx context.Context) ([]Profile, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(all))
	for _, p := range all {
		if p.IsCollaborator() {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByName busca pelo nome sem diferenciar maiúsculas.
func (s *Service) FindByName(ctx context.Context, name string) (Profile, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Profile{}, err
	}
	return findIn(all, name, false)
}

// FindActive busca apenas perfis ativos.
func (s *Service) FindActive(ctx context.Context, name string) (Profile, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Profile{}, err
	}
	return findIn(all, name, true)
}

func findIn(all []Profile, name string, activeOnly bool) (Profile, error) {
	name = util.NormalizeText(name)
	if name == "" {
		return Profile{}, errNotFound
	}
	var fallback *Profile
	for i := range all {
		p := all[i]
		if !util.EqualsIgnoreCase(p.Name, name) {
			continue
		}
		if p.Active {
			return p, nil
		}
		if fallback == nil {
			fallback = &all[i]
		}
	}
	if fallback != nil && !activeOnly {
		return *fallback, nil
	}
	return Profile{}, errNotFound
}

// NewProfile descreve um cadastro.
type NewProfile struct {
	Name      string
	Extension string
	Role      string
}

// Create cadastra um colaborador. Um perfil inativo com o mesmo nome é
// reativado em vez de duplicado.
func (s *Service) Create(ctx context.Context, in NewProfile) (Profile, error) {
	name := util.NormalizeText(in.Name)
	extension := util.NormalizeText(in.Extension)
	if name == "" || extension == "" {
		return Profile{}, apperr.Validation("Nome e ramal são obrigatórios")
	}
	if err := util.ValidateExtension(extension); err != nil {
		return Profile{}, apperr.Validation(err.Error())
	}
	role := strings.ToLower(util.NormalizeText(in.Role))
	if role == "" {
		role = auth.RoleCollaborator
	}
	if !auth.ValidRole(role) {
		return Profile{}, apperr.Validation("Papel inválido")
	}

	all, err := s.List(ctx)
	if err != nil {
		return Profile{}, err
	}

	existing, err := findIn(all, name, false)
	switch {
	case err == nil && existing.Active:
		return Profile{}, errAlreadyActive
	case err == nil:
		values := existing.values()
		values[ColActive] = Yes
		values[ColExtension] = extension
		values[ColRole] = role
		if err := s.store.UpdateRow(ctx, TableName, existing.ref, values); err != nil {
			return Profile{}, err
		}
		log.Info().Str("atendente", existing.Name).Msg("perfil reativado")
		existing.Active = true
		existing.Extension = extension
		existing.Role = role
		return existing, nil
	}

	p := Profile{
		Name:       name,
		Extension:  extension,
		Active:     true,
		Role:       role,
		Activities: make(map[string]bool, len(ActivityKeys)),
	}
	if err := s.store.AppendRow(ctx, TableName, p.values(), Columns()); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ToggleActivity inverte a atividade e devolve o novo valor.
func (s *Service) ToggleActivity(ctx context.Context, name, activity string) (bool, error) {
	activity = util.NormalizeText(activity)
	if !IsActivity(activity) {
		return false, errInvalidKey
	}
	p, err := s.FindActive(ctx, name)
	if err != nil {
		return false, err
	}
	next := !p.Activities[activity]
	p.Activities[activity] = next
	if err := s.store.UpdateRow(ctx, TableName, p.ref, p.values()); err != nil {
		return false, err
	}
	return next, nil
}

// Deactivate marca o perfil como inativo. Perfis nunca são apagados.
func (s *Service) Deactivate(ctx context.Context, name string) error {
	p, err := s.FindActive(ctx, name)
	if err != nil {
		return err
	}
	p.Active = false
	return s.store.UpdateRow(ctx, TableName, p.ref, p.values())
}

// SetPassword grava o hash da senha do perfil ativo.
func (s *Service) SetPassword(ctx context.Context, name, hash string) error {
	p, err := s.FindActive(ctx, name)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return s.store.UpdateRow(ctx, TableName, p.ref, p.values())
}

// values monta a linha completa preservando colunas desconhecidas.
func (p Profile) values() map[string]string {
	values := make(map[string]string, len(p.raw)+len(ActivityKeys)+5)
	for k, v := range p.raw {
		values[k] = v
	}
	values[ColName] = p.Name
	values[ColExtension] = p.Extension
	values[ColActive] = flagValue(p.Active)
	values[ColRole] = p.Role
	values[ColPassword] = p.PasswordHash
	for _, key := range ActivityKeys {
		values[key] = flagValue(p.Activities[key])
	}
	return values
}
