// Package profile lê e mantém a aba de perfis dos atendentes.
package profile

import (
	"strings"

	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/rowstore"
	"github.com/gestaozabele/atendimento/internal/util"
)

// TableName é o nome da aba de perfis.
const TableName = "Perfil"

const (
	ColName      = "Atendente"
	ColExtension = "Ramal"
	ColActive    = "Ativo"
	ColRole      = "Role"
	ColPassword  = "Senha"
)

// Valores booleanos gravados na planilha.
const (
	Yes = "Sim"
	No  = "Não"
)

const (
	ActivityWhatsapp = "Whatsapp"
	ActivitySiga     = "Registrosiga"
)

// ActivityKeys lista as atividades na ordem das colunas.
var ActivityKeys = []string{
	"Ti",
	ActivityWhatsapp,
	"Email",
	"Webconferencia",
	"Programaregularidade",
	"Sei",
	"Falabr",
	ActivitySiga,
	"Servicoprotocolo",
	"Gescon",
	"Taxigov",
	"Salareuniao400",
	"Benspatrimonio",
	"Materialescritorio",
	"Phplist",
	"Registroviagem",
}

// Columns devolve o cabeçalho completo da aba.
func Columns() []string {
	cols := []string{ColName, ColExtension, ColActive, ColRole, ColPassword}
	return append(cols, ActivityKeys...)
}

// IsActivity indica se key é uma atividade conhecida.
func IsActivity(key string) bool {
	for _, k := range ActivityKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Profile representa um atendente ou o administrador.
type Profile struct {
	Name         string          `json:"nome"`
	Extension    string          `json:"ramal"`
	Active       bool            `json:"ativo"`
	Role         string          `json:"role"`
	PasswordHash string          `json:"-"`
	Activities   map[string]bool `json:"-"`

	ref rowstore.RowRef
	raw map[string]string
}

// FromRow converte uma linha da aba.
func FromRow(row rowstore.Row) Profile {
	p := Profile{
		Name:         util.NormalizeText(row.Get(ColName)),
		Extension:    util.NormalizeText(row.Get(ColExtension)),
		Active:       util.NormalizeText(row.Get(ColActive)) == Yes,
		Role:         strings.ToLower(util.NormalizeText(row.Get(ColRole))),
		PasswordHash: util.NormalizeText(row.Get(ColPassword)),
		Activities:   make(map[string]bool, len(ActivityKeys)),
		ref:          row.Ref,
		raw:          row.Values,
	}
	for _, key := range ActivityKeys {
		p.Activities[key] = util.NormalizeText(row.Get(key)) == Yes
	}
	return p
}

// Has indica se a atividade está habilitada.
func (p Profile) Has(activity string) bool {
	return p.Activities[activity]
}

// IsCollaborator indica perfil ativo com papel de colaborador.
func (p Profile) IsCollaborator() bool {
	return p.Active && p.Role == auth.RoleCollaborator
}

// Flags devolve "Sim"/"Não" para cada atividade.
func (p Profile) Flags() map[string]string {
	out := make(map[string]string, len(ActivityKeys))
	for _, key := range ActivityKeys {
		out[key] = flagValue(p.Activities[key])
	}
	return out
}

// EnabledActivities lista as atividades marcadas com "Sim".
func (p Profile) EnabledActivities() []string {
	out := []string{}
	for _, key := range ActivityKeys {
		if p.Activities[key] {
			out = append(out, key)
		}
	}
	return out
}

func (p Profile) Principal() auth.Principal {
	return auth.Principal{Name: p.Name, Role: p.Role}
}

func flagValue(v bool) string {
	if v {
		return Yes
	}
	return No
}
