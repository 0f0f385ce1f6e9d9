package auth

// Papéis reconhecidos pelo painel.
const (
	RoleAdmin        = "admin"
	RoleCollaborator = "colaborador"
)

// Principal é o usuário autenticado que executa uma operação.
type Principal struct {
	Name string `json:"nome"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsCollaborator() bool {
	return p.Role == RoleCollaborator
}

// ValidRole indica se o papel é aceito no login.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCollaborator
}
