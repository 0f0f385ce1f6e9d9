package demand

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/profile"
	"github.com/gestaozabele/atendimento/internal/rowstore"
	"github.com/gestaozabele/atendimento/internal/util"
)

var (
	errDemandNotFound       = apperr.NotFound("Demanda não encontrada")
	errCollaboratorNotFound = apperr.NotFound("Colaborador não encontrado")
	errAdminOnly            = apperr.Forbidden("Acesso negado")
	errNoSigaPermission     = apperr.Forbidden("Usuário sem permissão de Registro SIGA")
)

// Profiles é a consulta de perfis usada pelas regras de demanda.
type Profiles interface {
	FindActive(ctx context.Context, name string) (profile.Profile, error)
}

// Service executa as operações sobre a aba de demandas.
type Service struct {
	store      rowstore.Store
	schema     *rowstore.Schema
	profiles   Profiles
	staleAfter time.Duration
}

// NewService cria o serviço. staleAfter define quando uma demanda aberta é
// considerada atrasada.
func NewService(store rowstore.Store, schema *rowstore.Schema, profiles Profiles, staleAfter time.Duration) *Service {
	return &Service{store: store, schema: schema, profiles: profiles, staleAfter: staleAfter}
}

// EnsureSchema cria cabeçalho e colunas que faltarem na aba.
func (s *Service) EnsureSchema(ctx context.Context) error {
	return s.schema.Ensure(ctx, TableName, Columns)
}

func (s *Service) rows(ctx context.Context) ([]rowstore.Row, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	tbl, err := s.store.ReadRows(ctx, TableName)
	if err != nil {
		return nil, err
	}
	return tbl.Rows, nil
}

// All devolve todas as demandas com a marcação de atraso calculada.
func (s *Service) All(ctx context.Context) ([]Demand, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	now := util.Now()
	out := make([]Demand, 0, len(rows))
	for _, row := range rows {
		d := FromRow(row)
		if d.ID == "" && d.Subject == "" {
			continue
		}
		d.Stale = d.IsStale(now, s.staleAfter)
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, id string) (rowstore.Row, Demand, error) {
	id = util.NormalizeText(id)
	rows, err := s.rows(ctx)
	if err != nil {
		return rowstore.Row{}, Demand{}, err
	}
	for _, row := range rows {
		if util.NormalizeText(row.Get(ColID)) == id && id != "" {
			d := FromRow(row)
			d.Stale = d.IsStale(util.Now(), s.staleAfter)
			return row, d, nil
		}
	}
	return rowstore.Row{}, Demand{}, errDemandNotFound
}

func (s *Service) apply(ctx context.Context, row rowstore.Row, patch Patch) error {
	values := row.Clone().Values
	patch.Apply(values)
	return s.store.UpdateRow(ctx, TableName, row.Ref, values)
}

func idsOf(rows []rowstore.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Get(ColID))
	}
	return out
}

// Filter combina os filtros da listagem de solicitações.
type Filter struct {
	// Pending mantém demandas sem responsável e não concluídas.
	Pending bool
	// Mine mantém demandas registradas pelo usuário.
	Mine bool
	// Assignee mantém demandas atribuídas ao nome informado.
	Assignee string
	// History mantém demandas atribuídas e concluídas.
	History bool
}

// List aplica os filtros em sequência. Colaboradores só podem listar as
// demandas que registraram.
func (s *Service) List(ctx context.Context, actor auth.Principal, f Filter) ([]Demand, error) {
	if !actor.IsAdmin() && !f.Mine {
		return nil, apperr.Forbidden("Colaborador só pode listar as próprias solicitações")
	}

	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	assignee := util.NormalizeText(f.Assignee)

	out := make([]Demand, 0, len(all))
	for _, d := range all {
		if f.Pending && (!d.Unassigned() || d.Concluded) {
			continue
		}
		if f.Mine && d.RegisteredBy != util.NormalizeText(actor.Name) {
			continue
		}
		if assignee != "" && d.AssignedTo != assignee {
			continue
		}
		if f.History && (d.Unassigned() || !d.Concluded) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// ListByAssignee lista as demandas de um atendente.
func (s *Service) ListByAssignee(ctx context.Context, actor auth.Principal, assignee string) ([]Demand, error) {
	assignee = util.NormalizeText(assignee)
	if assignee == "" {
		return nil, apperr.Validation("atendente é obrigatório")
	}
	if !actor.IsAdmin() && assignee != actor.Name {
		return nil, apperr.Forbidden("Colaborador só pode ver as próprias demandas")
	}

	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Demand, 0)
	for _, d := range all {
		if d.AssignedTo == assignee {
			out = append(out, d)
		}
	}
	return out, nil
}

// CreateInput descreve uma nova solicitação aberta pelo administrador.
type CreateInput struct {
	Subject     string
	Description string
	Meta        string
	Category    string
	SigaMeta    string
	Assignee    string
}

// Create registra a solicitação e devolve o ID gerado.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (string, error) {
	if !actor.IsAdmin() {
		return "", errAdminOnly
	}

	subject := util.NormalizeText(in.Subject)
	description := util.NormalizeText(in.Description)
	meta := util.ParseWeight(in.Meta)
	category := NormalizeCategory(in.Category)
	if subject == "" || description == "" || meta <= 0 || category == "" {
		return "", apperr.Validation("Área, descrição, meta e categoria são obrigatórios")
	}
	if category != CategoryFromWeight(meta) {
		return "", apperr.Validation("Categoria incompatível com a meta informada")
	}

	sigaMeta := DefaultSigaMeta
	if raw := util.NormalizeText(in.SigaMeta); raw != "" {
		sigaMeta = util.ParseWeight(raw)
		if sigaMeta <= 0 {
			return "", apperr.Validation("Meta de registro SIGA inválida")
		}
	}

	assignee := util.NormalizeText(in.Assignee)
	if assignee != "" {
		p, err := s.profiles.FindActive(ctx, assignee)
		if err != nil {
			return "", err
		}
		if !p.IsCollaborator() {
			return "", errCollaboratorNotFound
		}
		assignee = p.Name
	}

	rows, err := s.rows(ctx)
	if err != nil {
		return "", err
	}
	id := NextID(subject, idsOf(rows), util.CurrentYear())

	values := map[string]string{
		ColID:              id,
		ColSubject:         subject,
		ColDescription:     description,
		ColRegisteredAt:    util.Today(),
		ColStatus:          "",
		ColAssignee:        assignee,
		ColRegisteredBy:    actor.Name,
		ColRegistrarLegacy: actor.Name,
		ColMeta:            util.FormatWeight(meta),
		ColSigaMeta:        util.FormatWeight(sigaMeta),
		ColCategory:        category,
		ColReopenCount:     "0",
		ColOrigin:          OriginPanel,
	}
	if err := s.store.AppendRow(ctx, TableName, values, Columns); err != nil {
		return "", err
	}

	log.Info().Str("id", id).Str("admin", actor.Name).Str("atendente", assignee).Msg("solicitação criada")
	return id, nil
}

// UpdateInput traz os campos editáveis; vazios são ignorados.
type UpdateInput struct {
	Subject     string
	Description string
	Meta        string
	Category    string
}

// Update altera assunto, descrição, meta e categoria. A coerência entre meta
// e categoria só é verificada quando ambas são enviadas.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id string, in UpdateInput) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}

	row, _, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	patch := Patch{}
	if v := util.NormalizeText(in.Subject); v != "" {
		patch[ColSubject] = v
	}
	if v := util.NormalizeText(in.Description); v != "" {
		patch[ColDescription] = v
	}
	var meta float64
	if raw := util.NormalizeText(in.Meta); raw != "" {
		meta = util.ParseWeight(raw)
		if meta <= 0 {
			return apperr.Validation("Meta inválida")
		}
		patch[ColMeta] = util.FormatWeight(meta)
	}
	if raw := util.NormalizeText(in.Category); raw != "" {
		category := NormalizeCategory(raw)
		if category == "" {
			return apperr.Validation("Categoria inválida")
		}
		if meta > 0 && category != CategoryFromWeight(meta) {
			return apperr.Validation("Categoria incompatível com a meta informada")
		}
		patch[ColCategory] = category
	}

	return s.apply(ctx, row, patch)
}

// Delete remove fisicamente a linha da demanda.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	row, d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRow(ctx, TableName, row.Ref); err != nil {
		return err
	}
	log.Info().Str("id", d.ID).Str("admin", actor.Name).Msg("solicitação removida")
	return nil
}

// Assign define o responsável, que precisa ser um colaborador ativo.
func (s *Service) Assign(ctx context.Context, actor auth.Principal, id, assignee string) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	assignee = util.NormalizeText(assignee)
	if assignee == "" {
		return apperr.Validation("atendenteNome é obrigatório")
	}

	row, _, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	p, err := s.profiles.FindActive(ctx, assignee)
	if err != nil {
		return err
	}
	if !p.IsCollaborator() {
		return errCollaboratorNotFound
	}

	return s.apply(ctx, row, Patch{ColAssignee: p.Name})
}

// Reopen reabre uma demanda concluída.
func (s *Service) Reopen(ctx context.Context, actor auth.Principal, id, reason string) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	if util.NormalizeText(reason) == "" {
		return apperr.Validation("Motivo de reabertura é obrigatório")
	}

	row, d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	patch, err := Reopen(d, actor, reason)
	if err != nil {
		return err
	}
	if err := s.apply(ctx, row, patch); err != nil {
		return err
	}
	log.Info().Str("id", d.ID).Str("admin", actor.Name).Msg("demanda reaberta")
	return nil
}

// ChangeStatus aplica a transição pedida e devolve a demanda atualizada.
func (s *Service) ChangeStatus(ctx context.Context, actor auth.Principal, id string, change StatusChange) (Demand, error) {
	status := util.NormalizeText(change.Status)
	if status != StatusInProgress && status != StatusConcluded {
		return Demand{}, apperr.Validation("Status inválido")
	}

	row, d, err := s.find(ctx, id)
	if err != nil {
		return Demand{}, err
	}
	patch, err := Transition(d, actor, change, util.Now())
	if err != nil {
		return Demand{}, err
	}
	if err := s.apply(ctx, row, patch); err != nil {
		return Demand{}, err
	}

	values := row.Clone().Values
	patch.Apply(values)
	updated := FromRow(rowstore.Row{Ref: row.Ref, Values: values})
	updated.Stale = updated.IsStale(util.Now(), s.staleAfter)
	return updated, nil
}

// whatsappMeta é o peso fixo dos registros vindos do WhatsApp.
const whatsappMeta = "0.5"

// RegisterWhatsApp registra um atendimento recebido por WhatsApp.
func (s *Service) RegisterWhatsApp(ctx context.Context, actor auth.Principal, subject, description string) (string, error) {
	if !actor.IsCollaborator() {
		return "", apperr.Forbidden("Somente colaborador")
	}
	subject = util.NormalizeText(subject)
	description = util.NormalizeText(description)
	if subject == "" || description == "" {
		return "", apperr.Validation("Assunto e descrição são obrigatórios")
	}

	rows, err := s.rows(ctx)
	if err != nil {
		return "", err
	}
	id := NextID(OriginWhatsapp, idsOf(rows), util.CurrentYear())

	values := map[string]string{
		ColID:              id,
		ColSubject:         subject,
		ColDescription:     description,
		ColRegisteredAt:    util.Today(),
		ColRegisteredBy:    actor.Name,
		ColRegistrarLegacy: actor.Name,
		ColMeta:            whatsappMeta,
		ColSigaMeta:        util.FormatWeight(DefaultSigaMeta),
		ColCategory:        CategoryLow,
		ColReopenCount:     "0",
		ColOrigin:          OriginWhatsapp,
	}
	if err := s.store.AppendRow(ctx, TableName, values, Columns); err != nil {
		return "", err
	}
	log.Info().Str("id", id).Str("atendente", actor.Name).Msg("registro whatsapp salvo")
	return id, nil
}

func (s *Service) requireSiga(ctx context.Context, actor auth.Principal) error {
	p, err := s.profiles.FindActive(ctx, actor.Name)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return errNoSigaPermission
		}
		return err
	}
	if !p.Has(profile.ActivitySiga) {
		return errNoSigaPermission
	}
	return nil
}

// SigaQueue lista os itens pendentes de registro no SIGA.
func (s *Service) SigaQueue(ctx context.Context, actor auth.Principal) ([]Demand, error) {
	if err := s.requireSiga(ctx, actor); err != nil {
		return nil, err
	}
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Demand, 0)
	for _, d := range all {
		if d.InSigaQueue() {
			out = append(out, d)
		}
	}
	return out, nil
}

// CompleteSigaItem marca o item da fila SIGA como registrado.
func (s *Service) CompleteSigaItem(ctx context.Context, actor auth.Principal, id string) error {
	if err := s.requireSiga(ctx, actor); err != nil {
		return err
	}
	row, d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !d.InSigaQueue() {
		return apperr.Validation("Registro não está pendente na fila SIGA")
	}
	return s.apply(ctx, row, Patch{
		ColStatus:     util.Today(),
		ColFinishedBy: actor.Name,
	})
}
