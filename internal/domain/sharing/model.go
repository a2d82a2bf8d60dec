package sharing

import "time"

type Scope string

const (
	ScopeProfileRead   Scope = "profile:read"
	ScopeProfileEdit   Scope = "profile:edit"
	ScopeRecordsCreate Scope = "records:create"
	ScopeRecordsDelete Scope = "records:delete"
	ScopeScheduleRead  Scope = "schedule:read"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant delega acceso a un perfil de vacunación a otro usuario, con
// permisos acotados por scopes. El ciclo de vida es
// invited → active → revoked; revoked es terminal.
type Grant struct {
	ID string

	ProfileID string

	OwnerUserID   string // quien comparte
	GranteeUserID string // delegado

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
