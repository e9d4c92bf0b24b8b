package core

import "github.com/desslyhub/platform/internal/vault"

type Services struct {
	APIToken  *APITokenService
	User      *UserService
	Allowlist *AllowlistService
	Audit     *AuditService
}

func NewServices(db DB, v *vault.Vault) *Services {
	return &Services{
		APIToken:  NewAPITokenService(db, v),
		User:      NewUserService(db),
		Allowlist: NewAllowlistService(db),
		Audit:     NewAuditService(db),
	}
}
