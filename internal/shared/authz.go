package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store permissions. Verify and receive are the two stock-mutating
// transitions and require elevated privilege.
const (
	PermSalesVerify      = "sales.verify"
	PermPurchasesReceive = "purchases.receive"
	PermPaymentsRebuild  = "payments.rebuild"
	PermReportView       = "report.view"
)

// StoreScopes lists all permissions known to the store modules.
func StoreScopes() []string {
	return []string{
		PermSalesVerify,
		PermPurchasesReceive,
		PermPaymentsRebuild,
		PermReportView,
	}
}

// Authorizer answers whether an actor holds a permission. Services check it
// before any state change; a denial must leave all records untouched.
type Authorizer interface {
	Allowed(ctx context.Context, actorID int64, permission string) (bool, error)
}

// PGAuthorizer resolves effective permissions from role assignments.
type PGAuthorizer struct {
	pool *pgxpool.Pool
}

// NewPGAuthorizer constructs a database-backed Authorizer.
func NewPGAuthorizer(pool *pgxpool.Pool) *PGAuthorizer {
	return &PGAuthorizer{pool: pool}
}

// Allowed reports whether the actor has the permission through any role.
func (a *PGAuthorizer) Allowed(ctx context.Context, actorID int64, permission string) (bool, error) {
	if a == nil || a.pool == nil {
		return false, errors.New("authorizer not initialised")
	}
	if actorID == 0 || permission == "" {
		return false, nil
	}
	var exists bool
	err := a.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM user_roles ur
JOIN role_permissions rp ON rp.role_id = ur.role_id
WHERE ur.user_id = $1 AND rp.permission = $2)`, actorID, permission).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("authz: resolve permission: %w", err)
	}
	return exists, nil
}
