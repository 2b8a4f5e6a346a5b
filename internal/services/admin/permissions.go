package admin

import (
	"context"

	"github.com/louisbranch/adminactions/internal/platform/requestctx"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
)

// identityPermissions grants what the authenticated identity carries. Requests
// without an identity (auth disabled) are granted everything.
type identityPermissions struct{}

// HasPermission implements actions.PermissionChecker.
func (identityPermissions) HasPermission(ctx context.Context, _ string, permission string) bool {
	identity, ok := requestctx.IdentityFromContext(ctx)
	if !ok {
		return true
	}
	return identity.HasPermission(permission)
}

var _ actions.PermissionChecker = identityPermissions{}
