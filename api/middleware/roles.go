package middleware

import (
	"net/http"

	"github.com/jomarvillega/stockroom-backend/api/responses"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
	"github.com/jomarvillega/stockroom-backend/pkg/logger"
)

// RequireVoidRights gates administrative reversals to supervisory staff.
// Cashiers can sell and park orders but cannot undo a settled sale.
func RequireVoidRights(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.StaffRole(RoleFromContext(r.Context()))
			if !role.CanVoid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "requires manager role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
