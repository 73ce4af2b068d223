package httpx

import "context"

type ctxKey string

const (
	// CtxKeyAdminID carries the subject of the verified admin token.
	CtxKeyAdminID ctxKey = "admin_id"
	// CtxKeyScopes carries the scopes granted to the verified admin token.
	CtxKeyScopes ctxKey = "scopes"
)

// AdminIDFromContext returns the authenticated administrator's subject, or ""
// when the request was not authenticated.
func AdminIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAdminID).(string); ok {
		return v
	}
	return ""
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
