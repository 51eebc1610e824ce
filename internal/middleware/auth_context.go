package middleware

import (
	"context"
	"net/http"
	"strings"

	"pet-wellness/internal/platform/logger"
	"pet-wellness/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// DebugUserHeader identifica al dueño cuando no hay verifier configurado.
const DebugUserHeader = "X-Debug-User-ID"

type ctxKey struct{}

// AuthContext resuelve la identidad del request y la deja en el contexto.
// Con verifier valida el Bearer token; sin verifier acepta DebugUserHeader.
// Nunca responde por su cuenta: los handlers de mascotas devuelven 401
// cuando UserID no encuentra un dueño.
func AuthContext(verifier auth.AuthVerifier, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier, log)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier, log logger.Logger) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(DebugUserHeader))
		return auth.Claims{UserID: uid}, uid != ""
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		log.Debug("token rejected", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"error":      err.Error(),
		})
		return auth.Claims{}, false
	}
	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		// sin sujeto no hay dueño que autorizar
		log.Warn("verified token without user id", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
		})
		return auth.Claims{}, false
	}
	return claims, true
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(auth.Claims)
	return c, ok
}

// UserID devuelve el dueño autenticado, o false si el request es anónimo.
func UserID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	uid := strings.TrimSpace(c.UserID)
	return uid, uid != ""
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
