package device

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const (
	CookieName = "device"
	tokenTTL   = 365 * 24 * time.Hour
)

type ctxKey string

const deviceKey ctxKey = "device"

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceKey).(string)
	return id, ok && id != ""
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey, id)
}

// Identify puts the caller's device id into the request context, minting a
// new id and cookie when the request carries none or an invalid one.
func Identify(tm *TokenMaker, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if id, err := tm.Parse(c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
					return
				}
			}

			id := uuid.NewString()
			tok, err := tm.New(id, tokenTTL)
			if err != nil {
				if log != nil {
					log.Error("device token issue", zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    tok,
				Path:     "/",
				MaxAge:   int(tokenTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
