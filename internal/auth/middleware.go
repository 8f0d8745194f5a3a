package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// Middleware verifies the bearer token on every request and stores the
// resulting actor in the request context. Failures get the same generic body
// as capability failures so callers cannot probe which check tripped.
func Middleware(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				log.LogSecurity("AUTH", "missing or malformed bearer token from "+r.RemoteAddr)
				writeRejection(w)
				return
			}

			actor, err := ActorFromToken(token, secret)
			if err != nil {
				log.LogSecurity("AUTH", "token verification failed from "+r.RemoteAddr)
				writeRejection(w)
				return
			}

			actor.Origin = r.RemoteAddr

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability gates a route behind one named capability.
func RequireCapability(capability string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Can(capability) {
				log.LogSecurity("CAPABILITY", "actor "+actor.UserID+" lacks "+capability)
				writeRejection(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext returns the actor stored by Middleware, or a zero actor.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey).(Actor); ok {
		return actor
	}
	return Actor{}
}

// WithActor stores an actor in a context. Used by tests to skip the
// middleware chain.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func writeRejection(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(utils.RejectionResponse("forbidden"))
}
