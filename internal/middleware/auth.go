package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/chatbook/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClientIDKey is the context key for the authenticated client id.
const ClientIDKey contextKey = "client_id"

// GetClientID extracts the client id from the context.
// Returns empty string if not found.
func GetClientID(ctx context.Context) string {
	clientID, _ := ctx.Value(ClientIDKey).(string)
	return clientID
}

// Interceptors returns the server interceptor chain. Authentication runs
// before logging so every logged call carries its client id. A nil
// jwtManager leaves the API unauthenticated.
func Interceptors(jwtManager *auth.JWTManager) []connect.Interceptor {
	if jwtManager == nil {
		return []connect.Interceptor{LoggingInterceptor()}
	}
	return []connect.Interceptor{RequireAuth(jwtManager), LoggingInterceptor()}
}

// RequireAuth returns an interceptor that validates the bearer token of
// every call and puts the client id into the context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				slog.Warn("RPC rejected", "procedure", procedure, "error", auth.ErrMissingToken)
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				slog.Warn("RPC rejected", "procedure", procedure, "error", auth.ErrInvalidToken)
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				slog.Warn("RPC rejected", "procedure", procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, ClientIDKey, claims.ClientID)
			return next(ctx, req)
		}
	}
}

// BearerToken returns a client interceptor that sends token on every call.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
