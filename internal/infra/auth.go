package infra

import (
	"context"
	"encoding/json"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/s21platform/room-service/internal/config"
)

const userUUIDHeader = "X-User-Uuid"

// AuthInterceptorHTTP expects the platform gateway to pass the
// authenticated user id in a header and makes it an explicit context value.
// Handlers never read identity from anywhere else.
func AuthInterceptorHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userUUID := r.Header.Get(userUUIDHeader)
		if userUUID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing user uuid"})
			return
		}

		ctx := context.WithValue(r.Context(), config.KeyUUID, userUUID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AuthInterceptorGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	uuids := md.Get("uuid")
	if len(uuids) == 0 || uuids[0] == "" {
		return nil, status.Error(codes.Unauthenticated, "missing user uuid")
	}

	return handler(context.WithValue(ctx, config.KeyUUID, uuids[0]), req)
}
