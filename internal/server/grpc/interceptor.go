package grpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/services"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "requestID"
)

// RequestIDHeader carries the request id back to the caller and may be
// supplied by it.
const RequestIDHeader = "x-request-id"

// IdentityFromContext returns the caller the auth interceptor admitted.
func IdentityFromContext(ctx context.Context) (models.InternalUser, bool) {
	u, ok := ctx.Value(identityKey).(models.InternalUser)
	return u, ok
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func incoming(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// bearerToken extracts the token of an "authorization: Bearer <token>"
// header. Any other shape yields "".
func bearerToken(ctx context.Context) string {
	h := incoming(ctx, common.AuthorizationHeaderName)
	if len(h) < len(common.BearerScheme) || !strings.EqualFold(h[:len(common.BearerScheme)], common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(h[len(common.BearerScheme):])
}

// authInterceptor runs the gate for every Cecil method above public level
// and stores the admitted identity in the context. Methods of other
// services, such as health, pass untouched.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	level, ok := methodAccess[info.FullMethod]
	if !ok || level == services.AccessPublic {
		return handler(ctx, req)
	}

	user, err := s.svc.Gate.Authorize(ctx, bearerToken(ctx), level)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, identityKey, *user), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := incoming(ctx, RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	}
	switch code {
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "grpc call failed", args...)
	default:
		s.logger.Info(ctx, "grpc call", args...)
	}

	return resp, err
}

// recoveryInterceptor turns a handler panic into codes.Internal and logs the
// stack. It sits inside the logging and metrics interceptors so the failed
// call is still recorded.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "grpc handler panic",
				"request_id", RequestIDFromContext(ctx),
				"method", info.FullMethod,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
