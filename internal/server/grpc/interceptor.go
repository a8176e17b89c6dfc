package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
)

// healthServicePrefix covers every method of grpc.health.v1.Health.
const healthServicePrefix = "/grpc.health.v1.Health/"

func isPublic(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, healthServicePrefix)
}

// reject logs reason and returns the one status every gate failure shares.
func (s *GRPCServer) reject(ctx context.Context, reason string) error {
	s.logger.Debug(ctx, "call rejected by session gate", "reason", reason)
	return status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
}

func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	token, ok := auth.ParseBearer(header)
	if !ok {
		return nil, s.reject(ctx, "missing_token")
	}

	id, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, s.reject(ctx, "token_expired")
		}
		return nil, s.reject(ctx, "invalid_token")
	}

	return auth.WithIdentity(ctx, id), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context { return s.ctx }

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublic(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
}
