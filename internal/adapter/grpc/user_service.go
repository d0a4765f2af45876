package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"user-profile-service/internal/usecase/user"
	pkgerrors "user-profile-service/pkg/errors"
	"user-profile-service/pkg/logger"
)

// HTTPCodeHeader lets a handler suggest the HTTP status the gateway should answer with.
const HTTPCodeHeader = "x-http-code"

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc  user.Usecase
	log *zap.Logger
}

var _ UserServiceHandler = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := createRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.CreateUser(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	_ = grpc.SetHeader(ctx, metadata.Pairs(HTTPCodeHeader, "201"))
	return s.encodeUser(ctx, resp.User)
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(in, keyID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: id})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encodeUser(ctx, resp.User)
}

// GetUserByFirebaseUID handles gRPC GetUserByFirebaseUID request
func (s *UserServiceServer) GetUserByFirebaseUID(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := stringField(in, keyFirebaseUID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.GetUserByFirebaseUID(ctx, user.GetUserByFirebaseUIDRequest{FirebaseUID: uid})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encodeUser(ctx, resp.User)
}

// UpdateUser handles gRPC UpdateUser request.
// Only keys present in the request are changed; null clears an optional field.
func (s *UserServiceServer) UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := updateRequestFromStruct(in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.UpdateUser(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.encodeUser(ctx, resp.User)
}

// DeleteUser handles gRPC DeleteUser request
func (s *UserServiceServer) DeleteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(in, keyID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.DeleteUser(ctx, user.DeleteUserRequest{ID: id})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return structpb.NewStruct(map[string]any{keyID: resp.ID})
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	query, err := stringField(in, keyQuery)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	page, err := int64Field(in, keyPage)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	limit, err := int64Field(in, keyLimit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp, err := s.uc.ListUsers(ctx, user.ListUsersRequest{Query: query, Page: page, Limit: limit})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out, err := listResponseToStruct(resp)
	if err != nil {
		return nil, s.toStatus(ctx, pkgerrors.NewInternalError("failed to encode response", err))
	}
	return out, nil
}

func (s *UserServiceServer) encodeUser(ctx context.Context, u user.User) (*structpb.Struct, error) {
	out, err := userToStruct(u)
	if err != nil {
		return nil, s.toStatus(ctx, pkgerrors.NewInternalError("failed to encode response", err))
	}
	return out, nil
}

// toStatus converts an application error into a gRPC status error.
// Errors without a gRPC mapping become codes.Internal without leaking their text.
func (s *UserServiceServer) toStatus(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	var statuser pkgerrors.GRPCStatuser
	if errors.As(err, &statuser) {
		return statuser.GRPCStatus().Err()
	}

	logger.WithContext(ctx, s.log).Error("unmapped error", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}
