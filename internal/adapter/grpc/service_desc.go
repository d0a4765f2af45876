package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "userprofile.v1.UserService"

// Method names of ServiceName.
const (
	MethodCreateUser           = "CreateUser"
	MethodGetUser              = "GetUser"
	MethodGetUserByFirebaseUID = "GetUserByFirebaseUID"
	MethodUpdateUser           = "UpdateUser"
	MethodDeleteUser           = "DeleteUser"
	MethodListUsers            = "ListUsers"
)

// FullMethod returns the wire path of a method, e.g. /userprofile.v1.UserService/GetUser.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// UserServiceHandler is implemented by servers of ServiceName.
// Requests and responses are google.protobuf.Struct values keyed in snake_case.
type UserServiceHandler interface {
	CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetUserByFirebaseUID(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(UserServiceHandler, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := srv.(UserServiceHandler)
			if interceptor == nil {
				return call(h, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(h, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes ServiceName for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceHandler)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodCreateUser, UserServiceHandler.CreateUser),
		methodDesc(MethodGetUser, UserServiceHandler.GetUser),
		methodDesc(MethodGetUserByFirebaseUID, UserServiceHandler.GetUserByFirebaseUID),
		methodDesc(MethodUpdateUser, UserServiceHandler.UpdateUser),
		methodDesc(MethodDeleteUser, UserServiceHandler.DeleteUser),
		methodDesc(MethodListUsers, UserServiceHandler.ListUsers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userprofile/v1/user_service.proto",
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceHandler) {
	s.RegisterService(&ServiceDesc, srv)
}

// UserServiceClient calls ServiceName over a client connection.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client on cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

// Invoke calls method with in and returns the decoded response.
func (c *UserServiceClient) Invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
