// Package gateway exposes the gRPC user service as JSON over HTTP using grpc-gateway.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "user-profile-service/internal/adapter/grpc"
	"user-profile-service/pkg/logger"
)

type requestBuilder func(r *http.Request, params map[string]string, dec runtime.Marshaler) (*structpb.Struct, error)

type route struct {
	method  string
	pattern string
	rpc     string
	build   requestBuilder
}

var routes = []route{
	{http.MethodPost, "/v1/users", grpcadapter.MethodCreateUser, bodyRequest},
	{http.MethodGet, "/v1/users", grpcadapter.MethodListUsers, listRequest},
	{http.MethodGet, "/v1/users/firebase/{firebase_uid}", grpcadapter.MethodGetUserByFirebaseUID, firebaseUIDRequest},
	{http.MethodGet, "/v1/users/{id}", grpcadapter.MethodGetUser, idRequest},
	{http.MethodPatch, "/v1/users/{id}", grpcadapter.MethodUpdateUser, bodyWithIDRequest},
	{http.MethodDelete, "/v1/users/{id}", grpcadapter.MethodDeleteUser, idRequest},
}

// NewServeMux builds a gateway mux whose routes forward to the user service over conn.
// /healthz reports the gRPC health service status.
func NewServeMux(conn *grpc.ClientConn) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions: protojson.MarshalOptions{
				UseProtoNames:   true,
				EmitUnpopulated: true,
			},
			UnmarshalOptions: protojson.UnmarshalOptions{
				DiscardUnknown: true,
			},
		}),
		runtime.WithIncomingHeaderMatcher(incomingHeaderMatcher),
		runtime.WithOutgoingHeaderMatcher(outgoingHeaderMatcher),
		runtime.WithForwardResponseOption(httpCodeModifier),
		runtime.WithHealthzEndpoint(grpc_health_v1.NewHealthClient(conn)),
	)

	client := grpcadapter.NewUserServiceClient(conn)
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, forward(mux, client, rt)); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return mux, nil
}

func forward(mux *runtime.ServeMux, client *grpcadapter.UserServiceClient, rt route) runtime.HandlerFunc {
	fullMethod := grpcadapter.FullMethod(rt.rpc)
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		inbound, outbound := runtime.MarshalerForRequest(mux, r)
		annotated, err := runtime.AnnotateContext(ctx, mux, r, fullMethod, runtime.WithHTTPPathPattern(rt.pattern))
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		in, err := rt.build(r, params, inbound)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		var header, trailer metadata.MD
		out, err := client.Invoke(annotated, rt.rpc, in, grpc.Header(&header), grpc.Trailer(&trailer))
		annotated = runtime.NewServerMetadataContext(annotated, runtime.ServerMetadata{HeaderMD: header, TrailerMD: trailer})
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		runtime.ForwardResponseMessage(annotated, mux, outbound, w, r, out, mux.GetForwardResponseOptions()...)
	}
}

func bodyRequest(r *http.Request, _ map[string]string, dec runtime.Marshaler) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if err := dec.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	if in.Fields == nil {
		in.Fields = map[string]*structpb.Value{}
	}
	return in, nil
}

func bodyWithIDRequest(r *http.Request, params map[string]string, dec runtime.Marshaler) (*structpb.Struct, error) {
	in, err := bodyRequest(r, params, dec)
	if err != nil {
		return nil, err
	}
	id, err := pathID(params)
	if err != nil {
		return nil, err
	}
	in.Fields["id"] = structpb.NewNumberValue(float64(id))
	return in, nil
}

func idRequest(_ *http.Request, params map[string]string, _ runtime.Marshaler) (*structpb.Struct, error) {
	id, err := pathID(params)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id": structpb.NewNumberValue(float64(id)),
	}}, nil
}

func firebaseUIDRequest(_ *http.Request, params map[string]string, _ runtime.Marshaler) (*structpb.Struct, error) {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"firebase_uid": structpb.NewStringValue(params["firebase_uid"]),
	}}, nil
}

func listRequest(r *http.Request, _ map[string]string, _ runtime.Marshaler) (*structpb.Struct, error) {
	q := r.URL.Query()
	fields := map[string]*structpb.Value{
		"query": structpb.NewStringValue(q.Get("query")),
	}
	// Malformed paging values fall back to the service defaults.
	for _, key := range []string{"page", "limit"} {
		if n, err := strconv.ParseInt(q.Get(key), 10, 64); err == nil {
			fields[key] = structpb.NewNumberValue(float64(n))
		}
	}
	return &structpb.Struct{Fields: fields}, nil
}

func pathID(params map[string]string) (int64, error) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "user id must be a positive number")
	}
	return id, nil
}

// incomingHeaderMatcher forwards the request id in addition to the default headers.
func incomingHeaderMatcher(key string) (string, bool) {
	if strings.EqualFold(key, logger.RequestIDHeader) {
		return logger.RequestIDHeader, true
	}
	return runtime.DefaultHeaderMatcher(key)
}

// outgoingHeaderMatcher exposes the request id as a plain header and hides the status hint.
func outgoingHeaderMatcher(key string) (string, bool) {
	switch strings.ToLower(key) {
	case logger.RequestIDHeader:
		return "X-Request-Id", true
	case grpcadapter.HTTPCodeHeader:
		return "", false
	}
	return fmt.Sprintf("%s%s", runtime.MetadataHeaderPrefix, key), true
}

// httpCodeModifier applies the status hint sent by the service, e.g. 201 on create.
func httpCodeModifier(ctx context.Context, w http.ResponseWriter, _ proto.Message) error {
	md, ok := runtime.ServerMetadataFromContext(ctx)
	if !ok {
		return nil
	}
	if vals := md.HeaderMD.Get(grpcadapter.HTTPCodeHeader); len(vals) > 0 {
		code, err := strconv.Atoi(vals[0])
		if err != nil {
			return err
		}
		delete(md.HeaderMD, grpcadapter.HTTPCodeHeader)
		w.WriteHeader(code)
	}
	return nil
}
