package server

import (
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"user-profile-service/api/swagger"
	"user-profile-service/internal/adapter/gateway"
)

// SetupHTTPGateway creates the REST gateway server and the client connection it forwards through.
// The connection is lazy, so the gRPC server does not have to be listening yet.
func SetupHTTPGateway(grpcAddr string, httpAddr string, l *zap.Logger) (*http.Server, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial gRPC server: %w", err)
	}

	mux, err := gateway.NewServeMux(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to register gateway: %w", err)
	}

	httpMux := http.NewServeMux()
	httpMux.HandleFunc(swagger.SpecPath, swagger.SpecHandler())
	httpMux.HandleFunc("/swagger/", httpSwagger.Handler(
		httpSwagger.URL(swagger.SpecPath),
	))
	httpMux.Handle("/", mux)

	l.Info("REST gateway configured", zap.String("address", httpAddr))
	l.Info("Swagger UI available at", zap.String("url", "http://localhost"+httpAddr+"/swagger/"))

	return &http.Server{
		Addr:              httpAddr,
		Handler:           httpMux,
		ReadHeaderTimeout: 2 * time.Second,
	}, conn, nil
}
