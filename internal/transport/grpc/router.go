package grpc

import (
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AuthServiceName = "booking.auth.v1.AuthService"
	CheckProcedure  = "/" + AuthServiceName + "/Check"
)

// NewRouter returns the procedure path and the connect handler serving it.
func NewRouter(handler *Handler) (string, http.Handler) {
	return CheckProcedure, connect.NewUnaryHandler(
		CheckProcedure,
		handler.Check,
		connect.WithInterceptors(
			recoveryInterceptor(),
			loggingInterceptor(),
		),
	)
}

// NewCheckClient builds a client for the Check procedure at baseURL.
func NewCheckClient(httpClient connect.HTTPClient, baseURL string) *connect.Client[emptypb.Empty, structpb.Struct] {
	return connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+CheckProcedure)
}
