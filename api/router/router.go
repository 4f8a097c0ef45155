package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	bootstrap "github.com/tbeaudouin05/stripe-billing/api/bootstrap"
	billingapp "github.com/tbeaudouin05/stripe-billing/api/services/billing/app"
)

const userParam = "user_external_id"

// NewRouter returns the central HTTP router for the API, wired with the
// bootstrapped billing service.
func NewRouter() http.Handler {
	// Initialize app dependencies (non-fatal if it fails here; handlers report unavailability).
	if err := bootstrap.Ensure(); err != nil {
		slog.Error("bootstrap ensure failed", "err", err)
	}
	return NewHandler(bootstrap.GetBillingService())
}

// NewHandler maps the billing service onto HTTP endpoints using the
// grpc-gateway mux for routing, marshaling and error rendering.
func NewHandler(svc billingapp.Service) http.Handler {
	mux := runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions:   protojson.MarshalOptions{UseProtoNames: false},
			UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
		}),
	)
	h := handlers{svc: svc, mux: mux}

	routes := []struct {
		method, pattern string
		fn              runtime.HandlerFunc
	}{
		{http.MethodPost, "/api/accounts/{user_external_id}/billing", h.saveBilling},
		{http.MethodGet, "/api/accounts/{user_external_id}/billing", h.getBilling},
		{http.MethodDelete, "/api/accounts/{user_external_id}/billing", h.deleteBilling},
		{http.MethodPost, "/api/accounts/{user_external_id}/billing/retry-charge", h.retryCharge},
		{http.MethodPost, "/api/accounts/{user_external_id}/billing/confirm", h.confirm},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.fn); err != nil {
			slog.Error("failed to register route", "method", rt.method, "pattern", rt.pattern, "err", err)
		}
	}
	return mux
}

// toStatus maps app-layer sentinel errors onto gRPC codes, which the gateway
// mux renders as HTTP statuses.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, billingapp.ErrBadRequest):
		code = codes.InvalidArgument
	case errors.Is(err, billingapp.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, billingapp.ErrGateway):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}
