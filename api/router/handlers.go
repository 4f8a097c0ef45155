package router

import (
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	billingapp "github.com/tbeaudouin05/stripe-billing/api/services/billing/app"
)

type handlers struct {
	svc billingapp.Service
	mux *runtime.ServeMux
}

type confirmRequest struct {
	QueryToken string `json:"queryToken"`
}

func (h handlers) saveBilling(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	var attrs billingapp.Attributes
	if !h.decode(w, r, &attrs) {
		return
	}
	resp, err := h.svc.SaveSubscribedCustomer(r.Context(), params[userParam], attrs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, saveStatus(resp), resp)
}

func (h handlers) confirm(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	var req confirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ConfirmTransparentRedirect(r.Context(), params[userParam], req.QueryToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, saveStatus(resp), resp)
}

func (h handlers) getBilling(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	summary, err := h.svc.GetBillingSummary(r.Context(), params[userParam])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, summary)
}

func (h handlers) retryCharge(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	resp, err := h.svc.RetryCharge(r.Context(), params[userParam])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	code := http.StatusOK
	if !resp.Success {
		code = http.StatusUnprocessableEntity
	}
	h.respond(w, r, code, resp)
}

func (h handlers) deleteBilling(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), params[userParam]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func saveStatus(resp billingapp.SaveResponse) int {
	if resp.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func (h handlers) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.svc != nil {
		return true
	}
	h.writeError(w, r, status.Error(codes.Unavailable, "billing service not initialized"))
	return false
}

func (h handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	inbound, _ := runtime.MarshalerForRequest(h.mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, r, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err))
		return false
	}
	return true
}

func (h handlers) respond(w http.ResponseWriter, r *http.Request, code int, v any) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	body, err := outbound.Marshal(v)
	if err != nil {
		h.writeError(w, r, status.Errorf(codes.Internal, "failed to marshal response: %v", err))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write response", "path", r.URL.Path, "err", err)
	}
}

func (h handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("billing request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	h.writeError(w, r, toStatus(err))
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	runtime.HTTPError(r.Context(), h.mux, outbound, w, r, err)
}
