package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"guardpost/internal/dispatch/service"
	httputil "guardpost/pkg/http"
	"guardpost/pkg/logger"
)

type FlowHandler struct {
	service *service.DispatchService
	log     *logger.Logger
}

func NewFlowHandler(service *service.DispatchService, log *logger.Logger) *FlowHandler {
	return &FlowHandler{
		service: service,
		log:     log,
	}
}

type ExecuteFlowRequest struct {
	Flow  string         `json:"flow"`
	Input map[string]any `json:"input"`
}

type ExecuteFlowResponse struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

type acceptWebhookRequest struct {
	AcceptToken string `json:"accept_token"`
}

func (h *FlowHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ExecuteFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if req.Flow == "" {
		h.writeError(w, http.StatusBadRequest, "flow name is required")
		return
	}

	if req.Input == nil {
		req.Input = make(map[string]any)
	}

	h.log.Info("executing flow", "flow", req.Flow)

	output, err := h.service.ExecuteFlow(r.Context(), req.Flow, req.Input)
	if err != nil {
		h.log.Error("flow execution failed", "flow", req.Flow, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ExecuteFlowResponse{
		Success: true,
		Output:  output,
	})
}

func (h *FlowHandler) ListFlows(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeJSON(w, http.StatusOK, ListFlowsResponse{
		Flows: h.service.AvailableFlows(),
	})
}

// AcceptWebhook is the partner entry point for guards accepting an offer.
// The body carries only the sealed token; identity is inside it.
func (h *FlowHandler) AcceptWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req acceptWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode webhook payload", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	output, err := h.service.ExecuteFlow(r.Context(), "accept_offer", map[string]any{
		"accept_token": req.AcceptToken,
	})
	if err != nil {
		h.log.Warn("offer acceptance failed", "error", err)
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ExecuteFlowResponse{
		Success: true,
		Output:  output,
	})
}

func (h *FlowHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *FlowHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ExecuteFlowResponse{
		Success: false,
		Error:   message,
	})
}

func (h *FlowHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/dispatch/execute", h.ExecuteFlow)
	router.GET("/api/v1/dispatch/flows", h.ListFlows)
	router.POST("/api/v1/dispatch/webhooks/accept", h.AcceptWebhook)
}
