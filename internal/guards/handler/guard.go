package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"guardpost/internal/guards/service"
	httputil "guardpost/pkg/http"
	"guardpost/pkg/logger"
	"guardpost/pkg/model"
)

type GuardHandler struct {
	service service.GuardService
	log     *logger.Logger
}

func NewGuardHandler(service service.GuardService, log *logger.Logger) *GuardHandler {
	return &GuardHandler{
		service: service,
		log:     log,
	}
}

func (h *GuardHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var guard model.Guard
	if err := json.NewDecoder(r.Body).Decode(&guard); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &guard); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, guard); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *GuardHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	guard, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, guard); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GuardHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	guards, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, guards, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *GuardHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.GuardUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *GuardHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *GuardHandler) GetByPhone(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	phone := r.URL.Query().Get("phone")

	guard, err := h.service.GetByPhone(r.Context(), phone)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByPhone", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, guard); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByPhone", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GuardHandler) FindEligible(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindEligible", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	city := query.Get("city")
	armed := query.Get("armed") == "true"

	guards, total, err := h.service.FindEligible(r.Context(), city, armed, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindEligible", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, guards, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "FindEligible", "operation", "WritePaginated", "error", err)
	}
}

func (h *GuardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/guards", h.Create)
	router.GET("/api/v1/guards", h.GetAll)
	router.GET("/api/v1/guards/id/:id", h.GetByID)
	router.PATCH("/api/v1/guards/id/:id", h.Update)
	router.DELETE("/api/v1/guards/id/:id", h.Delete)
	router.GET("/api/v1/guards/by-phone", h.GetByPhone)
	router.GET("/api/v1/guards/eligible", h.FindEligible)
}
