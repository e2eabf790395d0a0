package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type PunchHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	Webhook(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type punchHandlerImpl struct {
	punchService punch.Service
}

func NewPunchHandler(punchService punch.Service) PunchHandler {
	return &punchHandlerImpl{
		punchService: punchService,
	}
}

// Record implements PunchHandler.
func (h *punchHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req punch.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.punchService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded", result)
}

// Webhook implements PunchHandler. Terminals authenticate with headers
// instead of a JWT: x-tenant-id, x-device-id and x-api-key.
func (h *punchHandlerImpl) Webhook(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("x-tenant-id")
	deviceID := r.Header.Get("x-device-id")
	apiKey := r.Header.Get("x-api-key")

	if tenantID == "" || deviceID == "" || apiKey == "" {
		response.Unauthorized(w, "Missing device credentials")
		return
	}

	var req punch.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.punchService.HandleWebhook(r.Context(), tenantID, deviceID, apiKey, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch accepted", result)
}

// Correct implements PunchHandler.
func (h *punchHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	var req punch.CorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.ID = chi.URLParam(r, "id")

	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if userID, ok := claims["user_id"].(string); ok {
		req.CorrectedBy = userID
	}

	result, err := h.punchService.Correct(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch corrected", result)
}

// Get implements PunchHandler.
func (h *punchHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.punchService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PunchHandler.
func (h *punchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := punch.ListFilter{}

	q := r.URL.Query()
	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("direction"); v != "" {
		filter.Direction = &v
	}
	if v := q.Get("has_anomaly"); v != "" {
		hasAnomaly, err := strconv.ParseBool(v)
		if err == nil {
			filter.HasAnomaly = &hasAnomaly
		}
	}
	if v := q.Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	result, err := h.punchService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Punches, response.PageMeta(result.Page, result.Limit, result.TotalPages, result.TotalCount))
}
