package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type SupplementaryHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type supplementaryHandlerImpl struct {
	supplementaryService supplementary.Service
}

func NewSupplementaryHandler(supplementaryService supplementary.Service) SupplementaryHandler {
	return &supplementaryHandlerImpl{
		supplementaryService: supplementaryService,
	}
}

// Get implements SupplementaryHandler.
func (h *supplementaryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.supplementaryService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements SupplementaryHandler.
func (h *supplementaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := supplementary.ListFilter{}

	q := r.URL.Query()
	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	result, err := h.supplementaryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Days, response.PageMeta(result.Page, result.Limit, result.TotalPages, result.TotalCount))
}

// Approve implements SupplementaryHandler.
func (h *supplementaryHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.supplementaryService.Approve, "Supplementary day approved")
}

// Reject implements SupplementaryHandler.
func (h *supplementaryHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.supplementaryService.Reject, "Supplementary day rejected")
}

func (h *supplementaryHandlerImpl) review(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, req supplementary.ReviewRequest) (supplementary.Response, error),
	message string,
) {
	var req supplementary.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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
		req.ReviewedBy = userID
	}

	result, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}
