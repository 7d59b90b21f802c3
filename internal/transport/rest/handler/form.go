package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"createform/internal/model"
	"createform/internal/service"
	"createform/internal/transport/rest/middleware"
)

// FormHandler serves published forms to respondents
type FormHandler struct {
	surveySvc     *service.SurveyService
	submissionSvc *service.SubmissionService
	proxies       *middleware.TrustedProxies
}

// NewFormHandler creates a new form handler. proxies may be nil when the server is reached directly.
func NewFormHandler(surveySvc *service.SurveyService, submissionSvc *service.SubmissionService, proxies *middleware.TrustedProxies) *FormHandler {
	return &FormHandler{
		surveySvc:     surveySvc,
		submissionSvc: submissionSvc,
		proxies:       proxies,
	}
}

// Get handles GET /v1/forms/{surveyId}
//
//	@Summary	Published form without scores
//	@Tags		forms
//	@Produce	json
//	@Param		surveyId	path		string	true	"survey id"
//	@Success	200			{object}	model.PublicForm
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/forms/{surveyId} [get]
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.surveySvc.PublicForm(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Submit handles POST /v1/forms/{surveyId}/submissions
//
//	@Summary	Submit answers and get the outcome
//	@Tags		forms
//	@Accept		json
//	@Produce	json
//	@Param		surveyId	path		string				true	"survey id"
//	@Param		body		body		model.SubmitRequest	true	"answers"
//	@Success	201			{object}	model.SubmitResponse
//	@Failure	422			{object}	ErrorResponse
//	@Failure	429			{object}	ErrorResponse
//	@Router		/forms/{surveyId}/submissions [post]
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.submissionSvc.Submit(r.Context(), mux.Vars(r)["surveyId"], req, service.Respondent{
		ID:        middleware.GetOwnerID(r.Context()),
		ClientKey: h.proxies.ClientIP(r),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
