package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"createform/internal/model"
	"createform/internal/service"
	"createform/internal/transport/rest/middleware"
)

// SurveyHandler handles survey authoring endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// Create handles POST /v1/surveys
//
//	@Summary	Create a draft survey
//	@Tags		surveys
//	@Accept		json
//	@Produce	json
//	@Param		body	body		model.SurveyRequest	true	"survey"
//	@Success	201		{object}	model.Survey
//	@Failure	400		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/surveys [post]
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SurveyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	survey, err := h.surveySvc.Create(r.Context(), middleware.GetOwnerID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.List(r.Context(), middleware.GetOwnerID(r.Context()), r.URL.Query().Get("workspaceId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// Get handles GET /v1/surveys/{surveyId}
//
//	@Summary	Survey with questions and outcomes
//	@Tags		surveys
//	@Produce	json
//	@Param		surveyId	path		string	true	"survey id"
//	@Success	200			{object}	model.SurveyDetail
//	@Failure	404			{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/surveys/{surveyId} [get]
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.surveySvc.Get(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.SurveyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	survey, err := h.surveySvc.Update(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.Delete(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /v1/surveys/{surveyId}/publish
func (h *SurveyHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Unpublish handles POST /v1/surveys/{surveyId}/unpublish
func (h *SurveyHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *SurveyHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	survey, err := h.surveySvc.SetActive(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"], active)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// AddQuestion handles POST /v1/surveys/{surveyId}/questions
func (h *SurveyHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	question, err := h.surveySvc.AddQuestion(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /v1/surveys/{surveyId}/questions/{questionId}
func (h *SurveyHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.QuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	question, err := h.surveySvc.UpdateQuestion(r.Context(), middleware.GetOwnerID(r.Context()), vars["surveyId"], vars["questionId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// DeleteQuestion handles DELETE /v1/surveys/{surveyId}/questions/{questionId}
func (h *SurveyHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.surveySvc.DeleteQuestion(r.Context(), middleware.GetOwnerID(r.Context()), vars["surveyId"], vars["questionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddOutcome handles POST /v1/surveys/{surveyId}/outcomes
//
//	@Summary	Add an outcome score range
//	@Tags		outcomes
//	@Accept		json
//	@Produce	json
//	@Param		surveyId	path		string					true	"survey id"
//	@Param		body		body		model.OutcomeRequest	true	"outcome"
//	@Success	201			{object}	model.Outcome
//	@Failure	400			{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/surveys/{surveyId}/outcomes [post]
func (h *SurveyHandler) AddOutcome(w http.ResponseWriter, r *http.Request) {
	var req model.OutcomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.surveySvc.AddOutcome(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// UpdateOutcome handles PUT /v1/surveys/{surveyId}/outcomes/{outcomeId}
func (h *SurveyHandler) UpdateOutcome(w http.ResponseWriter, r *http.Request) {
	var req model.OutcomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	outcome, err := h.surveySvc.UpdateOutcome(r.Context(), middleware.GetOwnerID(r.Context()), vars["surveyId"], vars["outcomeId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// DeleteOutcome handles DELETE /v1/surveys/{surveyId}/outcomes/{outcomeId}
func (h *SurveyHandler) DeleteOutcome(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.surveySvc.DeleteOutcome(r.Context(), middleware.GetOwnerID(r.Context()), vars["surveyId"], vars["outcomeId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
