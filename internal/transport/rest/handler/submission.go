package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"createform/internal/model"
	"createform/internal/service"
	"createform/internal/transport/rest/middleware"
)

// SubmissionHandler serves recorded submissions and their analytics to survey owners
type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
	analyticsSvc  *service.AnalyticsService
	exportSvc     *service.ExportService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionSvc *service.SubmissionService, analyticsSvc *service.AnalyticsService, exportSvc *service.ExportService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionSvc: submissionSvc,
		analyticsSvc:  analyticsSvc,
		exportSvc:     exportSvc,
	}
}

// List handles GET /v1/surveys/{surveyId}/submissions
//
//	@Summary	Recorded submissions, newest first
//	@Tags		submissions
//	@Produce	json
//	@Param		surveyId		path	string	true	"survey id"
//	@Param		outcomeTitle	query	string	false	"exact outcome title"
//	@Param		minScore		query	int		false	"lowest total score"
//	@Param		maxScore		query	int		false	"highest total score"
//	@Param		since			query	string	false	"RFC3339 or YYYY-MM-DD"
//	@Param		until			query	string	false	"RFC3339 or YYYY-MM-DD, exclusive"
//	@Param		hasLead			query	bool	false	"only with or without contact data"
//	@Param		limit			query	int		false	"page size"
//	@Success	200				{array}	model.Submission
//	@Security	BearerAuth
//	@Router		/surveys/{surveyId}/submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSubmissionFilter(mux.Vars(r)["surveyId"], r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submissions, err := h.submissionSvc.List(r.Context(), middleware.GetOwnerID(r.Context()), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": submissions})
}

// Export handles GET /v1/surveys/{surveyId}/submissions/export
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	filter, err := parseSubmissionFilter(surveyID, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.exportSvc.ExportCSV(r.Context(), middleware.GetOwnerID(r.Context()), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="submissions-%s.csv"`, surveyID))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Analytics handles GET /v1/surveys/{surveyId}/analytics
//
//	@Summary	Aggregated results of a survey
//	@Tags		submissions
//	@Produce	json
//	@Param		surveyId	path		string	true	"survey id"
//	@Success	200			{object}	model.AnalyticsSummary
//	@Security	BearerAuth
//	@Router		/surveys/{surveyId}/analytics [get]
func (h *SubmissionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsSvc.Summary(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Preview handles POST /v1/surveys/{surveyId}/preview
func (h *SubmissionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req model.PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.submissionSvc.Preview(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseSubmissionFilter(surveyID string, q url.Values) (model.SubmissionFilter, error) {
	filter := model.SubmissionFilter{
		SurveyID:     surveyID,
		OutcomeTitle: q.Get("outcomeTitle"),
	}

	var err error
	if filter.MinScore, err = optionalInt(q, "minScore"); err != nil {
		return filter, err
	}
	if filter.MaxScore, err = optionalInt(q, "maxScore"); err != nil {
		return filter, err
	}
	if filter.Since, err = optionalTime(q, "since"); err != nil {
		return filter, err
	}
	if filter.Until, err = optionalTime(q, "until"); err != nil {
		return filter, err
	}
	if v := q.Get("hasLead"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("hasLead must be true or false")
		}
		filter.HasLead = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("limit must be a positive integer")
		}
		filter.Limit = n
	}
	return filter, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func optionalTime(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD", key)
	}
	return t, nil
}
