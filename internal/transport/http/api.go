package http

import (
	"net/http"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/domain"
)

type API struct {
	service *app.QuizService
}

func NewAPI(service *app.QuizService) *API {
	return &API{service: service}
}

type submitAnswerResponse struct {
	Result bool `json:"result"`
}

func (a *API) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	req.UserID = r.PathValue("id")

	correct, err := a.service.SubmitAnswer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{Result: correct})
}

func (a *API) HandleUserRecord(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.UserRecord(r.Context(), app.RecordRequest{
		UserID:  r.PathValue("id"),
		GroupID: r.URL.Query().Get("group_id"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) HandleRanking(w http.ResponseWriter, r *http.Request) {
	entries, err := a.service.Ranking(r.Context(), domain.RankingField(r.URL.Query().Get("sort")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) HandleSampleQuestions(w http.ResponseWriter, r *http.Request) {
	degree, err := optionalIntParam(r, "degree")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	limit, err := optionalIntParam(r, "limit")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	questions, err := a.service.SampleQuestions(r.Context(), app.SampleQuestionsRequest{
		GroupID: r.URL.Query().Get("group_id"),
		Degree:  degree,
		Limit:   limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) HandleRegisterQuestion(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	question, err := a.service.RegisterQuestion(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (a *API) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathInt64(r, "id")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.service.DeleteQuestion(r.Context(), questionID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.service.Groups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *API) HandleRegisterGroup(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	group, err := a.service.RegisterGroup(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (a *API) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.service.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	user, err := a.service.RegisterUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.service.User(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
