package http

import (
	"net/http"

	"challenge-quiz-service/internal/app"
)

// NewRouter wires the REST endpoints, the live ranking feed and a health check.
func NewRouter(service *app.QuizService) http.Handler {
	api := NewAPI(service)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /groups", api.HandleListGroups)
	mux.HandleFunc("POST /groups", api.HandleRegisterGroup)
	mux.HandleFunc("GET /users", api.HandleListUsers)
	mux.HandleFunc("POST /users", api.HandleRegisterUser)
	mux.HandleFunc("GET /users/{id}", api.HandleGetUser)
	mux.HandleFunc("POST /users/{id}/answers", api.HandleSubmitAnswer)
	mux.HandleFunc("GET /users/{id}/record", api.HandleUserRecord)
	mux.HandleFunc("GET /ranking", api.HandleRanking)
	mux.HandleFunc("GET /questions", api.HandleSampleQuestions)
	mux.HandleFunc("POST /questions", api.HandleRegisterQuestion)
	mux.HandleFunc("DELETE /questions/{id}", api.HandleDeleteQuestion)
	mux.HandleFunc("GET /ws/ranking", wsHandler.ServeWS)
	return mux
}
