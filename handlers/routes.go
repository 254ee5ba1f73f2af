package handlers

import "github.com/gorilla/mux"

// RegisterProtectedRoutes mounts the authenticated /api/v1 routes on r.
func RegisterProtectedRoutes(r *mux.Router, challenges *ChallengeHandler, goals *GoalHandler, achievements *AchievementHandler, notifications *NotificationHandler) {
	r.HandleFunc("/challenges", challenges.GetMyChallenges).Methods("GET")
	r.HandleFunc("/challenges/catalog", challenges.GetCatalog).Methods("GET")
	r.HandleFunc("/challenges/available", challenges.GetAvailable).Methods("GET")
	r.HandleFunc("/challenges/enrollments/{id}", challenges.GetEnrollment).Methods("GET")
	r.HandleFunc("/challenges/enrollments/{id}/complete", challenges.CompleteEnrollment).Methods("POST")
	r.HandleFunc("/challenges/{templateId}/join", challenges.JoinChallenge).Methods("POST")

	r.HandleFunc("/goals", goals.GetGoals).Methods("GET")
	r.HandleFunc("/goals", goals.CreateGoal).Methods("POST")
	r.HandleFunc("/goals/{id}", goals.GetGoal).Methods("GET")
	r.HandleFunc("/goals/{id}", goals.DeleteGoal).Methods("DELETE")
	r.HandleFunc("/goals/{id}/progress", goals.UpdateProgress).Methods("PUT")
	r.HandleFunc("/goals/{id}/progress/increment", goals.IncrementProgress).Methods("POST")

	r.HandleFunc("/achievements", achievements.GetAchievements).Methods("GET")

	r.HandleFunc("/notifications/register-device", notifications.RegisterDevice).Methods("POST")
}
