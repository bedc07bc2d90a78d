package dto

import "time"

type SubmitProfileRequest struct {
	Nickname string `json:"nickname"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Quote    string `json:"quote"`
	GradYear int    `json:"grad_year"`
	PhotoKey string `json:"photo_key"`
}

type SubmitEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
}

type SubmitMemoryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SubmitProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RepoURL     string `json:"repo_url"`
	DemoURL     string `json:"demo_url"`
}
