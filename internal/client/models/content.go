package models

import "time"

// HomeConfig is the landing page content managed by admins.
type HomeConfig struct {
	ID             int64   `json:"id"`
	SloganText     string  `json:"slogan_text"`
	SloganImage    *string `json:"slogan_image"`
	IntroText      string  `json:"intro_text"`
	IntroFlowchart *string `json:"intro_flowchart"`
	CaseText       string  `json:"case_text"`
}

type FAQ struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Article is an SEO article; Content is markdown.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
