package model

import "time"

// DefaultTitle is used when a document is created without a title.
const DefaultTitle = "Untitled Document"

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDocRequest struct {
	Title string `json:"title"`
}

type UpdateContentRequest struct {
	Content string `json:"content"`
}

type UpdateTitleRequest struct {
	Title string `json:"title"`
}
