package models

type Category struct {
	ID       string `json:"id" firestore:"-"`
	Name     string `json:"name" firestore:"name"`
	Type     string `json:"type" firestore:"type"` // income or expense; NA is type-agnostic
	IsSystem bool   `json:"isSystem" firestore:"isSystem"`
}
