package entity

import "time"

// Message is one entry in the contact inbox.
type Message struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
