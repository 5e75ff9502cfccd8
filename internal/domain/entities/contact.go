package entities

import "time"

// ContactSubmission is a message left through the public contact form.
type ContactSubmission struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	PropertyID  *int      `json:"property_id,omitempty"`
	AssignedTo  *User     `json:"assigned_to,omitempty"`
	IsRead      bool      `json:"is_read"`
	SubmittedAt time.Time `json:"submitted_at"`
}
