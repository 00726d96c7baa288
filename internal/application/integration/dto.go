package integration

import "time"

// ContactFormRequest is the public contact form
type ContactFormRequest struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email" binding:"required"`
	Phone     string   `json:"phone"`
	Message   string   `json:"message"`
	Source    string   `json:"source"`
	Interests []string `json:"interests"`
	DogName   string   `json:"dog_name"`
	DogBreed  string   `json:"dog_breed"`
}

// ContactFormResponse reports the CRM outcome of a form submission
type ContactFormResponse struct {
	Success   bool   `json:"success"`
	ContactID string `json:"contact_id,omitempty"`
	Message   string `json:"message"`
}

// BookingRequest asks for a consultation call
type BookingRequest struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email" binding:"required"`
	Phone     string    `json:"phone"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
}
