package domain

import "time"

type Consultation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
