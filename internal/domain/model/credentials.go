package model

import "time"

// Credentials - пара токенов backend API для одного чата
type Credentials struct {
	Access          string     `json:"access"`
	Refresh         string     `json:"refresh"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`
}

// LoggedIn сообщает, есть ли у чата хотя бы access токен
func (c Credentials) LoggedIn() bool {
	return c.Access != ""
}
