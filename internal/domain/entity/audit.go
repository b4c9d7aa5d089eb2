package entity

import "time"

// AuditEntry registro de una mutación exitosa sobre la API.
type AuditEntry struct {
	ID        string
	UserID    string
	UserEmail string
	Action    string // POST, PUT, DELETE
	Path      string
	Entity    string
	EntityID  string
	Status    int
	CreatedAt time.Time
}
