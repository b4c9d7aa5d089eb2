package dto

import "time"

// AuditSearchRequest parámetros de /api/Log/search.
type AuditSearchRequest struct {
	Search      string `query:"search"`
	OrderBy     string `query:"orderBy"`
	IsAscending bool   `query:"isAscending"`
	Page        int    `query:"page"`
	PerPage     int    `query:"perPage"`
}

// AuditEntryResponse registro del log de auditoría.
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditListResponse página del log.
type AuditListResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
