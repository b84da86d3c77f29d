package domain

// SubjectType differentiates token holders.
type SubjectType string

const (
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// AdminRole enumerates console operator roles. Viewers may read requests but
// not act on them.
type AdminRole string

const (
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleViewer AdminRole = "viewer"
)
