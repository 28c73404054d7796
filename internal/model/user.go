package model

// Role is the authenticated caller's role as asserted by the identity
// provider in the JWT "role" claim.
type Role string

const (
	RoleUser   Role = "USER"
	RoleVendor Role = "VENDOR"
	RoleAdmin  Role = "ADMIN"
)

// Actor identifies who is performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// Vendor is the directory view of a service professional used to enrich
// responses.  The directory is owned elsewhere; this service only reads it.
type Vendor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}
