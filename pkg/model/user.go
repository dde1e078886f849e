package model

// UserRole distinguishes customers from back-office employees.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleEmployee UserRole = "employee"
)

// User represents an authenticated banking user as returned by the API.
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	Active    bool     `json:"active"`
}

// IsEmployee reports whether the user may use back-office operations.
func (u *User) IsEmployee() bool {
	return u != nil && u.Role == RoleEmployee
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// UserPage is one page of the back-office user listing.
type UserPage struct {
	Users []User `json:"users"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
}
