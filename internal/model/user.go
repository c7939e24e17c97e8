package model

import "time"

type UserRole string

const (
	UserRoleCitizen UserRole = "citizen"
	UserRoleStaff   UserRole = "staff"
	UserRoleAdmin   UserRole = "admin"
)

type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	Expertise []Category `json:"expertise,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasExpertise reports whether the user declares expertise in the category.
func (u *User) HasExpertise(category Category) bool {
	for _, c := range u.Expertise {
		if c == category {
			return true
		}
	}
	return false
}
