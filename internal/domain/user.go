package domain

import "time"

// Role enumerates the three access levels of the helpdesk.
type Role string

const (
	RoleEmployee   Role = "EMPLOYEE"
	RoleTechnician Role = "TECHNICIAN"
	RoleChief      Role = "CHIEF"
)

// User is the domain model for everyone in the helpdesk: employees who file
// tickets, technicians who resolve them and the chief of IT who supervises.
type User struct {
	ID           int64
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	Role         Role
	// HierarchyCode ranks a user inside their department. Higher values
	// denote broader supervisory scope; 0 means no subordinates.
	HierarchyCode int
	DepartmentID  *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName renders the display name used in reports and notifications.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}
