package domain

import "time"

// Department represents an organizational unit. Names are unique
// case-insensitively.
type Department struct {
	ID                int64
	Name              string
	ResponsibleUserID *int64
	CreatedAt         time.Time
}

// Application is a catalog entry for software that tickets may reference.
type Application struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Materiel is a catalog entry for hardware that tickets may reference.
type Materiel struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
