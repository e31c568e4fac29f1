package models

import "time"

const EmployeeTable = "employees"

// Employee is never physically deleted; Active=false retires it.
type Employee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Surname   string    `gorm:"size:120;not null" json:"surname"`
	Area      string    `gorm:"size:120;not null;index" json:"area"`
	Email     *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"` // NULL allowed many times
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Employee) TableName() string { return EmployeeTable }

func (e Employee) FullName() string { return e.Name + " " + e.Surname }
