package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
)

type EmployeeInput struct {
	Name    string
	Surname string
	Area    string
	Email   *string
	Active  *bool // nil means active
}

// EmployeePatch carries only the fields to change.
type EmployeePatch struct {
	Name    *string
	Surname *string
	Area    *string
	Email   *string // pointer to "" clears the email
}

type EmployeeFilter struct {
	ActiveOnly bool
	Area       string
	Search     string // case-insensitive substring of name, surname or email
	Page
}

func normalizeEmail(s *string) *string {
	s = trimPtr(s)
	if s == nil {
		return nil
	}
	v := strings.ToLower(*s)
	return &v
}

func (in EmployeeInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name", "required")
	case strings.TrimSpace(in.Surname) == "":
		return invalid("surname", "required")
	case strings.TrimSpace(in.Area) == "":
		return invalid("area", "required")
	}
	return nil
}

func emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&models.Employee{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) CreateEmployee(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &models.Employee{
		Name:    strings.TrimSpace(in.Name),
		Surname: strings.TrimSpace(in.Surname),
		Area:    strings.TrimSpace(in.Area),
		Email:   normalizeEmail(in.Email),
		Active:  in.Active == nil || *in.Active,
	}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if e.Email != nil {
			taken, err := emailTaken(tx, *e.Email, 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateEmail
			}
		}
		return tx.Create(e).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, storage("create employee", err)
	}
	return e, nil
}

// GetEmployee returns (nil, nil) when the id is unknown.
func (r *Repo) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storage("get employee", err)
	}
	return &e, nil
}

func (r *Repo) ListEmployees(ctx context.Context, f EmployeeFilter) ([]models.Employee, error) {
	q := r.DB.WithContext(ctx).Model(&models.Employee{}).Order("id ASC")
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if a := strings.TrimSpace(f.Area); a != "" {
		q = q.Where("area = ?", a)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := containsPattern(f.Search)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(surname) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, p, p, p)
	}
	out := []models.Employee{}
	if err := f.Page.apply(q).Find(&out).Error; err != nil {
		return nil, storage("list employees", err)
	}
	return out, nil
}

func (r *Repo) ListEmployeesByArea(ctx context.Context, area string) ([]models.Employee, error) {
	return r.ListEmployees(ctx, EmployeeFilter{Area: area})
}

func (r *Repo) UpdateEmployee(ctx context.Context, id uint, p EmployeePatch) (*models.Employee, error) {
	var e models.Employee
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			if isNotFound(err) {
				return ErrEmployeeNotFound
			}
			return err
		}
		updates := map[string]any{}
		if p.Name != nil {
			if strings.TrimSpace(*p.Name) == "" {
				return invalid("name", "required")
			}
			updates["name"] = strings.TrimSpace(*p.Name)
		}
		if p.Surname != nil {
			if strings.TrimSpace(*p.Surname) == "" {
				return invalid("surname", "required")
			}
			updates["surname"] = strings.TrimSpace(*p.Surname)
		}
		if p.Area != nil {
			if strings.TrimSpace(*p.Area) == "" {
				return invalid("area", "required")
			}
			updates["area"] = strings.TrimSpace(*p.Area)
		}
		if p.Email != nil {
			email := normalizeEmail(p.Email)
			if email != nil {
				taken, err := emailTaken(tx, *email, e.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicateEmail
				}
			}
			updates["email"] = email
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&e).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&e, id).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, storage("update employee", err)
	}
	return &e, nil
}

// SetEmployeeActive is the soft delete / restore switch.
func (r *Repo) SetEmployeeActive(ctx context.Context, id uint, active bool) (*models.Employee, error) {
	var e models.Employee
	err := r.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Employee{}).Where("id = ?", id).Update("active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEmployeeNotFound
		}
		return tx.First(&e, id).Error
	})
	if err != nil {
		return nil, storage("set employee active", err)
	}
	return &e, nil
}
