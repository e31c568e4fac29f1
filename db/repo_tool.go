package db

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
)

type ToolInput struct {
	Name        string
	CategoryID  *uint
	Code        *string // nil or blank: generated from Name
	Quantity    *int    // nil means 1
	Description *string
	Active      *bool
}

type ToolPatch struct {
	Name              *string
	CategoryID        *uint
	ClearCategory     bool
	Code              *string
	AvailableQuantity *int // administrative stock correction
	Description       *string
}

type ToolFilter struct {
	ActiveOnly    bool
	AvailableOnly bool // active AND available_quantity > 0
	CategoryID    *uint
	Search        string // case-insensitive substring of name or code
	Page
}

func categoryExists(tx *gorm.DB, id uint) (bool, error) {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func codeTaken(tx *gorm.DB, code string, exceptID uint) (bool, error) {
	var n int64
	q := tx.Model(&models.Tool{}).Where("code = ?", code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) CreateTool(ctx context.Context, in ToolInput) (*models.Tool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	code := trimPtr(in.Code)

	attempts := 1
	if code == nil {
		attempts = codeMaxAttempts
	}
	var (
		t   *models.Tool
		err error
	)
	for i := 0; i < attempts; i++ {
		t = &models.Tool{
			Name:              name,
			CategoryID:        in.CategoryID,
			Active:            in.Active == nil || *in.Active,
			AvailableQuantity: qty,
			Description:       trimPtr(in.Description),
		}
		err = r.tx(ctx, func(tx *gorm.DB) error {
			if t.CategoryID != nil {
				ok, err := categoryExists(tx, *t.CategoryID)
				if err != nil {
					return err
				}
				if !ok {
					return ErrUnknownCategory
				}
			}
			if code != nil {
				taken, err := codeTaken(tx, *code, 0)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicateCode
				}
				t.Code = *code
			} else {
				c, err := nextToolCode(tx, name)
				if err != nil {
					return err
				}
				t.Code = c
			}
			return tx.Create(t).Error
		})
		if err == nil {
			return t, nil
		}
		if !isDuplicate(err) && !errors.Is(err, ErrDuplicateCode) {
			return nil, storage("create tool", err)
		}
		if code == nil {
			r.log.Warn("generated tool code collided, retrying", "code", t.Code, "attempt", i+1)
		}
	}
	if code != nil {
		return nil, ErrDuplicateCode
	}
	return nil, ErrCodeSpaceExhaust
}

func (r *Repo) GetTool(ctx context.Context, id uint) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storage("get tool", err)
	}
	return &t, nil
}

func (r *Repo) ListTools(ctx context.Context, f ToolFilter) ([]models.Tool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Tool{}).Order("id ASC")
	if f.ActiveOnly || f.AvailableOnly {
		q = q.Where("active = ?", true)
	}
	if f.AvailableOnly {
		q = q.Where("available_quantity > 0")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := containsPattern(f.Search)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\'`, p, p)
	}
	out := []models.Tool{}
	if err := f.Page.apply(q).Find(&out).Error; err != nil {
		return nil, storage("list tools", err)
	}
	return out, nil
}

func (r *Repo) ListToolsByCategory(ctx context.Context, categoryID uint) ([]models.Tool, error) {
	return r.ListTools(ctx, ToolFilter{CategoryID: &categoryID})
}

func (r *Repo) ListAvailableTools(ctx context.Context) ([]models.Tool, error) {
	return r.ListTools(ctx, ToolFilter{AvailableOnly: true})
}

func (r *Repo) UpdateTool(ctx context.Context, id uint, p ToolPatch) (*models.Tool, error) {
	var t models.Tool
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if isNotFound(err) {
				return ErrToolNotFound
			}
			return err
		}
		updates := map[string]any{}
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return invalid("name", "required")
			}
			updates["name"] = name
		}
		switch {
		case p.ClearCategory:
			updates["category_id"] = nil
		case p.CategoryID != nil:
			ok, err := categoryExists(tx, *p.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrUnknownCategory
			}
			updates["category_id"] = *p.CategoryID
		}
		if p.Code != nil {
			code := strings.TrimSpace(*p.Code)
			if code == "" {
				return invalid("code", "must not be blank")
			}
			taken, err := codeTaken(tx, code, t.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateCode
			}
			updates["code"] = code
		}
		if p.AvailableQuantity != nil {
			if *p.AvailableQuantity < 0 {
				return ErrInvalidQuantity
			}
			updates["available_quantity"] = *p.AvailableQuantity
		}
		if p.Description != nil {
			updates["description"] = trimPtr(p.Description)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&t, id).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateCode
		}
		return nil, storage("update tool", err)
	}
	return &t, nil
}

// SetToolActive takes a tool out of (or back into) service. Open loans are
// unaffected and still return stock.
func (r *Repo) SetToolActive(ctx context.Context, id uint, active bool) (*models.Tool, error) {
	var t models.Tool
	err := r.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Tool{}).Where("id = ?", id).Update("active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrToolNotFound
		}
		return tx.First(&t, id).Error
	})
	if err != nil {
		return nil, storage("set tool active", err)
	}
	return &t, nil
}
