package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
)

type CategoryInput struct {
	Name   string
	Active *bool
}

type CategoryPatch struct {
	Name *string
}

func (r *Repo) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	c := &models.Category{Name: name, Active: in.Active == nil || *in.Active}
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, storage("create category", err)
	}
	return c, nil
}

func (r *Repo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storage("get category", err)
	}
	return &c, nil
}

func (r *Repo) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := r.DB.WithContext(ctx).Model(&models.Category{}).Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	out := []models.Category{}
	if err := q.Find(&out).Error; err != nil {
		return nil, storage("list categories", err)
	}
	return out, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id uint, p CategoryPatch) (*models.Category, error) {
	var c models.Category
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}
		if p.Name == nil {
			return nil
		}
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name", "required")
		}
		return tx.Model(&c).Update("name", name).Error
	})
	if err != nil {
		return nil, storage("update category", err)
	}
	return &c, nil
}

// SetCategoryActive leaves the category's tools untouched.
func (r *Repo) SetCategoryActive(ctx context.Context, id uint, active bool) (*models.Category, error) {
	var c models.Category
	err := r.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).Where("id = ?", id).Update("active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, storage("set category active", err)
	}
	return &c, nil
}

// DeleteCategory is the only hard delete in the system. Tools keep their
// category_id; the reference simply stops resolving.
func (r *Repo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return storage("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
