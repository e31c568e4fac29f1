package controllers

import (
	"net/http"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/db"

	"github.com/gin-gonic/gin"
)

type CategoryController struct{ *Srv }

func NewCategoryController(s *Srv) *CategoryController { return &CategoryController{Srv: s} }

type categoryReq struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// POST /api/categories
func (cc *CategoryController) Create(c *gin.Context) {
	var in categoryReq
	if !bindJSON(c, &in) {
		return
	}
	cat, err := cc.Repo.CreateCategory(c.Request.Context(), db.CategoryInput{Name: in.Name, Active: in.Active})
	if err != nil {
		fail(c, err)
		return
	}
	cc.changed(c.Request.Context())
	c.JSON(http.StatusCreated, cat)
}

// GET /api/categories?active=
func (cc *CategoryController) List(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	ls, err := cc.Repo.ListCategories(c.Request.Context(), active)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/categories/:id
func (cc *CategoryController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := cc.Repo.GetCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if cat == nil {
		notFound(c, "category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// PATCH /api/categories/:id
func (cc *CategoryController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in struct {
		Name *string `json:"name"`
	}
	if !bindJSON(c, &in) {
		return
	}
	cat, err := cc.Repo.UpdateCategory(c.Request.Context(), id, db.CategoryPatch{Name: in.Name})
	if err != nil {
		fail(c, err)
		return
	}
	cc.changed(c.Request.Context())
	c.JSON(http.StatusOK, cat)
}

func (cc *CategoryController) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		cat, err := cc.Repo.SetCategoryActive(c.Request.Context(), id, active)
		if err != nil {
			fail(c, err)
			return
		}
		cc.changed(c.Request.Context())
		c.JSON(http.StatusOK, cat)
	}
}

func (cc *CategoryController) Activate(c *gin.Context)   { cc.setActive(true)(c) }
func (cc *CategoryController) Deactivate(c *gin.Context) { cc.setActive(false)(c) }

// DELETE /api/categories/:id
func (cc *CategoryController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := cc.Repo.DeleteCategory(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	cc.changed(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GET /api/categories/:id/tools
func (cc *CategoryController) Tools(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ls, err := cc.Repo.ListToolsByCategory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}
