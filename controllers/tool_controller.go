package controllers

import (
	"net/http"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/db"

	"github.com/gin-gonic/gin"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

type toolReq struct {
	Name        string  `json:"name"`
	CategoryID  *uint   `json:"categoryId"`
	Code        *string `json:"code"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type toolPatchReq struct {
	Name              *string `json:"name"`
	CategoryID        *uint   `json:"categoryId"`
	ClearCategory     bool    `json:"clearCategory"`
	Code              *string `json:"code"`
	AvailableQuantity *int    `json:"availableQuantity"`
	Description       *string `json:"description"`
}

// POST /api/tools
func (tc *ToolController) Create(c *gin.Context) {
	var in toolReq
	if !bindJSON(c, &in) {
		return
	}
	t, err := tc.Repo.CreateTool(c.Request.Context(), db.ToolInput{
		Name: in.Name, CategoryID: in.CategoryID, Code: in.Code,
		Quantity: in.Quantity, Description: in.Description, Active: in.Active,
	})
	if err != nil {
		fail(c, err)
		return
	}
	tc.changed(c.Request.Context())
	c.JSON(http.StatusCreated, t)
}

// GET /api/tools?active=&available=&category_id=&q=&limit=&offset=
func (tc *ToolController) List(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	available, ok := queryBool(c, "available")
	if !ok {
		return
	}
	catID, ok := queryUint(c, "category_id")
	if !ok {
		return
	}
	page, ok := queryPage(c)
	if !ok {
		return
	}
	ls, err := tc.Repo.ListTools(c.Request.Context(), db.ToolFilter{
		ActiveOnly: active, AvailableOnly: available, CategoryID: catID, Search: c.Query("q"), Page: page,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/tools/next-code?name=
func (tc *ToolController) NextCode(c *gin.Context) {
	code, err := tc.Repo.GenerateToolCode(c.Request.Context(), c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"code": code})
}

// GET /api/tools/:id
func (tc *ToolController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := tc.Repo.GetTool(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if t == nil {
		notFound(c, "tool")
		return
	}
	c.JSON(http.StatusOK, t)
}

// PATCH /api/tools/:id
func (tc *ToolController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in toolPatchReq
	if !bindJSON(c, &in) {
		return
	}
	t, err := tc.Repo.UpdateTool(c.Request.Context(), id, db.ToolPatch{
		Name: in.Name, CategoryID: in.CategoryID, ClearCategory: in.ClearCategory,
		Code: in.Code, AvailableQuantity: in.AvailableQuantity, Description: in.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	tc.changed(c.Request.Context())
	c.JSON(http.StatusOK, t)
}

func (tc *ToolController) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		t, err := tc.Repo.SetToolActive(c.Request.Context(), id, active)
		if err != nil {
			fail(c, err)
			return
		}
		tc.changed(c.Request.Context())
		c.JSON(http.StatusOK, t)
	}
}

func (tc *ToolController) Activate(c *gin.Context)   { tc.setActive(true)(c) }
func (tc *ToolController) Deactivate(c *gin.Context) { tc.setActive(false)(c) }
