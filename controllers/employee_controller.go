package controllers

import (
	"net/http"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/db"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct{ *Srv }

func NewEmployeeController(s *Srv) *EmployeeController { return &EmployeeController{Srv: s} }

type employeeReq struct {
	Name    string  `json:"name"`
	Surname string  `json:"surname"`
	Area    string  `json:"area"`
	Email   *string `json:"email"`
	Active  *bool   `json:"active"`
}

type employeePatchReq struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Area    *string `json:"area"`
	Email   *string `json:"email"`
}

// POST /api/employees
func (ec *EmployeeController) Create(c *gin.Context) {
	var in employeeReq
	if !bindJSON(c, &in) {
		return
	}
	e, err := ec.Repo.CreateEmployee(c.Request.Context(), db.EmployeeInput{
		Name: in.Name, Surname: in.Surname, Area: in.Area, Email: in.Email, Active: in.Active,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ec.changed(c.Request.Context())
	c.JSON(http.StatusCreated, e)
}

// GET /api/employees?active=&area=&q=&limit=&offset=
func (ec *EmployeeController) List(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	page, ok := queryPage(c)
	if !ok {
		return
	}
	ls, err := ec.Repo.ListEmployees(c.Request.Context(), db.EmployeeFilter{
		ActiveOnly: active, Area: c.Query("area"), Search: c.Query("q"), Page: page,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/employees/:id
func (ec *EmployeeController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := ec.Repo.GetEmployee(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if e == nil {
		notFound(c, "employee")
		return
	}
	c.JSON(http.StatusOK, e)
}

// PATCH /api/employees/:id
func (ec *EmployeeController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in employeePatchReq
	if !bindJSON(c, &in) {
		return
	}
	e, err := ec.Repo.UpdateEmployee(c.Request.Context(), id, db.EmployeePatch{
		Name: in.Name, Surname: in.Surname, Area: in.Area, Email: in.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ec.changed(c.Request.Context())
	c.JSON(http.StatusOK, e)
}

func (ec *EmployeeController) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		e, err := ec.Repo.SetEmployeeActive(c.Request.Context(), id, active)
		if err != nil {
			fail(c, err)
			return
		}
		ec.changed(c.Request.Context())
		c.JSON(http.StatusOK, e)
	}
}

// POST /api/employees/:id/activate
func (ec *EmployeeController) Activate(c *gin.Context) { ec.setActive(true)(c) }

// POST /api/employees/:id/deactivate
func (ec *EmployeeController) Deactivate(c *gin.Context) { ec.setActive(false)(c) }
