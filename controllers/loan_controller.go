package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/db"
	"Gin_postgres_redis_tool_ledger/events"
	"Gin_postgres_redis_tool_ledger/models"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

type createLoanReq struct {
	EmployeeID uint       `json:"employeeId" binding:"required"`
	ToolID     uint       `json:"toolId" binding:"required"`
	LoanedAt   *time.Time `json:"loanedAt"`
	DueAt      *time.Time `json:"dueAt"`
	Notes      *string    `json:"notes"`
}

type loanPatchReq struct {
	Notes    *string    `json:"notes"`
	LoanedAt *time.Time `json:"loanedAt"`
	DueAt    *time.Time `json:"dueAt"`
	Status   *string    `json:"status"`
}

// POST /api/loans
func (lc *LoanController) Create(c *gin.Context) {
	var in createLoanReq
	if !bindJSON(c, &in) {
		return
	}
	l, err := lc.Repo.CreateLoan(c.Request.Context(), db.CreateLoanInput{
		EmployeeID: in.EmployeeID, ToolID: in.ToolID,
		LoanedAt: in.LoanedAt, DueAt: in.DueAt, Notes: in.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	lc.changed(c.Request.Context())
	lc.publish(c.Request.Context(), events.LoanCreated, l)
	c.JSON(http.StatusCreated, l)
}

// GET /api/loans?status=&employee_id=&tool_id=&overdue=&from=&to=&limit=&offset=
func (lc *LoanController) List(c *gin.Context) {
	var f db.LoanFilter
	if s := c.Query("status"); s != "" {
		st := models.LoanStatus(s)
		if !st.Valid() {
			badRequest(c, "status must be active, returned or cancelled")
			return
		}
		f.Status = &st
	}
	var ok bool
	if f.EmployeeID, ok = queryUint(c, "employee_id"); !ok {
		return
	}
	if f.ToolID, ok = queryUint(c, "tool_id"); !ok {
		return
	}
	if f.OverdueOnly, ok = queryBool(c, "overdue"); !ok {
		return
	}
	if f.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if f.To, ok = queryUntil(c, "to"); !ok {
		return
	}
	if f.Page, ok = queryPage(c); !ok {
		return
	}
	ls, err := lc.Repo.ListLoans(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/loans/overdue
func (lc *LoanController) Overdue(c *gin.Context) {
	ls, err := lc.Repo.ListOverdueLoans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/loans/:id
func (lc *LoanController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	l, err := lc.Repo.GetLoan(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if l == nil {
		notFound(c, "loan")
		return
	}
	c.JSON(http.StatusOK, l)
}

// PATCH /api/loans/:id
func (lc *LoanController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in loanPatchReq
	if !bindJSON(c, &in) {
		return
	}
	if in.Status != nil {
		badRequest(c, "status changes only through /return or /cancel")
		return
	}
	l, err := lc.Repo.UpdateLoan(c.Request.Context(), id, db.LoanPatch{
		Notes: in.Notes, LoanedAt: in.LoanedAt, DueAt: in.DueAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	lc.changed(c.Request.Context())
	c.JSON(http.StatusOK, l)
}

// POST /api/loans/:id/return  body (optional): {"returnedAt": "..."}
func (lc *LoanController) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in struct {
		ReturnedAt *time.Time `json:"returnedAt"`
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	l, err := lc.Repo.ReturnLoan(c.Request.Context(), id, in.ReturnedAt)
	if err != nil {
		fail(c, err)
		return
	}
	lc.changed(c.Request.Context())
	lc.publish(c.Request.Context(), events.LoanReturned, l)
	c.JSON(http.StatusOK, l)
}

// POST /api/loans/:id/cancel
func (lc *LoanController) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	l, err := lc.Repo.CancelLoan(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	lc.changed(c.Request.Context())
	lc.publish(c.Request.Context(), events.LoanCancelled, l)
	c.JSON(http.StatusOK, l)
}
