package controllers

import (
	"context"
	"net/http"
	"strconv"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/cache"
	"Gin_postgres_redis_tool_ledger/db"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

func cacheHeader(c *gin.Context, hit bool) {
	if hit {
		c.Header("X-Cache", "hit")
	} else {
		c.Header("X-Cache", "miss")
	}
}

func topNParam(c *gin.Context) (int, bool) {
	n, ok := queryInt(c, "n")
	if !ok {
		return 0, false
	}
	if n == 0 {
		n = db.DefaultTopN
	}
	return n, true
}

// GET /api/reports/top-tools?n=
func (rc *ReportController) TopTools(c *gin.Context) {
	n, ok := topNParam(c)
	if !ok {
		return
	}
	rows, hit, err := cache.Load(c.Request.Context(), rc.Reports, "top-tools:"+strconv.Itoa(n),
		func(ctx context.Context) ([]db.ToolUsage, error) { return rc.Repo.MostRequestedTools(ctx, n) })
	if err != nil {
		fail(c, err)
		return
	}
	cacheHeader(c, hit)
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/reports/top-employees?n=
func (rc *ReportController) TopEmployees(c *gin.Context) {
	n, ok := topNParam(c)
	if !ok {
		return
	}
	rows, hit, err := cache.Load(c.Request.Context(), rc.Reports, "top-employees:"+strconv.Itoa(n),
		func(ctx context.Context) ([]db.EmployeeActivity, error) { return rc.Repo.MostActiveEmployees(ctx, n) })
	if err != nil {
		fail(c, err)
		return
	}
	cacheHeader(c, hit)
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/reports/overdue
func (rc *ReportController) Overdue(c *gin.Context) {
	rows, hit, err := cache.Load(c.Request.Context(), rc.Reports, "overdue", rc.Repo.OverdueReport)
	if err != nil {
		fail(c, err)
		return
	}
	cacheHeader(c, hit)
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/reports/stats
func (rc *ReportController) Stats(c *gin.Context) {
	s, hit, err := cache.Load(c.Request.Context(), rc.Reports, "stats", rc.Repo.GeneralStats)
	if err != nil {
		fail(c, err)
		return
	}
	cacheHeader(c, hit)
	c.JSON(http.StatusOK, s)
}

// GET /api/reports/period?from=&to=  (a plain-date to includes that day)
func (rc *ReportController) Period(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryUntil(c, "to")
	if !ok {
		return
	}
	if from == nil || to == nil {
		badRequest(c, "from and to are required")
		return
	}
	name := "period:" + strconv.FormatInt(from.UnixNano(), 10) + ":" + strconv.FormatInt(to.UnixNano(), 10)
	p, hit, err := cache.Load(c.Request.Context(), rc.Reports, name,
		func(ctx context.Context) (*db.PeriodSummary, error) { return rc.Repo.PeriodSummary(ctx, *from, *to) })
	if err != nil {
		fail(c, err)
		return
	}
	cacheHeader(c, hit)
	c.JSON(http.StatusOK, p)
}
