package routes

import (
	"net/http"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) *controllers.Srv {
	s := controllers.GetSrv(a)
	empCtl := controllers.NewEmployeeController(s)
	catCtl := controllers.NewCategoryController(s)
	toolCtl := controllers.NewToolController(s)
	loanCtl := controllers.NewLoanController(s)
	reportCtl := controllers.NewReportController(s)

	r.GET("/healthz", func(c *app.Ctx) {
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, app.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, app.H{"ok": true})
	})

	api := r.Group("/api")

	employees := api.Group("/employees")
	{
		employees.POST("", empCtl.Create)
		employees.GET("", empCtl.List) // ?active=&area=&q=&limit=&offset=
		employees.GET("/:id", empCtl.Get)
		employees.PATCH("/:id", empCtl.Update)
		employees.POST("/:id/activate", empCtl.Activate)
		employees.POST("/:id/deactivate", empCtl.Deactivate)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", catCtl.Create)
		categories.GET("", catCtl.List)
		categories.GET("/:id", catCtl.Get)
		categories.PATCH("/:id", catCtl.Update)
		categories.POST("/:id/activate", catCtl.Activate)
		categories.POST("/:id/deactivate", catCtl.Deactivate)
		categories.DELETE("/:id", catCtl.Delete)
		categories.GET("/:id/tools", catCtl.Tools)
	}

	tools := api.Group("/tools")
	{
		tools.POST("", toolCtl.Create)
		tools.GET("", toolCtl.List) // ?active=&available=&category_id=&q=
		tools.GET("/next-code", toolCtl.NextCode)
		tools.GET("/:id", toolCtl.Get)
		tools.PATCH("/:id", toolCtl.Update)
		tools.POST("/:id/activate", toolCtl.Activate)
		tools.POST("/:id/deactivate", toolCtl.Deactivate)
	}

	loans := api.Group("/loans")
	{
		loans.POST("", a.Idempotency(), loanCtl.Create)
		loans.GET("", loanCtl.List) // ?status=&employee_id=&tool_id=&overdue=&from=&to=
		loans.GET("/overdue", loanCtl.Overdue)
		loans.GET("/:id", loanCtl.Get)
		loans.PATCH("/:id", loanCtl.Update)
		loans.POST("/:id/return", loanCtl.Return)
		loans.POST("/:id/cancel", loanCtl.Cancel)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/top-tools", reportCtl.TopTools)
		reports.GET("/top-employees", reportCtl.TopEmployees)
		reports.GET("/overdue", reportCtl.Overdue)
		reports.GET("/stats", reportCtl.Stats)
		reports.GET("/period", reportCtl.Period)
	}
	return s
}
