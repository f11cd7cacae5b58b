package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/handlers"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Users   *services.UserService
	Tokens  *services.TokenService
	Farms   *services.FarmService
	Roster  *services.RosterService
	Catalog *services.CatalogService
	Plans   *services.PlanService
	Jobs    *services.JobService
	Logs    *services.JobLogService
	Payroll *services.PayrollService
	Exports *services.ExportService
	Reports *services.ReportService
}

type Options struct {
	TestMode bool
	// MediaDir is served under /media when set.
	MediaDir string
}

func New(svc Services, opts Options, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	authMiddleware := middleware.NewAuthMiddleware(svc.Tokens, opts.TestMode)
	farmAccess := middleware.NewFarmAccess(svc.Farms, log)

	authHandler := handlers.NewAuthHandler(svc.Users)
	tokenHandler := handlers.NewTokenHandler(svc.Tokens)
	farmHandler := handlers.NewFarmHandler(svc.Farms)
	rosterHandler := handlers.NewRosterHandler(svc.Roster)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)
	planHandler := handlers.NewPlanHandler(svc.Plans)
	jobHandler := handlers.NewJobHandler(svc.Jobs)
	logHandler := handlers.NewJobLogHandler(svc.Logs)
	payrollHandler := handlers.NewPayrollHandler(svc.Payroll, svc.Catalog)
	exportHandler := handlers.NewExportHandler(svc.Exports, svc.Payroll)
	dashboardHandler := handlers.NewDashboardHandler(svc.Reports)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/docs", handlers.SwaggerUI("/swagger/doc.json"))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.MediaDir != "" {
		r.Static("/media", opts.MediaDir)
	}

	api := r.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	authenticated := api.Group("")
	authenticated.Use(authMiddleware.RequireAuth())
	{
		authenticated.GET("/me", authHandler.Me)

		authenticated.POST("/tokens", tokenHandler.CreateToken)
		authenticated.GET("/tokens", tokenHandler.ListTokens)
		authenticated.DELETE("/tokens/:id", tokenHandler.DeleteToken)

		authenticated.GET("/farms", farmHandler.ListFarms)
		authenticated.POST("/farms", farmHandler.CreateFarm)

		authenticated.POST("/statements/verify", exportHandler.VerifyStatement)
	}

	farm := authenticated.Group("/farms/:farmID")
	farm.Use(farmAccess.RequireMember())

	// owners and managers review work and handle money
	reviewer := farm.Group("")
	reviewer.Use(farmAccess.RequireRole(models.RoleOwner, models.RoleManager))

	owner := farm.Group("")
	owner.Use(farmAccess.RequireRole(models.RoleOwner))

	{
		farm.GET("", farmHandler.GetFarm)
		owner.PUT("/members", farmHandler.SetMember)

		farm.GET("/dashboard", dashboardHandler.GetDashboard)

		farm.GET("/plots", rosterHandler.ListPlots)
		farm.POST("/plots", rosterHandler.CreatePlot)
		farm.PUT("/plots/:id", rosterHandler.UpdatePlot)
		farm.DELETE("/plots/:id", rosterHandler.DeletePlot)

		farm.GET("/workers", rosterHandler.ListWorkers)
		farm.POST("/workers", rosterHandler.CreateWorker)
		farm.POST("/workers/import", rosterHandler.ImportWorkers)
		farm.GET("/workers/:id", rosterHandler.GetWorker)
		farm.PUT("/workers/:id", rosterHandler.UpdateWorker)
		farm.DELETE("/workers/:id", rosterHandler.DeleteWorker)
		farm.PUT("/workers/:id/active", rosterHandler.SetWorkerActive)
		farm.POST("/workers/:id/photo", rosterHandler.UploadPhoto)

		farm.GET("/teams", rosterHandler.ListTeams)
		farm.POST("/teams", rosterHandler.CreateTeam)
		farm.DELETE("/teams/:id", rosterHandler.DeleteTeam)
		farm.GET("/teams/:id/members", rosterHandler.ListMembers)
		farm.POST("/teams/:id/members", rosterHandler.AddMember)
		farm.POST("/teams/:id/members/:memberID/end", rosterHandler.EndMembership)

		farm.GET("/job-types", catalogHandler.ListJobTypes)
		reviewer.POST("/job-types", catalogHandler.CreateJobType)
		reviewer.PUT("/job-types/:id/active", catalogHandler.SetJobTypeActive)

		farm.GET("/rate-cards", catalogHandler.ListRateCards)
		reviewer.POST("/rate-cards", catalogHandler.CreateRateCard)
		reviewer.POST("/rate-cards/:id/activate", catalogHandler.ActivateRateCard)
		farm.GET("/rate-cards/:id/rates", catalogHandler.GetRates)
		reviewer.PUT("/rate-cards/:id/rates", catalogHandler.SaveRates)

		farm.GET("/plans", planHandler.ListPlans)
		farm.POST("/plans", planHandler.CreatePlan)
		farm.GET("/plans/:id", planHandler.GetPlan)
		farm.PUT("/plans/:id", planHandler.UpdatePlan)
		farm.DELETE("/plans/:id", planHandler.DeletePlan)

		farm.GET("/jobs", jobHandler.ListJobs)
		farm.POST("/jobs", jobHandler.CreateJob)
		farm.GET("/jobs/:id", jobHandler.GetJob)
		farm.PUT("/jobs/:id", jobHandler.UpdateJob)
		farm.DELETE("/jobs/:id", jobHandler.DeleteJob)
		farm.PUT("/jobs/:id/status", jobHandler.SetStatus)
		farm.GET("/jobs/:id/logs", logHandler.ListForJob)
		farm.POST("/jobs/:id/logs", logHandler.CreateLog)

		farm.GET("/logs/:id", logHandler.GetLog)
		farm.PUT("/logs/:id", logHandler.UpdateLog)
		farm.DELETE("/logs/:id", logHandler.DeleteLog)
		farm.POST("/logs/:id/submit", logHandler.Submit)
		reviewer.POST("/logs/:id/approve", logHandler.Approve)
		reviewer.POST("/logs/:id/reject", logHandler.Reject)
		farm.GET("/logs/:id/history", logHandler.History)
		farm.GET("/approvals", logHandler.ApprovalQueue)

		reviewer.GET("/pay-periods", payrollHandler.ListPeriods)
		reviewer.POST("/pay-periods", payrollHandler.CreatePeriod)
		reviewer.GET("/pay-periods/:id", payrollHandler.GetPeriod)
		reviewer.POST("/pay-periods/:id/close", payrollHandler.ClosePeriod)
		reviewer.POST("/pay-periods/:id/run", payrollHandler.RunPayroll)
		reviewer.GET("/pay-periods/:id/lines", payrollHandler.ListLines)
		reviewer.GET("/pay-periods/:id/export", exportHandler.ExportPayroll)

		reviewer.GET("/adjustments", payrollHandler.ListAdjustments)
		reviewer.POST("/adjustments", payrollHandler.AddAdjustment)
		reviewer.POST("/adjustments/:id/assign", payrollHandler.AssignAdjustment)
		reviewer.DELETE("/adjustments/:id", payrollHandler.DeleteAdjustment)
	}

	return r
}
