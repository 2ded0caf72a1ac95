// Package v1 provides the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/auth"
	"osiedle/internal/domain/fees"
	"osiedle/internal/domain/members"
	"osiedle/internal/domain/reports"
	"osiedle/internal/domain/residents"
	"osiedle/internal/infrastructure/http/v1/handlers"
	"osiedle/internal/infrastructure/http/v1/middleware"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool         *postgres.Pool
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	AuthService     *auth.Service
	FeeService      *fees.Service
	ReportService   *reports.Service
	ResidentService *residents.Service
	MemberService   *members.Service
	TableRepo       *postgres.TableRepo
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery first, errors rendered last on the way out.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	router.POST("/login", authHandler.LoginAdmin)
	router.POST("/login/resident", authHandler.LoginResident)

	authed := router.Group("")
	authed.Use(middleware.Auth(cfg.JWTValidator))

	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		dataHandler := handlers.NewDataHandler(cfg.TableRepo, cfg.MemberService)
		data := admin.Group("/data")
		{
			data.GET("/:table", dataHandler.List)
			data.GET("/:table/search", dataHandler.Search)
			data.POST("/:table", dataHandler.Insert)
			data.PUT("/:table/:idField/:idValue", dataHandler.Update)
			data.DELETE("/:table/:idField/:idValue", dataHandler.Delete)
		}

		procedureHandler := handlers.NewProcedureHandler(cfg.FeeService)
		admin.POST("/procedures/add-fee", procedureHandler.AddFee)
		admin.POST("/procedures/increase-fees", procedureHandler.IncreaseFees)

		functionHandler := handlers.NewFunctionHandler(cfg.ReportService, cfg.FeeService)
		functions := admin.Group("/functions")
		{
			functions.GET("/members-of-building/:id", functionHandler.MembersOfBuilding)
			functions.GET("/apartment-fees/:id", functionHandler.ApartmentFees)
			functions.GET("/worker-repairs/:id", functionHandler.WorkerRepairs)
			functions.GET("/count-records/:table", functionHandler.CountRecords)
		}

		reportHandler := handlers.NewReportHandler(cfg.ReportService)
		admin.GET("/views/:name", reportHandler.View)
		admin.GET("/reports/summary", reportHandler.Summary)

		systemHandler := handlers.NewSystemHandler(cfg.MemberService)
		admin.GET("/system/audit-logs", systemHandler.AuditLogs)
	}

	residentHandler := handlers.NewResidentHandler(cfg.ResidentService)
	resident := authed.Group("/resident")
	{
		resident.GET("/meetings", middleware.RequireResident(), residentHandler.Meetings)
		resident.POST("/repairs", middleware.RequireResident(), residentHandler.SubmitRepair)

		scoped := resident.Group("")
		scoped.Use(middleware.RequireApartmentAccess("apt"))
		{
			scoped.GET("/my-data/:apt", residentHandler.MyData)
			scoped.GET("/payments/:apt", residentHandler.Payments)
			scoped.GET("/repairs/:apt", residentHandler.Repairs)
			scoped.GET("/consumption/:apt", residentHandler.Consumption)
		}
	}

	return router
}
