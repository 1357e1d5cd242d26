package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/api/handler"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/api/middleware"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/jwt"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/redis"
)

// multipart 报文相对最大上传文件的额外开销
const bodyOverhead = 1 << 20

const (
	publicRateLimit  = 10
	publicRateWindow = time.Minute
)

// Setup 注册所有路由；rdb 可为 nil，此时不吊销 Token 也不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Storage.PublicPrefix))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Storage.MaxUploadBytes + bodyOverhead))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 已上传的报告文件
	r.Static(cfg.Storage.PublicPrefix, cfg.Storage.Root)

	api := r.Group("/api")
	{
		public := middleware.RateLimit(limiter, publicRateLimit, publicRateWindow)
		api.POST("/login", public, h.Auth.Login)
		api.POST("/register", public, h.Auth.Register)
		api.POST("/contact", public, h.Contact.Submit)

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/logout", h.Auth.Logout)
			authorized.GET("/user", h.Auth.GetCurrentUser)
			authorized.GET("/profile", h.Auth.GetProfile)
			authorized.PUT("/profile", h.Auth.UpdateProfile)
			authorized.PUT("/change-password", h.Auth.ChangePassword)

			students := authorized.Group("/students", middleware.RoleAuth(model.RoleStudent))
			{
				students.GET("/reports", h.Report.ListMine)
				students.POST("/reports", h.Report.Submit)
				students.GET("/reports/:id/remarks", h.Report.ListRemarks)
				students.GET("/defense", h.Defense.MyDefense)
			}

			professors := authorized.Group("/professors", middleware.RoleAuth(model.RoleProfessor))
			{
				professors.GET("/students", h.Professor.MyStudents)
				professors.GET("/reports", h.Report.ListForProfessor)
				professors.GET("/reports/:id/remarks", h.Report.ListRemarks)
				professors.POST("/reports/:id/remarks", h.Report.AddRemark)
				professors.POST("/reports/:id/validate", h.Report.Validate)
				professors.GET("/jury-defenses", h.Defense.JuryDefenses)
				professors.GET("/jury-defenses/calendar", h.Export.JuryCalendar)
			}

			admin := authorized.Group("/admin", middleware.RoleAuth(model.RoleAdmin))
			{
				admin.GET("/students", h.Student.List)
				admin.POST("/students", h.Student.Create)
				admin.POST("/students/import", h.Student.Import)
				admin.GET("/students/:id", h.Student.Get)
				admin.PUT("/students/:id", h.Student.Update)
				admin.DELETE("/students/:id", h.Student.Delete)

				admin.GET("/professors", h.Professor.List)
				admin.POST("/professors", h.Professor.Create)
				admin.GET("/professors/:id", h.Professor.Get)
				admin.PUT("/professors/:id", h.Professor.Update)
				admin.DELETE("/professors/:id", h.Professor.Delete)

				admin.GET("/defenses", h.Defense.List)
				admin.POST("/defenses", h.Defense.Create)
				admin.GET("/defenses/:id", h.Defense.Get)
				admin.PUT("/defenses/:id", h.Defense.Update)
				admin.DELETE("/defenses/:id", h.Defense.Delete)
				admin.GET("/defenses/:id/jury", h.Defense.GetJury)
				admin.PUT("/defenses/:id/jury", h.Defense.AssignJury)

				admin.GET("/reports", h.Report.List)
				admin.POST("/reports/:id/finalize", h.Report.Finalize)
				admin.PUT("/reports/:id/status", h.Report.SetStatus)

				admin.GET("/schedule", h.Defense.List)
				admin.GET("/schedule/export", h.Export.ScheduleWorkbook)
				admin.GET("/schedule/calendar", h.Export.ScheduleCalendar)

				admin.GET("/stats", h.Stats.Overview)

				admin.GET("/contact-messages", h.Contact.List)
				admin.GET("/contact-messages/unread-count", h.Contact.UnreadCount)
				admin.PUT("/contact-messages/:id/read", h.Contact.MarkRead)
				admin.DELETE("/contact-messages/:id", h.Contact.Delete)
			}
		}
	}

	return r
}
