package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lifeblood/backend/config"
	"lifeblood/backend/internal/api/handler"
	"lifeblood/backend/internal/api/middleware"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/pkg/jwt"
	"lifeblood/backend/pkg/redis"
	"lifeblood/backend/pkg/validate"
)

// RegisterValidators 为 gin 参数绑定注册业务校验标签（bloodtype、urgency、date、clock、contact）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return validate.Register(v)
}

// Setup 初始化并返回 Gin 路由引擎
// rdb、db 可为 nil：Redis 不可用时黑名单失效、限流降级为进程内
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db))

	var blacklist middleware.TokenChecker
	if rdb != nil {
		blacklist = rdb
	}
	authn := middleware.JWTAuth(jwtMgr, blacklist)
	limit := middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	donorOnly := middleware.RequireAccountType(model.AccountTypeDonor)
	staffOnly := middleware.RequireAccountType(model.AccountTypeStaff)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/register/donor", limit, h.Auth.RegisterDonor)
			auth.POST("/register/staff", limit, h.Auth.RegisterStaff)
			auth.POST("/login", limit, h.Auth.Login)
			auth.POST("/refresh", limit, h.Auth.RefreshToken)
			auth.POST("/forgot-password", limit, h.Auth.ForgotPassword)
		}

		// 公开接口
		v1.POST("/blood-requests", limit, h.BloodRequest.Create)
		v1.GET("/leaderboard", h.Leaderboard.TopDonors)
		v1.GET("/leaderboard/featured", h.Leaderboard.Featured)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(authn)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 献血者
			donor := authorized.Group("")
			donor.Use(donorOnly)
			{
				donor.GET("/donors/me", h.Donor.GetProfile)
				donor.PUT("/donors/me", h.Donor.UpdateProfile)
				donor.DELETE("/donors/me", h.Donor.DeleteAccount)
				donor.PUT("/donors/me/password", h.Donor.ChangePassword)
				donor.POST("/donors/me/deactivate", h.Donor.Deactivate)

				donor.POST("/appointments", h.Appointment.Schedule)
				donor.GET("/appointments/mine", h.Appointment.ListMine)

				donor.GET("/notifications", h.Notification.ListMine)
				donor.POST("/notifications/:id/respond", h.Notification.Respond)
				donor.POST("/notifications/:id/read", h.Notification.MarkRead)

				donor.GET("/export/calendar", h.Export.DonorCalendar)
			}

			// 医院员工
			staff := authorized.Group("")
			staff.Use(staffOnly)
			{
				requests := staff.Group("/blood-requests")
				{
					requests.GET("", h.BloodRequest.List)
					requests.DELETE("", h.BloodRequest.Clear)
					requests.GET("/:id", h.BloodRequest.Get)
					requests.DELETE("/:id", h.BloodRequest.Delete)
					requests.POST("/:id/schedule", h.BloodRequest.ScheduleDonor)
					requests.POST("/:id/fulfill", h.BloodRequest.MarkFulfilled)
					requests.POST("/:id/cancel", h.BloodRequest.Cancel)
				}

				appointments := staff.Group("/appointments")
				{
					appointments.GET("", h.Appointment.List)
					appointments.DELETE("", h.Appointment.ClearHistory)
					appointments.DELETE("/:id", h.Appointment.Delete)
					appointments.POST("/:id/confirm", h.Appointment.Confirm)
					appointments.POST("/:id/reject", h.Appointment.Reject)
					appointments.POST("/:id/complete", h.Appointment.Complete)
				}

				staff.GET("/stats/dashboard", h.Stats.Dashboard)
				staff.GET("/stats/requests", h.Stats.Requests)
				staff.GET("/export/blood-requests", h.Export.ExportRequests)
			}
		}
	}

	return r
}

// healthCheck 数据库可达时返回 ok
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				err = sqlDB.PingContext(ctx)
				cancel()
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
