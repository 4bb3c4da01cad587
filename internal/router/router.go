package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buildlab-academy/internal/authz"
	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/config"
	adminhandlers "github.com/buildlab-academy/internal/http/handlers/admin"
	publichandlers "github.com/buildlab-academy/internal/http/handlers/public"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/metrics"
	"github.com/buildlab-academy/internal/provider"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()
	registerValidations()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bl"
	}
	redisClient := cache.Client()
	publicRule := RuleFromConfig(fmt.Sprintf("%s:rate:public", redisPrefix), cfg.Security.PublicRateLimit)
	adminLoginRule := RuleFromConfig(fmt.Sprintf("%s:rate:admin_login", redisPrefix), cfg.Security.LoginRateLimit)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口，按 IP 限流
		public := apiV1.Group("/public")
		public.Use(RateLimitMiddleware(redisClient, publicRule, KeyByIP))
		{
			public.POST("/student-discount/check", publicHandler.CheckStudentEmail)
			public.POST("/student-discount/validate", publicHandler.ValidateDiscountCode)
			public.POST("/newsletter/subscribe", publicHandler.SubscribeNewsletter)
			public.POST("/newsletter/unsubscribe", publicHandler.UnsubscribeNewsletter)
			public.GET("/newsletter/unsubscribe", publicHandler.UnsubscribeNewsletter)
			public.GET("/captcha/config", publicHandler.GetCaptchaConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户接口（外部认证服务签发的令牌）
		user := apiV1.Group("/student-discount")
		user.Use(UserJWTAuthMiddleware(c.AuthService))
		{
			user.POST("/apply", publicHandler.ApplyStudentVerification)
			user.GET("/status", publicHandler.GetVerificationStatus)
			user.GET("/discount", publicHandler.GetUserDiscount)
			user.POST("/usage", publicHandler.RecordDiscountUsage)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(AdminJWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})

				// 学生认证审核
				authorized.GET("/student-verifications", adminHandler.GetStudentVerifications)
				authorized.GET("/student-verifications/statistics", adminHandler.GetStudentVerificationStatistics)
				authorized.GET("/student-verifications/:id", adminHandler.GetStudentVerification)
				authorized.POST("/student-verifications/:id/action", adminHandler.PerformVerificationAction)

				// 学校域名登记
				authorized.GET("/student-domains", adminHandler.GetStudentDomains)
				authorized.POST("/student-domains", adminHandler.CreateStudentDomain)
				authorized.PUT("/student-domains/:id", adminHandler.UpdateStudentDomain)
				authorized.DELETE("/student-domains/:id", adminHandler.DeleteStudentDomain)

				// 邮件订阅
				authorized.GET("/newsletter/statistics", adminHandler.GetNewsletterStatistics)
				authorized.POST("/newsletter/broadcast", adminHandler.BroadcastNewsletter)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	return r
}

// registerValidations 将业务校验规则注册到 gin 的 binding 校验器
func registerValidations() {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	if err := service.RegisterValidations(engine); err != nil {
		logger.Warnw("binding_validation_register_failed", "error", err)
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
