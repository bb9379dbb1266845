package bootstrap

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pulseboard/internal/conf"
	"pulseboard/internal/data"
	"pulseboard/internal/handler"
	"pulseboard/internal/middleware"
	"pulseboard/internal/repository"
	"pulseboard/internal/service"
)

// Run 启动服务器
func Run() {
	// 1. 加载配置
	cfg := conf.LoadConfig()

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		log.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	userRepo := repository.NewUserRepository(d.DB)
	tokenStore := data.NewRefreshTokenStore(d.Redis)

	// 3. 初始化服务层
	authSvc := service.NewAuthService(userRepo, tokenStore, cfg.Auth)
	userSvc := service.NewUserService(d, userRepo)
	boardSvc := service.NewBoardService(d)
	feedbackSvc := service.NewFeedbackService(d)

	// 4. 初始化 Handler
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	boardH := handler.NewBoardHandler(boardSvc)
	feedbackH := handler.NewFeedbackHandler(feedbackSvc)

	// 5. 初始化 Gin Server
	r := gin.Default()
	r.Use(middleware.TraceMiddleware())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 6. 注册路由
	RegisterRoutes(r, cfg, authH, userH, boardH, feedbackH)

	log.Printf("🚀 Pulseboard 后端已启动，监听端口 :%s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("❌ Server 启动失败: %v", err)
	}
}

// RegisterRoutes 路由表，测试里也用它搭建路由
func RegisterRoutes(
	r *gin.Engine,
	cfg *conf.Config,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	boardH *handler.BoardHandler,
	feedbackH *handler.FeedbackHandler,
) {
	secret := cfg.Auth.JWTSecret

	// 公开接口
	r.POST("/register/", authH.Register)
	r.POST("/token/", authH.Token)
	r.POST("/token/refresh/", authH.Refresh)
	r.GET("/files/*name", userH.GetFile)

	// 可选鉴权：匿名只看公开看板，带令牌则按成员可见性计算
	public := r.Group("/")
	public.Use(middleware.OptionalJWTAuth(secret))
	{
		public.GET("/boards/", boardH.List)
		public.GET("/boards/:id/", boardH.Get)
		public.GET("/boards/:id/feedback/", feedbackH.ListForBoard)
		public.GET("/feedback/:id/", feedbackH.Get)
	}

	// 强制鉴权接口
	protected := r.Group("/")
	protected.Use(middleware.JWTAuth(secret))
	{
		// 用户
		protected.GET("/profile/", userH.Profile)
		protected.PUT("/profile/", userH.UpdateProfile)
		protected.PATCH("/profile/", userH.UpdateProfile)
		protected.POST("/profile/avatar/", userH.UploadAvatar)
		protected.POST("/change-password/", authH.ChangePassword)
		protected.GET("/users/", userH.List)

		// 看板
		protected.POST("/boards/", boardH.Create)
		protected.PUT("/boards/:id/", boardH.Update)
		protected.PATCH("/boards/:id/", boardH.Update)
		protected.DELETE("/boards/:id/", boardH.Delete)
		protected.POST("/boards/:id/add_member/", boardH.AddMember)
		protected.POST("/boards/:id/remove_member/", boardH.RemoveMember)
		protected.POST("/boards/:id/join/", boardH.Join)
		protected.POST("/boards/:id/leave/", boardH.Leave)
		protected.POST("/boards/:id/update_member_role/", boardH.UpdateMemberRole)

		// 反馈
		protected.POST("/boards/:id/feedback/", feedbackH.Create)
		protected.PUT("/feedback/:id/", feedbackH.Update)
		protected.PATCH("/feedback/:id/", feedbackH.Update)
		protected.DELETE("/feedback/:id/", feedbackH.Delete)
		protected.POST("/feedback/:id/upvote/", feedbackH.Upvote)
		protected.DELETE("/feedback/:id/upvote/", feedbackH.RemoveUpvote)

		// 标签
		protected.GET("/tags/", feedbackH.ListTags)
		protected.POST("/tags/", feedbackH.CreateTag)
	}
}
