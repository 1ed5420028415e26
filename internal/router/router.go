package router

import (
	"time"

	"smp/internal/database"
	"smp/internal/handlers"
	"smp/internal/middleware"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {
	db := database.GetDB()
	notifyQueue := database.GetRedisQueue()

	userService := services.NewUserService(db)
	roleService := services.NewRoleService(db)
	tenantService := services.NewTenantService(db)
	providerService := services.NewProviderService(db)
	studentService := services.NewStudentService(db)
	classService := services.NewClassService(db)
	subjectService := services.NewSubjectService(db)
	classSubjectService := services.NewClassSubjectService(db)
	gradeService := services.NewGradeService(db)
	calcService := services.NewGradeCalcService(db)
	gradeTypeService := services.NewGradeTypeService(db)
	scaleService := services.NewGradingScaleService(db)
	termService := services.NewTermService(db)
	attendanceService := services.NewAttendanceService(db)
	feeService := services.NewFeeService(db)
	behaviorService := services.NewBehaviorService(db)
	notificationService := services.NewNotificationService(db, notifyQueue)
	termReportService := services.NewTermReportService(db)
	auditService := services.NewAuditService(db)

	api := router.Group("/api")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 租户用户认证
		authHandler := handlers.NewAuthHandler(userService)
		userHandler := handlers.NewUserHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", middleware.RequireLogin(), authHandler.Me)
			authGroup.POST("/change-password", middleware.RequireLogin(), authHandler.ChangePassword)
			// 注册走与管理端相同的创建逻辑，仅限持有users.create权限的用户
			authGroup.POST("/register", middleware.RequireLogin(), middleware.RequirePermission("users.create"), userHandler.Create)
		}

		// 运营方认证
		providerAuthHandler := handlers.NewProviderAuthHandler(providerService)
		providerAuthGroup := api.Group("/provider-auth")
		{
			providerAuthGroup.POST("/login", providerAuthHandler.Login)
			// signup与register均为首次部署引导入口，受x-setup-secret头保护
			providerAuthGroup.POST("/signup", providerAuthHandler.Bootstrap)
			providerAuthGroup.POST("/register", providerAuthHandler.Bootstrap)
			providerAuthGroup.GET("/me", middleware.RequireProviderLogin(), providerAuthHandler.Me)
		}

		// 运营方租户管理
		providerTenantHandler := handlers.NewProviderTenantHandler(tenantService, userService, roleService)
		providerGroup := api.Group("/provider", middleware.RequireProviderLogin())
		{
			tenants := providerGroup.Group("/tenants")
			{
				tenants.POST("", middleware.RequireProviderPermission(models.ProviderPermTenantCreate), providerTenantHandler.Create)
				tenants.GET("", middleware.RequireProviderPermission(models.ProviderPermTenantRead), providerTenantHandler.List)
				tenants.GET("/:id", middleware.RequireProviderPermission(models.ProviderPermTenantRead), providerTenantHandler.Get)
				tenants.PUT("/:id", middleware.RequireProviderPermission(models.ProviderPermTenantUpdate), providerTenantHandler.Update)
				tenants.PUT("/:id/status", middleware.RequireProviderPermission(models.ProviderPermTenantUpdate), providerTenantHandler.UpdateStatus)
				tenants.DELETE("/:id", middleware.RequireProviderPermission(models.ProviderPermTenantDelete), providerTenantHandler.Delete)
				tenants.GET("/:id/metrics", middleware.RequireProviderPermission(models.ProviderPermTenantMetrics), providerTenantHandler.Metrics)

				tenants.GET("/:id/users", middleware.RequireProviderPermission(models.ProviderPermManageUsers), providerTenantHandler.ListUsers)
				tenants.POST("/:id/users", middleware.RequireProviderPermission(models.ProviderPermManageUsers), providerTenantHandler.CreateUser)
				tenants.PATCH("/:id/users/:userId/status", middleware.RequireProviderPermission(models.ProviderPermManageUsers), providerTenantHandler.UpdateUserStatus)
				tenants.POST("/:id/users/:userId/reset-password", middleware.RequireProviderPermission(models.ProviderPermManageUsers), providerTenantHandler.ResetUserPassword)
				tenants.POST("/:id/admin/reset-password", middleware.RequireProviderPermission(models.ProviderPermManageUsers), providerTenantHandler.ResetAdminPassword)

				tenants.GET("/:id/roles", middleware.RequireProviderPermission(models.ProviderPermManageRoles), providerTenantHandler.ListRoles)
				tenants.PUT("/:id/roles/:roleId", middleware.RequireProviderPermission(models.ProviderPermManageRoles), providerTenantHandler.UpdateRolePermissions)
			}
		}

		// 租户门户：统一登录守卫，逐路由挂权限守卫
		portal := api.Group("/portal", middleware.RequireLogin())
		{
			users := portal.Group("/users")
			{
				users.POST("", middleware.RequirePermission("users.create"), userHandler.Create)
				users.GET("", middleware.RequirePermission("users.read"), userHandler.List)
				users.GET("/:id", middleware.RequirePermission("users.read"), userHandler.Get)
				users.PUT("/:id", middleware.RequirePermission("users.update"), userHandler.Update)
				users.PATCH("/:id/status", middleware.RequirePermission("users.update"), userHandler.UpdateStatus)
				users.PUT("/:id/roles", middleware.RequirePermission("users.update", "roles.update"), userHandler.AssignRoles)
				users.DELETE("/:id", middleware.RequirePermission("users.delete"), userHandler.Delete)
			}

			roleHandler := handlers.NewRoleHandler(roleService)
			roles := portal.Group("/roles")
			{
				roles.POST("", middleware.RequirePermission("roles.create"), roleHandler.Create)
				roles.GET("", middleware.RequirePermission("roles.read"), roleHandler.List)
				roles.GET("/:id", middleware.RequirePermission("roles.read"), roleHandler.Get)
				roles.PUT("/:id", middleware.RequirePermission("roles.update"), roleHandler.Update)
				roles.DELETE("/:id", middleware.RequirePermission("roles.delete"), roleHandler.Delete)
			}
			// 权限码全集单独挂载，避免与/roles/:id路径冲突
			portal.GET("/permissions", middleware.RequirePermission("roles.read"), roleHandler.Permissions)

			studentHandler := handlers.NewStudentHandler(studentService)
			students := portal.Group("/students")
			{
				students.POST("", middleware.RequirePermission("students.create"), studentHandler.Create)
				students.GET("", middleware.RequirePermission("students.read"), studentHandler.List)
				students.GET("/:id", middleware.RequirePermission("students.read"), studentHandler.Get)
				students.PUT("/:id", middleware.RequirePermission("students.update"), studentHandler.Update)
				students.PATCH("/:id/status", middleware.RequirePermission("students.update"), studentHandler.UpdateStatus)
				students.DELETE("/:id", middleware.RequirePermission("students.delete"), studentHandler.Delete)
			}

			classHandler := handlers.NewClassHandler(classService)
			classes := portal.Group("/classes")
			{
				classes.POST("", middleware.RequirePermission("classes.create"), classHandler.Create)
				classes.GET("", middleware.RequirePermission("classes.read"), classHandler.List)
				classes.GET("/:id", middleware.RequirePermission("classes.read"), classHandler.Get)
				classes.GET("/:id/students", middleware.RequirePermission("classes.read", "students.read"), classHandler.Students)
				classes.PUT("/:id", middleware.RequirePermission("classes.update"), classHandler.Update)
				classes.DELETE("/:id", middleware.RequirePermission("classes.delete"), classHandler.Delete)
			}

			subjectHandler := handlers.NewSubjectHandler(subjectService)
			subjects := portal.Group("/subjects")
			{
				subjects.POST("", middleware.RequirePermission("subjects.create"), subjectHandler.Create)
				subjects.GET("", middleware.RequirePermission("subjects.read"), subjectHandler.List)
				subjects.GET("/:id", middleware.RequirePermission("subjects.read"), subjectHandler.Get)
				subjects.PUT("/:id", middleware.RequirePermission("subjects.update"), subjectHandler.Update)
				subjects.DELETE("/:id", middleware.RequirePermission("subjects.delete"), subjectHandler.Delete)
			}

			classSubjectHandler := handlers.NewClassSubjectHandler(classSubjectService, subjectService)
			classSubjects := portal.Group("/class-subjects")
			{
				classSubjects.POST("", middleware.RequirePermission("class_subjects.create"), classSubjectHandler.Create)
				classSubjects.GET("", middleware.RequirePermission("class_subjects.read"), classSubjectHandler.List)
				classSubjects.PATCH("/:id/teacher", middleware.RequirePermission("class_subjects.update"), classSubjectHandler.UpdateTeacher)
				classSubjects.DELETE("/:id", middleware.RequirePermission("class_subjects.delete"), classSubjectHandler.Delete)
			}

			// 教师本人视图
			my := portal.Group("/my")
			{
				my.GET("/assignments", classSubjectHandler.MyAssignments)
				my.GET("/subjects", classSubjectHandler.MySubjects)
			}

			gradeHandler := handlers.NewGradeHandler(gradeService)
			grades := portal.Group("/grades")
			{
				grades.POST("", middleware.RequirePermission("grades.create"), gradeHandler.Create)
				grades.GET("", middleware.RequirePermission("grades.read"), gradeHandler.List)
				grades.GET("/:id", middleware.RequirePermission("grades.read"), gradeHandler.Get)
				grades.PUT("/:id", middleware.RequirePermission("grades.update"), gradeHandler.Update)
				grades.PATCH("/:id/publish", middleware.RequirePermission("grades.update"), gradeHandler.Publish)
				grades.POST("/publish-batch", middleware.RequirePermission("grades.update"), gradeHandler.PublishBatch)
				grades.DELETE("/:id", middleware.RequirePermission("grades.delete"), gradeHandler.Delete)
			}

			reportHandler := handlers.NewReportHandler(calcService, classSubjectService, userService, studentService)
			reports := portal.Group("/reports", middleware.RequirePermission("reports.read"))
			{
				reports.GET("/students/:studentId/subjects/:subjectId/average", reportHandler.StudentSubjectAverage)
				reports.GET("/students/:studentId/summary", reportHandler.StudentSummary)
				reports.GET("/classes/:classId/subjects/:subjectId/stats", reportHandler.ClassSubjectStats)
			}

			gradeTypeHandler := handlers.NewGradeTypeHandler(gradeTypeService)
			gradeTypes := portal.Group("/grade-types")
			{
				gradeTypes.GET("", middleware.RequirePermission("grade_types.read"), gradeTypeHandler.List)
				gradeTypes.POST("", middleware.RequirePermission("grade_types.create"), gradeTypeHandler.Create)
				gradeTypes.PUT("/:id", middleware.RequirePermission("grade_types.update"), gradeTypeHandler.Update)
				gradeTypes.DELETE("/:id", middleware.RequirePermission("grade_types.delete"), gradeTypeHandler.Delete)
			}

			scaleHandler := handlers.NewGradingScaleHandler(scaleService)
			scale := portal.Group("/grading-scale")
			{
				scale.GET("", middleware.RequirePermission("grading_scale.read"), scaleHandler.Get)
				scale.PUT("", middleware.RequirePermission("grading_scale.update"), scaleHandler.Update)
			}

			termHandler := handlers.NewTermHandler(termService)
			terms := portal.Group("/terms")
			{
				terms.POST("", middleware.RequirePermission("terms.create"), termHandler.Create)
				terms.GET("", middleware.RequirePermission("terms.read"), termHandler.List)
				terms.GET("/current", middleware.RequirePermission("terms.read"), termHandler.Current)
				terms.PUT("/:id", middleware.RequirePermission("terms.update"), termHandler.Update)
				terms.PATCH("/:id/set-current", middleware.RequirePermission("terms.update"), termHandler.SetCurrent)
				terms.DELETE("/:id", middleware.RequirePermission("terms.delete"), termHandler.Delete)
			}

			attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
			attendance := portal.Group("/attendance")
			{
				attendance.POST("", middleware.RequirePermission("attendance.create"), attendanceHandler.RecordBatch)
				attendance.GET("", middleware.RequirePermission("attendance.read"), attendanceHandler.List)
				attendance.GET("/students/:studentId/summary", middleware.RequirePermission("attendance.read"), attendanceHandler.StudentSummary)
			}

			feeHandler := handlers.NewFeeHandler(feeService)
			fees := portal.Group("/fees")
			{
				fees.POST("", middleware.RequirePermission("fees.create"), feeHandler.Create)
				fees.GET("", middleware.RequirePermission("fees.read"), feeHandler.List)
				fees.GET("/:id", middleware.RequirePermission("fees.read"), feeHandler.Get)
				fees.POST("/:id/payments", middleware.RequirePermission("payments.create"), feeHandler.RecordPayment)
				fees.GET("/:id/payments", middleware.RequirePermission("payments.read"), feeHandler.ListPayments)
				fees.DELETE("/:id", middleware.RequirePermission("fees.delete"), feeHandler.Delete)
			}

			behaviorHandler := handlers.NewBehaviorHandler(behaviorService)
			behavior := portal.Group("/behavior-records")
			{
				behavior.POST("", middleware.RequirePermission("behavior_records.create"), behaviorHandler.Create)
				behavior.GET("/students/:studentId", middleware.RequirePermission("behavior_records.read"), behaviorHandler.ListByStudent)
				behavior.DELETE("/:id", middleware.RequirePermission("behavior_records.delete"), behaviorHandler.Delete)
			}

			notificationHandler := handlers.NewNotificationHandler(notificationService, notifyQueue)
			notifications := portal.Group("/notifications")
			{
				notifications.POST("", middleware.RequirePermission("notifications.create"), notificationHandler.Create)
				notifications.GET("", middleware.RequirePermission("notifications.read"), notificationHandler.List)
				notifications.GET("/unread-count", middleware.RequirePermission("notifications.read"), notificationHandler.UnreadCount)
				notifications.GET("/stream", middleware.RequirePermission("notifications.read"), notificationHandler.Stream)
				notifications.PATCH("/:id/read", middleware.RequirePermission("notifications.read"), notificationHandler.MarkRead)
				notifications.POST("/read-all", middleware.RequirePermission("notifications.read"), notificationHandler.MarkAllRead)
			}

			termReportHandler := handlers.NewTermReportHandler(termReportService)
			termReports := portal.Group("/term-reports")
			{
				termReports.POST("/generate", middleware.RequirePermission("term_reports.create"), termReportHandler.Generate)
				termReports.GET("/classes/:classId/terms/:termId", middleware.RequirePermission("term_reports.read"), termReportHandler.ListByClass)
				termReports.GET("/students/:studentId/terms/:termId", middleware.RequirePermission("term_reports.read"), termReportHandler.GetByStudent)
				termReports.PATCH("/:id/remarks", middleware.RequirePermission("term_reports.update"), termReportHandler.UpdateRemarks)
			}

			auditHandler := handlers.NewAuditHandler(auditService)
			portal.GET("/audit-logs", middleware.RequirePermission("audit_logs.read"), auditHandler.List)
		}
	}
}

func healthCheck(c *gin.Context) {
	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		response.Error(c, 500, "数据库连接异常")
		return
	}
	response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func ping(c *gin.Context) {
	response.Success(c, gin.H{"message": "pong"})
}
