package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	authhandler "tasktracker/internal/api/auth"
	"tasktracker/internal/api/middleware"
	"tasktracker/internal/auth"
	"tasktracker/internal/config"
	"tasktracker/internal/model"
	"tasktracker/internal/pkg/metrics"
	"tasktracker/internal/pkg/ratelimit"
	"tasktracker/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、核心服务以及 Gin 路由引擎。
// 每个请求独立走一次存储往返，Server 本身不保存会话状态。
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	rdb       *redis.Client
	router    *gin.Engine
	auth      *authhandler.Handler
	taskStore task.Store
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis（登录限流）
// 3. 装配核心服务与 Gin 路由引擎
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	credentials := auth.NewService(auth.NewUserStore(db), auth.Argon2Hasher{}, logger)
	limiter := ratelimit.NewSignInLimiter(rdb, logger, "",
		cfg.Security.SignInRateLimit, cfg.Security.SignInRateBurst)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:    cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
		router: r,
		auth: authhandler.NewHandler(credentials, limiter,
			cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger),
		taskStore: task.NewStore(db),
	}
	s.registerRoutes()
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/auth/signup", s.auth.SignUp)
	s.router.POST("/auth/signin", s.auth.SignIn)

	authed := s.router.Group("/")
	authed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret))
	authed.POST("/tasks", s.handleCreateTask)
	authed.GET("/tasks", s.handleListTasks)
	authed.GET("/tasks/:id", s.handleGetTask)
	authed.PATCH("/tasks/:id/status", s.handleUpdateTaskStatus)
	authed.DELETE("/tasks/:id", s.handleDeleteTask)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createTaskRequest 创建任务的请求参数。
// 不接受状态字段：新任务一律从 OPEN 开始。
type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// taskResponse 任务的对外投影，不含哈希等内部字段。
type taskResponse struct {
	ID          uint             `json:"id"`
	UserID      uint             `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      model.TaskStatus `json:"status"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
}

// handleCreateTask 创建任务。
//
// POST /tasks
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.UserID(c)

	t, err := s.taskStore.Create(c.Request.Context(), req.Title, req.Description, userID)
	if err != nil {
		s.taskError(c, "create task", err)
		return
	}

	metrics.TasksCreatedTotal.Inc()
	c.JSON(http.StatusCreated, toTaskResponse(t))
}

// handleListTasks 返回当前用户的任务列表，支持 status 与 search 过滤。
//
// GET /tasks?status=done&search=milk
func (s *Server) handleListTasks(c *gin.Context) {
	userID := middleware.UserID(c)

	filter, err := task.ParseFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := s.taskStore.List(c.Request.Context(), filter, userID)
	if err != nil {
		s.taskError(c, "list tasks", err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks)) // 空列表序列化为 [] 而不是 null
	for i := range tasks {
		resp = append(resp, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetTask 返回单个任务。
//
// GET /tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	t, err := s.taskStore.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		s.taskError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// handleUpdateTaskStatus 更新任务状态。
//
// PATCH /tasks/:id/status
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := task.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := s.taskStore.UpdateStatus(c.Request.Context(), id, status, userID)
	if err != nil {
		s.taskError(c, "update task status", err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// handleDeleteTask 删除任务。
//
// DELETE /tasks/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	if err := s.taskStore.Delete(c.Request.Context(), id, userID); err != nil {
		s.taskError(c, "delete task", err)
		return
	}

	metrics.TasksDeletedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// parseTaskID 解析路径里的任务 ID，非法时直接写出 400。
func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

// taskError 把任务存储的错误族映射到 HTTP 状态码。
// 归属他人的任务和不存在的任务同样映射为 404。
func (s *Server) taskError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrEmptySearch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error(op+" failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
