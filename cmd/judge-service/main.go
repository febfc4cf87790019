package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examjudge/internal/common/cache"
	"examjudge/internal/common/db"
	commonmw "examjudge/internal/common/http/middleware"
	"examjudge/internal/common/mq"
	"examjudge/internal/common/storage"
	judgecontroller "examjudge/internal/judge/controller"
	"examjudge/internal/judge/language"
	"examjudge/internal/judge/repository"
	"examjudge/internal/judge/sandbox"
	"examjudge/internal/judge/security"
	"examjudge/internal/judge/service"
	"examjudge/internal/plagiarism"
	plagiarismcontroller "examjudge/internal/plagiarism/controller"
	"examjudge/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/judge_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	mysqlDB, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mysqlDB.Close()
	}()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	objStorage, err := storage.NewMinIOStorage(appCfg.MinIO)
	if err != nil {
		logger.Error(context.Background(), "init minio failed", zap.Error(err))
		return
	}
	if err := objStorage.EnsureBucket(context.Background(), appCfg.Archive.Bucket); err != nil {
		logger.Error(context.Background(), "ensure archive bucket failed", zap.Error(err))
		return
	}

	producer, err := mq.NewKafkaProducer(appCfg.Kafka.toMQConfig())
	if err != nil {
		logger.Error(context.Background(), "init kafka producer failed", zap.Error(err))
		return
	}
	defer func() {
		_ = producer.Close()
	}()

	registry := language.NewRegistry(appCfg.Language.Languages)
	validator := security.NewValidator(security.DefaultPatterns())

	executor, err := sandbox.NewProcessExecutor(appCfg.Sandbox)
	if err != nil {
		logger.Error(context.Background(), "init sandbox executor failed", zap.Error(err))
		return
	}

	judge, err := service.NewJudge(registry, executor)
	if err != nil {
		logger.Error(context.Background(), "init judge failed", zap.Error(err))
		return
	}

	archiver, err := service.NewSourceArchiver(objStorage, appCfg.Archive.Bucket)
	if err != nil {
		logger.Error(context.Background(), "init source archiver failed", zap.Error(err))
		return
	}

	questionRepo := repository.NewQuestionRepository(mysqlDB, redisCache)
	submissionRepo := repository.NewSubmissionRepository(mysqlDB)
	statusRepo := repository.NewStatusRepository(redisCache, appCfg.Status.TTL)
	verdictPublisher := repository.NewMQVerdictEventPublisher(producer, appCfg.Status.VerdictTopic)

	submissionSvc, err := service.NewSubmissionService(service.SubmissionServiceConfig{
		Validator:   validator,
		Judge:       judge,
		Questions:   questionRepo,
		Submissions: submissionRepo,
		Status:      statusRepo,
		Events:      verdictPublisher,
		Archiver:    archiver,
	})
	if err != nil {
		logger.Error(context.Background(), "init submission service failed", zap.Error(err))
		return
	}

	questionSvc, err := service.NewQuestionService(questionRepo)
	if err != nil {
		logger.Error(context.Background(), "init question service failed", zap.Error(err))
		return
	}

	plagiarismSvc, err := plagiarism.NewService(plagiarism.ServiceConfig{
		Detector:    plagiarism.NewDetector(appCfg.Plagiarism.Workers),
		Submissions: submissionRepo,
		Producer:    producer,
		Topic:       appCfg.Plagiarism.FlaggedTopic,
		Threshold:   appCfg.Plagiarism.Threshold,
	})
	if err != nil {
		logger.Error(context.Background(), "init plagiarism service failed", zap.Error(err))
		return
	}

	httpServer := buildHTTPServer(appCfg, submissionSvc, questionSvc, plagiarismSvc)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "judge http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(appCfg *AppConfig, submissionSvc *service.SubmissionService, questionSvc *service.QuestionService, plagiarismSvc *plagiarism.Service) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	codingController := judgecontroller.NewCodingController(submissionSvc)
	questionController := judgecontroller.NewQuestionController(questionSvc)
	plagiarismController := plagiarismcontroller.NewPlagiarismController(plagiarismSvc)

	authed := router.Group("/api/coding", commonmw.AuthMiddleware(appCfg.JWT))
	authed.POST("/run", codingController.Run)
	authed.POST("/submit", codingController.Submit)
	authed.GET("/questions/:id", questionController.Get)
	authed.GET("/questions/:id/my-submissions", codingController.GetMySubmissions)
	authed.GET("/submissions/:id/status", codingController.GetStatus)
	authed.GET("/exams/:examId/questions", questionController.ListByExam)

	admin := router.Group("/api/coding", commonmw.AuthMiddleware(appCfg.JWT, "admin"))
	admin.POST("/questions", questionController.Create)
	admin.PUT("/questions/:id", questionController.Update)
	admin.DELETE("/questions/:id", questionController.Delete)
	admin.GET("/questions/:id/submissions", codingController.GetQuestionSubmissions)

	plag := router.Group("/api/plagiarism", commonmw.AuthMiddleware(appCfg.JWT, "admin"))
	plag.POST("/detect/:id", plagiarismController.Detect)
	plag.POST("/compare", plagiarismController.Compare)

	return &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
		IdleTimeout:  appCfg.Server.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
