package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/calcbuilder/adminstack/api"
	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/internal/cron"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/services"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, adminDB *gorm.DB) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	podName := ""
	if cfg.AppConfig != nil {
		podName = cfg.AppConfig.PodName
	}
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger, podName)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(adminDB)

	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		return nil, err
	}

	cronManager := cron.NewCronManager(cfg, appLogger, kubernetesClient(appLogger), svcs.DomainVerificationService, svcs.TeamService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cronManager,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppConfig.APIPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// kubernetesClient returns nil outside a cluster, which puts the cron manager in local mode.
func kubernetesClient(log logger.Logger) kubernetes.Interface {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		log.Infof("Not running in kubernetes: %v", err)
		return nil
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		log.Warnf("Unable to create kubernetes client: %v", err)
		return nil
	}
	return client
}

func (s *Server) Initialize() {
	api.RegisterRoutes(s.router, s.services, s.config.AppConfig.APIKey)
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(fmt.Sprintf("panic.%s", name))
		defer span.Finish()

		ext.Error.Set(span, true)
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.log.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	s.Initialize()

	s.wrapGoroutine("cron_manager", func() {
		if err := s.cronManager.Start(s.config.AppConfig.PodName, s.config.AppConfig.PodNamespace); err != nil {
			s.log.Errorf("Cron manager error: %v", err)
		}
	})

	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("HTTP server error: %v", err)
		}
	})
	s.log.Info("Admin stack is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

// ExpireNow runs both expiry sweeps once, outside the cron schedule.
func (s *Server) ExpireNow(ctx context.Context) error {
	ctx = utils.WithCustomContext(ctx, &utils.CustomContext{AppSource: "adminstack-cli"})

	verifications, err := s.services.DomainVerificationService.ExpireStaleVerifications(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to expire verifications")
	}
	invitations, err := s.services.TeamService.ExpireStaleInvitations(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to expire invitations")
	}

	s.log.Infof("Expired %d verifications and %d invitations", verifications, invitations)
	return nil
}

// Close releases the broker connection and flushes traces.
func (s *Server) Close() {
	if s.services.EventsService != nil {
		if err := s.services.EventsService.Close(); err != nil {
			s.log.Warnf("Events service close error: %v", err)
		}
	}
	if s.tracerCloser != nil {
		if err := s.tracerCloser.Close(); err != nil {
			s.log.Warnf("Tracer close error: %v", err)
		}
	}
	_ = s.log.Sync()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	s.log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.log.Info("HTTP server shut down successfully")
	}

	stopDone := make(chan struct{})
	go s.wrapGoroutine("cron_shutdown", func() {
		defer close(stopDone)
		s.cronManager.Stop()
	})

	select {
	case <-stopDone:
		s.log.Info("Cron manager stopped gracefully")
	case <-shutdownCtx.Done():
		s.log.Warn("Cron manager stop timed out, forcing exit")
	}

	s.Close()
	return nil
}
