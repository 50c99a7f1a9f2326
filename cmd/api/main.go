package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/summachat/backend/internal/config"
	"github.com/zhouzirui/summachat/backend/internal/handler"
	"github.com/zhouzirui/summachat/backend/internal/logging"
	"github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/internal/service/summarizer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Warnf("failed to load .env file: %v", err)
		log.Info("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.Init(cfg.Log)

	// 摘要模型只在第一次请求时构建，之后整个进程共享
	gateway := summarizer.Lazy(func() (summarizer.Summarizer, error) {
		return summarizer.New(ctx, cfg.Gateway)
	})
	if cfg.Gateway.Provider == config.ProviderExtractive {
		log.Info("未配置模型凭证，使用本地抽取式摘要")
	} else {
		log.Infof("summarizer provider=%s", cfg.Gateway.Provider)
	}

	chatService := chat.NewService(gateway, chat.Config{
		Params:     cfg.Generation,
		Timeout:    cfg.Gateway.Timeout,
		SessionTTL: cfg.Session.TTL,
	})
	go chatService.RunJanitor(ctx)

	router := handler.NewRouter(chatService, logger)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infof("Summarization chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
