package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/AdilMir1433/User-Service/internal/account"
	"github.com/AdilMir1433/User-Service/internal/auth"
	"github.com/AdilMir1433/User-Service/internal/config"
	"github.com/AdilMir1433/User-Service/internal/db"
	usersgrpc "github.com/AdilMir1433/User-Service/internal/grpc"
	internalhttp "github.com/AdilMir1433/User-Service/internal/http"
	"github.com/AdilMir1433/User-Service/internal/mailer"
	"github.com/AdilMir1433/User-Service/internal/media"
	"github.com/AdilMir1433/User-Service/internal/report"
	"github.com/AdilMir1433/User-Service/internal/repository"
	"github.com/AdilMir1433/User-Service/internal/session"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("db schema failed: %v", err)
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		sessions = session.NewRedisStore(redisClient, "devxam:users:session:", cfg.SessionTTL)
	}
	// No identity survives a restart.
	if err := sessions.Reset(ctx); err != nil {
		log.Fatalf("session reset failed: %v", err)
	}

	host, closeMedia, err := media.New(ctx, cfg.Media)
	if err != nil {
		log.Fatalf("media host init failed: %v", err)
	}
	defer func() {
		if err := closeMedia(context.Background()); err != nil {
			log.Printf("media close error: %v", err)
		}
	}()

	store := repository.NewStore(pool)
	codec := auth.NewCodec(cfg.JWTSecret)
	reports := report.NewService(store)
	flow := account.NewFlow(codec, store, sessions, mailer.New(cfg.SMTP), host)
	server := internalhttp.NewServer(cfg, flow, reports, store, auth.NewGate(codec, store, sessions))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("users http listening on %s (issuer %s)", cfg.HTTPAddr, cfg.JWTIssuer)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.ServiceAuthToken == "" {
		log.Printf("users grpc disabled; SERVICE_AUTH_TOKEN not set")
	} else {
		serviceAuthInterceptor, err := usersgrpc.NewServiceAuthUnaryInterceptor(cfg.ServiceAuthToken)
		if err != nil {
			log.Fatalf("grpc service auth init failed: %v", err)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(serviceAuthInterceptor))
		usersgrpc.RegisterUsersQueryServer(grpcServer, usersgrpc.NewUsersServer(store, reports))

		go func() {
			listener, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				log.Fatalf("grpc listen error: %v", err)
			}
			log.Printf("users grpc listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(listener); err != nil {
				log.Fatalf("grpc server error: %v", err)
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
