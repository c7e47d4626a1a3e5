package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/config"
	"clinic-scheduler/internal/grpcweb"
	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
	"clinic-scheduler/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:           "clinic-scheduler",
		Short:         "Medical appointment scheduling server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), adminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC server and the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			pool, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := store.New(pool).Migrate(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range applied {
				log.Info().Str("file", name).Msg("migration applied")
			}
			return nil
		},
	}
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			username = strings.TrimSpace(username)
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			a := &model.Admin{ID: uuid.NewString(), Username: username, PasswordHash: hash}
			if err := store.New(pool).CreateAdmin(cmd.Context(), a); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return fmt.Errorf("admin %q already exists", username)
				}
				return err
			}
			fmt.Println("admin created:", a.ID)
			return nil
		},
	}
	create.Flags().String("username", "", "Login name")
	create.Flags().String("password", "", "Initial password")

	cmd.AddCommand(create)
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return log.Level(level)
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pc.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns > 0 {
		pc.MinConns = cfg.DBMinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	st := store.New(pool)
	gate := auth.NewGate(cfg.JWTSecret, st, st, log)
	engine := scheduling.NewEngine(st, st, log)
	h := handler.New(handler.Services{
		Gate:          gate,
		Engine:        engine,
		Appointments:  scheduling.NewAppointments(engine, st, log),
		Search:        scheduling.NewSearch(st, log),
		Doctors:       scheduling.NewDoctors(st, log),
		Patients:      scheduling.NewPatients(st, log),
		Prescriptions: scheduling.NewPrescriptions(st, st, log),
		Dashboard:     scheduling.NewDashboard(st, st, log),
		Health:        st,
	}, log)

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()
	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Recovery(log),
			middleware.Logging(log),
			middleware.Timeout(cfg.RequestTimeout),
			middleware.RateLimit(rl),
			middleware.Auth(gate),
		),
	)
	rpc.RegisterClinicServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errc := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("grpc listening")
		errc <- srv.Serve(lis)
	}()

	// the gateway relays browser requests to the grpc server on loopback
	bridge, err := grpcweb.Dial("localhost:"+cfg.Port, cfg.CORSOrigins, log)
	if err != nil {
		srv.Stop()
		return err
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           bridge.Echo(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.WebPort).Msg("http gateway listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutting down")
	case err := <-errc:
		log.Error().Err(err).Msg("server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	srv.GracefulStop()
	return nil
}
