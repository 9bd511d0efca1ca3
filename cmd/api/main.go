package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/jhoicas/reservas-api/docs"
	"github.com/jhoicas/reservas-api/internal/application/auth"
	appinv "github.com/jhoicas/reservas-api/internal/application/inventory"
	"github.com/jhoicas/reservas-api/internal/application/usecase"
	"github.com/jhoicas/reservas-api/internal/domain/inventory"
	"github.com/jhoicas/reservas-api/internal/domain/repository"
	"github.com/jhoicas/reservas-api/internal/infrastructure/discovery"
	"github.com/jhoicas/reservas-api/internal/infrastructure/memory"
	"github.com/jhoicas/reservas-api/internal/infrastructure/messaging"
	"github.com/jhoicas/reservas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/reservas-api/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/reservas-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/reservas-api/internal/interfaces/http"
	"github.com/jhoicas/reservas-api/pkg/config"
	"github.com/jhoicas/reservas-api/pkg/logger"
)

// @title                       Reservas API
// @version                     1.0
// @description                 Reservas de stock sobre contenedores, Bodega y Zona Franca.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	level := cfg.App.LogLevel
	if level == "" {
		level = "info"
		if cfg.App.Env == "development" {
			level = "debug"
		}
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("db", cfg.DB.Enabled).
		Bool("kafka", cfg.Kafka.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Postgres es opcional: sin BD el motor vive solo en memoria y no hay login.
	var (
		pool        *pgxpool.Pool
		txRunner    appinv.TxRunner
		productRepo repository.ProductRepository = memory.NewProductRepository()
		authUC      *auth.AuthUseCase
		userUC      *usecase.UserUseCase
	)
	if cfg.DB.Enabled {
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool, migrations.FS, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
		productRepo = postgres.NewProductRepository(pool)
		userRepo := postgres.NewUserRepository(pool)
		authUC = auth.NewAuthUseCase(userRepo, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
		userUC = usecase.NewUserUseCase(userRepo)
	}

	var publisher appinv.EventPublisher = messaging.NewNoopPublisher(log)
	if cfg.Kafka.Enabled() {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en kafka")
	}

	engine := inventory.NewEngine()
	inventorySvc := appinv.NewService(engine, txRunner, publisher, log, inventory.Selection(cfg.Inventory.TransferSelection))
	if err := inventorySvc.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("cargar estado de inventario")
	}
	workflow := appinv.NewValidationWorkflow(inventorySvc)

	var expiry *scheduler.ExpiryScheduler
	if cfg.Inventory.ExpireSchedule != "" {
		expiry, err = scheduler.NewExpiryScheduler(inventorySvc, cfg.Inventory.ExpireSchedule, log)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler de vencimiento")
		}
		expiry.Start()
	}
	productUC := usecase.NewProductUseCase(productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reservas API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory:   inventorySvc,
		Workflow:    workflow,
		ProductUC:   productUC,
		AuthUC:      authUC,
		UserUC:      userUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	var consul *discovery.ConsulClient
	if cfg.Consul.Addr != "" {
		consul, err = discovery.NewConsulClient(cfg.Consul.Addr)
		if err == nil {
			err = consul.Register(discovery.Registration{
				ServiceID: cfg.Consul.ServiceID,
				Name:      cfg.App.Name,
				Port:      cfg.HTTP.Port,
				Tags:      []string{"reservas", cfg.App.Env},
			})
		}
		if err != nil {
			log.Error().Err(err).Str("consul", cfg.Consul.Addr).Msg("registro en consul")
			consul = nil
		} else {
			log.Info().Str("service_id", cfg.Consul.ServiceID).Msg("registrado en consul")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if consul != nil {
		if err := consul.Deregister(cfg.Consul.ServiceID); err != nil {
			log.Error().Err(err).Msg("baja en consul")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if expiry != nil {
		expiry.Stop(shutdownCtx)
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar publicador de eventos")
	}
	if pool != nil {
		pool.Close()
	}

	log.Info().Msg("aplicación detenida")
}
