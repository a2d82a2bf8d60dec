package router

import (
	"database/sql"
	"net/http"
	"os"

	_ "vaccine-planner/docs"
	mem "vaccine-planner/internal/adapters/storage/memory"
	pg "vaccine-planner/internal/adapters/storage/postgres"
	"vaccine-planner/internal/domain/profiles"
	"vaccine-planner/internal/domain/sharing"
	"vaccine-planner/internal/domain/vaccines"
	"vaccine-planner/internal/middleware"
	"vaccine-planner/internal/platform/logger"
	"vaccine-planner/internal/ports/auth"
	"vaccine-planner/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: gate de capabilities por plan. Nil desactiva el gate.
	Capabilities capabilities.Resolver

	// Opcional: logger de requests. Nil lo desactiva (tests).
	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Log != nil {
		r.Use(middleware.RequestLog(logger.Component(opts.Log, "http")))
	}
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		profileRepo profiles.Repository
		grantsRepo  sharing.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		profileRepo = pg.NewProfilesRepo(db)
		grantsRepo = pg.NewSharingRepo(db)
	} else {
		profileRepo = mem.NewProfileRepo()
		grantsRepo = mem.NewSharingRepo()
	}

	// Services por módulo
	profilesSvc := profiles.NewService(profileRepo)
	grantsSvc := sharing.NewService(grantsRepo)

	// Rutas por módulo
	vaccines.RegisterRoutes(r)
	profiles.RegisterRoutes(r, profilesSvc, grantsSvc, opts.Capabilities)
	sharing.RegisterRoutes(r, grantsSvc, profilesSvc)

	return r
}
