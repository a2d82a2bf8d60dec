package main

import (
	"net/http"
	"os"
	"time"

	"vaccine-planner/internal/adapters/auth/introspect"
	"vaccine-planner/internal/adapters/capabilities/features"
	"vaccine-planner/internal/platform/logger"
	"vaccine-planner/internal/ports/auth"
	"vaccine-planner/internal/ports/capabilities"
	"vaccine-planner/internal/router"
)

// @title Vaccine Planner API
// @version 1.0
// @description Planificador de citas de vacunación: catálogo, perfiles con historial y delegación de acceso.
// @BasePath /
func main() {
	log := logger.Component(logger.NewFromEnv(), "api")

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Auth: con AUTH_INTROSPECT_URL + AUTH_INTROSPECT_API_KEY se valida
	// contra el identity provider; sin eso, modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_INTROSPECT_URL"); baseURL != "" {
		client, err := introspect.NewClient(introspect.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_INTROSPECT_API_KEY"),
		})
		if err != nil {
			log.Error("invalid auth introspection config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = introspect.NewVerifier(client)
		log.Info("token introspection enabled", map[string]any{"base_url": baseURL})
	} else {
		log.Warn("no auth verifier configured, running in dev mode", nil)
	}

	// Capabilities por plan (profiles:multi). Sin config el gate queda apagado.
	var caps capabilities.Resolver
	if baseURL := os.Getenv("FEATURES_URL"); baseURL != "" {
		client, err := features.NewClient(features.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("FEATURES_API_KEY"),
		})
		if err != nil {
			log.Error("invalid features config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		caps = features.NewResolver(client)
		log.Info("plan capabilities enabled", map[string]any{"base_url": baseURL})
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Capabilities: caps,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
