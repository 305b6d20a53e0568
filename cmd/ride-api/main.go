// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ridebooking/internal/config"
	httptransport "ridebooking/internal/http"
	"ridebooking/internal/infra"
	"ridebooking/internal/logging"
	"ridebooking/internal/maps"
	"ridebooking/internal/modules/account"
	"ridebooking/internal/modules/dispatch"
	"ridebooking/internal/modules/driver"
	"ridebooking/internal/modules/pricing"
	"ridebooking/internal/modules/ride"
	"ridebooking/internal/notify"
	"ridebooking/internal/payments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stores fall back to in-memory backends when no DSN is configured,
	// which keeps local runs dependency-free
	var (
		rideStore    ride.Store    = ride.NewMemoryStore()
		driverStore  driver.Store  = driver.NewMemoryStore()
		userStore    account.Store = account.NewMemoryStore()
		pricingStore *pricing.Store
	)
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		rideStore = ride.NewPGStore(dbPool)
		driverStore = driver.NewPGStore(dbPool)
		userStore = account.NewPGStore(dbPool)
		pricingStore = pricing.NewStore(dbPool)
	}

	var geoIndex driver.GeoIndex
	if cfg.Redis.Addr != "" {
		geoIndex = driver.NewRedisGeoIndex(infra.NewRedis(cfg.Redis.Addr))
	}

	registry := driver.NewRegistry(driverStore, geoIndex, logger)
	pricingSvc := pricing.NewService(pricingStore)

	var gateway ride.PaymentGateway
	if cfg.Stripe.Key != "" {
		gateway = payments.NewStripeGateway(cfg.Stripe.Key, cfg.Stripe.Currency)
	}
	rideSvc := ride.NewService(rideStore, registry, pricingSvc, gateway, logger)

	sessions := notify.NewWSRegistry()
	sinks := notify.Multi{sessions}
	if cfg.FCM.Key != "" {
		sinks = append(sinks, notify.NewFCMClient(cfg.FCM.Endpoint, cfg.FCM.Key))
	}
	dispatcher := dispatch.NewService(rideSvc, registry, userStore, sinks, cfg.Dispatch.RadiusKm, logger)

	var routeSvc *maps.RouteService
	if cfg.Maps.APIKey != "" {
		routeSvc, err = maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Dispatch: dispatcher,
		Rides:    rideSvc,
		Registry: registry,
		Pricing:  pricingSvc,
		Users:    userStore,
		Sessions: sessions,
		Routes:   routeSvc,
		Log:      logger,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Fatal(err)
		}
	}
}
