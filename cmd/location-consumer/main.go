// README: Kafka consumer feeding streamed driver location updates into the
// registry; runs beside ride-api for fleets that report over the bus instead
// of HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"ridebooking/internal/config"
	"ridebooking/internal/infra"
	"ridebooking/internal/logging"
	"ridebooking/internal/modules/driver"
	"ridebooking/internal/types"
)

var (
	msgsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ridebooking",
		Name:      "location_messages_consumed_total",
		Help:      "Total driver location messages consumed",
	})
	msgsInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ridebooking",
		Name:      "location_messages_invalid_total",
		Help:      "Total location messages that failed to decode or apply",
	})
)

// locationMessage is the wire format drivers publish on the location topic.
type locationMessage struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.DB.DSN == "" {
		log.Fatal("RIDE_DB_DSN is required: the consumer writes into the shared driver store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	var geoIndex driver.GeoIndex
	if cfg.Redis.Addr != "" {
		geoIndex = driver.NewRedisGeoIndex(infra.NewRedis(cfg.Redis.Addr))
	}
	registry := driver.NewRegistry(driver.NewPGStore(dbPool), geoIndex, logger)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
		logger.Info("metrics server listening", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", "err", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info("consumer listening", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers, "group", cfg.Kafka.GroupID)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down consumer")
				return
			}
			logger.Warn("kafka read error", "err", err, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second
		msgsConsumed.Inc()

		var msg locationMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			msgsInvalid.Inc()
			logger.Warn("invalid location message", "err", err)
			continue
		}
		if msg.DriverID == "" {
			msgsInvalid.Inc()
			continue
		}

		err = registry.UpdateLocation(ctx, types.ID(msg.DriverID), types.Point{Lat: msg.Lat, Lng: msg.Lng})
		if err != nil {
			msgsInvalid.Inc()
			logger.Warn("location update failed", "driver_id", msg.DriverID, "err", err)
		}
	}
}
