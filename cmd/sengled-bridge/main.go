// Sengled Bridge - local control for Sengled Wi-Fi devices
//
// This is the main entry point for the bridge. It connects the Sengled
// add-on's device registry and the local MQTT broker that Sengled Wi-Fi
// devices report to, and exposes the devices as typed entities over a REST
// and WebSocket API. No cloud connection is involved at any point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/sengled-bridge/migrations"

	"github.com/nerrad567/sengled-bridge/internal/addon"
	"github.com/nerrad567/sengled-bridge/internal/api"
	"github.com/nerrad567/sengled-bridge/internal/bridge"
	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/entity"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/database"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyRecordTimeout bounds each best-effort history write.
const historyRecordTimeout = 5 * time.Second

// History retention: entries older than this are pruned once a day.
const (
	historyRetention     = 30 * 24 * time.Hour
	historyPruneInterval = 24 * time.Hour
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Sengled bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	history := device.NewSQLiteStateHistoryRepository(db.DB)

	// Connect to MQTT broker. A refused connection or rejected credentials
	// is a setup failure - the bridge is useless without the broker.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Fetch the device inventory from the add-on. An unreachable registry or
	// malformed response fails setup; there is nothing to bridge without it.
	addonClient := addon.NewClient(cfg.AddonBaseURL(),
		addon.WithTimeout(cfg.GetAddonRequestTimeout()))

	registry := device.NewRegistry(addonClient)
	registry.SetLogger(log)
	if refreshErr := registry.Refresh(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", registry.Count())

	// Create the MQTT bridge
	bridgeOpts := bridge.Options{
		MQTTClient: &mqttBridgeAdapter{client: mqttClient},
		Store:      registry,
		History:    &historyRecorder{repo: history, log: log},
		Logger:     log,
	}
	if influxClient != nil {
		bridgeOpts.Telemetry = influxClient
	}
	br, err := bridge.New(bridgeOpts)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	// One entity per registered device
	entities := entity.NewManager(br)
	entities.SetLogger(log)
	entities.Rebuild(registry.List())
	br.AddStatusHandler(entities)
	log.Info("entities created", "count", entities.Count())

	// Availability follows the broker connection: a drop marks every device
	// unavailable, reconnection lets status reports bring them back.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		br.HandleConnectionUp()
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		br.HandleConnectionDown(err)
	})

	if startErr := br.Start(); startErr != nil {
		return fmt.Errorf("starting bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping bridge")
		br.Stop()
	}()
	log.Info("bridge started")

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Registry: registry,
		Entities: entities,
		Bridge:   br,
		History:  history,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// WebSocket clients get the same status fan-out as entities
	br.AddStatusHandler(apiServer)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Re-poll the add-on so devices added or removed there appear without a
	// restart. A failed poll keeps the previous inventory.
	go refreshLoop(ctx, cfg.GetRefreshInterval(), registry, entities, log)

	go historyPruneLoop(ctx, history, log)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Sengled bridge stopped")
	return nil
}

// refreshLoop periodically re-fetches the device inventory from the add-on.
func refreshLoop(ctx context.Context, interval time.Duration, registry *device.Registry, entities *entity.Manager, log *logging.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := registry.Refresh(ctx); err != nil {
				log.Warn("device registry refresh failed", "error", err)
				continue
			}
			entities.Rebuild(registry.List())
			log.Debug("device registry refreshed", "devices", registry.Count())
		}
	}
}

// historyPruneLoop trims old state history entries once a day.
// The first prune runs immediately so long-stopped installs recover disk
// space on startup.
func historyPruneLoop(ctx context.Context, history *device.SQLiteStateHistoryRepository, log *logging.Logger) {
	prune := func() {
		pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		removed, err := history.PruneHistory(pruneCtx, historyRetention)
		if err != nil {
			log.Warn("state history prune failed", "error", err)
			return
		}
		if removed > 0 {
			log.Info("state history pruned", "removed", removed)
		}
	}

	prune()

	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses SENGLED_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENGLED_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The difference is the Subscribe handler signature:
// - Infrastructure mqtt: func(topic string, payload []byte) error
// - Bridge expects: func(topic string, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	// Wrap the void handler to return nil (bridge handlers don't return errors)
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// historyRecorder adapts the SQLite state history repository to the bridge's
// best-effort HistoryRecorder interface. Write failures are logged, never
// propagated - a broken audit trail must not break device control.
type historyRecorder struct {
	repo *device.SQLiteStateHistoryRepository
	log  *logging.Logger
}

// Record implements bridge.HistoryRecorder.
func (h *historyRecorder) Record(change device.StateChange) {
	ctx, cancel := context.WithTimeout(context.Background(), historyRecordTimeout)
	defer cancel()

	if err := h.repo.RecordChange(ctx, change); err != nil {
		h.log.Warn("state history write failed",
			"mac", change.DeviceMAC,
			"attribute", change.Attribute,
			"error", err,
		)
	}
}
