// HomeGuardian Core - home automation hub
//
// This is the main entry point for the HomeGuardian Core application.
// It registers the configured devices and users with the controller and
// exposes them through:
//   - the line-based command channel (TCP and WebSocket)
//   - the REST API
//   - the MQTT bus (state mirror and inbound commands)
//
// SQLite archives the activity log and notifications across restarts;
// InfluxDB keeps command and state history when enabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/api"
	"github.com/nerrad567/homeguardian-core/internal/auth"
	"github.com/nerrad567/homeguardian-core/internal/bus"
	"github.com/nerrad567/homeguardian-core/internal/channel"
	"github.com/nerrad567/homeguardian-core/internal/controller"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/database"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/logging"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeguardian-core/internal/metrics"
	"github.com/nerrad567/homeguardian-core/internal/notify"
	"github.com/nerrad567/homeguardian-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// workerDrainTimeout bounds how long shutdown waits for background writers
// to flush their queues.
const workerDrainTimeout = 5 * time.Second

func main() {
	// Cancel on Ctrl+C and SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting HomeGuardian Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Background writers outlive the servers so their queues drain after
	// the last command has been handled. MQTT and the database stop them
	// before closing; the deferred stop covers every other return path.
	workers := newWorkerGroup()
	defer workers.stop(log)

	// Archive database (optional)
	var db *database.DB
	var activityRepo activity.Repository
	var activitySink activity.Sink
	var notifySink notify.Sink
	if cfg.Database.Enabled {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			workers.stop(log)
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		activityRepo = activity.NewSQLiteRepository(db.DB)
		activityArchiver := activity.NewArchiver(activityRepo)
		activityArchiver.SetLogger(log)
		workers.start(activityArchiver.Run, activityArchiver.Done())
		activitySink = activityArchiver

		notifyArchiver := notify.NewArchiver(notify.NewSQLiteRepository(db.DB))
		notifyArchiver.SetLogger(log)
		workers.start(notifyArchiver.Run, notifyArchiver.Done())
		notifySink = notifyArchiver
	} else {
		log.Info("database disabled, activity is kept in memory only")
	}

	// MQTT bus (optional)
	var mqttClient *mqtt.Client
	var mirror *bus.Mirror
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			workers.stop(log)
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mirror = bus.NewMirror(mqttClient, byte(cfg.MQTT.QoS)) //nolint:gosec // QoS validated to 0-2
		mirror.SetLogger(log)
		workers.start(mirror.Run, mirror.Done())
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Controller and its observers
	var ctl *controller.Controller
	var chSrv *channel.Server
	collector := metrics.New(metrics.Gauges{
		Devices:        func() int { return ctl.DeviceCount() },
		ChannelClients: func() int { return chSrv.Hub().ClientCount() },
	})

	dispatchers := notify.Dispatchers{collector}
	if mirror != nil {
		dispatchers = append(dispatchers, mirror)
	}

	ctl = controller.New(controller.Deps{
		ActivitySink:     activitySink,
		NotifySink:       notifySink,
		Dispatcher:       dispatchers,
		EmergencyContact: cfg.Notifications.EmergencyContact,
		Logger:           log,
	})
	ctl.AddObserver(collector)
	if mirror != nil {
		ctl.AddObserver(mirror)
	}
	if influxClient != nil {
		ctl.AddObserver(influxClient)
	}

	if err := registerDevices(ctl, cfg.Devices, log); err != nil {
		return err
	}
	if err := registerUsers(ctl, cfg.Users, log); err != nil {
		return err
	}
	log.Info("controller ready", "devices", ctl.DeviceCount(), "users", len(cfg.Users))

	// Command channel
	chSrv = channel.NewServer(ctl, cfg.Channel, cfg.WebSocket, log)
	go chSrv.Hub().Run(ctx)

	channelErr := make(chan error, 1)
	if cfg.Channel.Enabled {
		go func() {
			channelErr <- chSrv.ListenAndServe(ctx)
		}()
	} else {
		log.Info("TCP command channel disabled")
	}

	if mirror != nil {
		if err := mirror.Subscribe(ctl, func(deviceID string, ok bool) {
			if ok {
				chSrv.Announce(deviceID)
			}
		}); err != nil {
			return fmt.Errorf("subscribing to MQTT commands: %w", err)
		}
	}

	// REST API
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			Security:   cfg.Security,
			Logger:     log,
			Controller: ctl,
			Channel:    chSrv,
			Archive:    activityRepo,
			Metrics:    collector,
			Version:    version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("REST API disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case err := <-channelErr:
		if err != nil {
			return fmt.Errorf("command channel: %w", err)
		}
	}

	// Deferred calls run in reverse order: API, background writers,
	// InfluxDB, MQTT, database.
	log.Info("HomeGuardian Core stopped")
	return nil
}

// openDatabase opens the archive database and applies migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// registerDevices creates the configured devices and runs their setup
// commands as SYSTEM. A setup command that fails is logged, not fatal.
func registerDevices(ctl *controller.Controller, devices []config.DeviceConfig, log *logging.Logger) error {
	for _, dc := range devices {
		kind, err := device.ParseKind(dc.Type)
		if err != nil {
			return fmt.Errorf("device %s: %w", dc.ID, err)
		}
		d, err := device.New(kind, dc.ID, dc.Name)
		if err != nil {
			return fmt.Errorf("device %s: %w", dc.ID, err)
		}
		if !ctl.RegisterDevice(d) {
			return fmt.Errorf("device %s: already registered", dc.ID)
		}
	}

	// Setup runs after every device exists so links may point forward.
	for _, dc := range devices {
		for _, cmd := range dc.Setup {
			if !ctl.ControlDevice(dc.ID, cmd) {
				log.Warn("device setup command failed", "device_id", dc.ID, "command", cmd)
			}
		}
	}
	return nil
}

// registerUsers creates the configured users. Admins without a password
// hash get a generated one so the API is reachable on first boot.
func registerUsers(ctl *controller.Controller, configs []config.UserConfig, log *logging.Logger) error {
	users := make([]*auth.User, 0, len(configs))
	for _, uc := range configs {
		role, err := auth.ParseRole(uc.Role)
		if err != nil {
			return fmt.Errorf("user %s: %w", uc.Username, err)
		}
		u := &auth.User{
			Username:             uc.Username,
			Name:                 uc.Name,
			Email:                uc.Email,
			Role:                 role,
			NotificationsEnabled: uc.NotificationsEnabled,
			PasswordHash:         uc.PasswordHash,
		}
		if role == auth.RoleGuest {
			u.AccessibleDevices = append([]string(nil), uc.AccessibleDevices...)
		}
		if err := u.Validate(); err != nil {
			return fmt.Errorf("user %s: %w", uc.Username, err)
		}
		users = append(users, u)
	}

	if _, err := auth.SeedAdminPasswords(users, log.Logger); err != nil {
		return fmt.Errorf("seeding admin passwords: %w", err)
	}

	for _, u := range users {
		if !ctl.RegisterUser(u) {
			return fmt.Errorf("user %s: already registered", u.Username)
		}
	}
	return nil
}

// healthCheck verifies the enabled infrastructure connections.
// Nil clients are disabled components and are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	var errs []error
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("influxdb: %w", err))
		}
	}
	return errors.Join(errs...)
}

// workerGroup runs queue writers on their own context so they keep
// draining after the signal context is cancelled.
type workerGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   []<-chan struct{}
	once   sync.Once
}

func newWorkerGroup() *workerGroup {
	ctx, cancel := context.WithCancel(context.Background())
	return &workerGroup{ctx: ctx, cancel: cancel}
}

func (w *workerGroup) start(run func(context.Context), done <-chan struct{}) {
	go run(w.ctx)
	w.done = append(w.done, done)
}

// stop cancels the workers and waits for each to drain. Only the first call
// does anything.
func (w *workerGroup) stop(log *logging.Logger) {
	w.once.Do(func() { w.drain(log) })
}

func (w *workerGroup) drain(log *logging.Logger) {
	w.cancel()
	timeout := time.NewTimer(workerDrainTimeout)
	defer timeout.Stop()

	for _, done := range w.done {
		select {
		case <-done:
		case <-timeout.C:
			log.Warn("background writers did not drain in time")
			return
		}
	}
}
