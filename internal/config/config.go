// Package config loads every tunable for the dispatch server from the
// environment. Values are clamped to safe ranges rather than rejected, so a
// typo in one knob degrades to a sane default instead of refusing to boot.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all parameters for the server process.
type Config struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SQLitePath string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string

	Dispatch Dispatch
	Stream   Stream
	Session  Session
}

// Dispatch holds the room-engine tunables. MaxPickupMinutes is the effective
// value recomputed from the (possibly overridden) max pickup distance, so the
// two stay consistent in the config snapshot sent to clients.
type Dispatch struct {
	RoomCode            string
	MaxPickupMinutes    float64
	AssumedSpeedKmh     float64
	MaxPickupDistanceKm float64
	MaxActivePerDriver  int
	RequestTTL          time.Duration
	AssignedTTL         time.Duration
	DriverStale         time.Duration
	SweepInterval       time.Duration
	BroadcastMinGap     time.Duration
	BroadcastMinMoveM   float64

	// DaysOpen is a community hint echoed verbatim in the config payload.
	DaysOpen []string
}

// Stream holds subscription keep-alive tunables.
type Stream struct {
	PingInterval          time.Duration
	RiderSnapshotInterval time.Duration
}

// Session holds driver bearer-session tunables.
type Session struct {
	TTL time.Duration
}

// RoomCodeRequired reports whether a shared room code gates mutating calls.
func (d Dispatch) RoomCodeRequired() bool { return d.RoomCode != "" }

func defaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    0, // streaming responses must not be write-bounded
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		SQLitePath:      "dispatch.db",
		KafkaTopic:      "dispatch-events",
		LogLevel:        "info",
		Dispatch: Dispatch{
			MaxPickupMinutes:   10,
			AssumedSpeedKmh:    40,
			MaxActivePerDriver: 3,
			RequestTTL:         5 * time.Minute,
			AssignedTTL:        60 * time.Minute,
			DriverStale:        45 * time.Second,
			SweepInterval:      5 * time.Second,
			BroadcastMinGap:    2 * time.Second,
			BroadcastMinMoveM:  15,
			DaysOpen:           []string{"Tuesday", "Thursday", "Sunday"},
		},
		Stream: Stream{
			PingInterval:          15 * time.Second,
			RiderSnapshotInterval: 30 * time.Second,
		},
		Session: Session{TTL: 12 * time.Hour},
	}
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	cfg := defaultConfig()
	var errs []error

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setDuration(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDuration(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDuration(&cfg.IdleTimeout, "HTTP_IDLE_TIMEOUT", &errs)
	setDuration(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	setString(&cfg.SQLitePath, "SQLITE_PATH")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setString(&cfg.KafkaTopic, "KAFKA_TOPIC")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	cfg.Dispatch.RoomCode = strings.TrimSpace(os.Getenv("ROOM_CODE"))

	cfg.Dispatch.MaxPickupMinutes = clampedFloat("MAX_PICKUP_MINUTES", cfg.Dispatch.MaxPickupMinutes, 1, 60, &errs)
	cfg.Dispatch.AssumedSpeedKmh = clampedFloat("ASSUMED_SPEED_KMH", cfg.Dispatch.AssumedSpeedKmh, 5, 120, &errs)

	derivedDistance := cfg.Dispatch.AssumedSpeedKmh * cfg.Dispatch.MaxPickupMinutes / 60
	cfg.Dispatch.MaxPickupDistanceKm = clampedFloat("MAX_PICKUP_DISTANCE_KM", derivedDistance, 0.1, 50, &errs)
	// Recompute the advertised minutes from the distance actually in force.
	cfg.Dispatch.MaxPickupMinutes = math.Round(cfg.Dispatch.MaxPickupDistanceKm/cfg.Dispatch.AssumedSpeedKmh*60*10) / 10

	cfg.Dispatch.MaxActivePerDriver = clampedInt("MAX_ACTIVE_REQUESTS_PER_DRIVER", cfg.Dispatch.MaxActivePerDriver, 1, 20, &errs)
	cfg.Dispatch.RequestTTL = time.Duration(clampedFloat("REQUEST_TTL_MINUTES", cfg.Dispatch.RequestTTL.Minutes(), 1, 180, &errs) * float64(time.Minute))
	cfg.Dispatch.AssignedTTL = time.Duration(clampedFloat("ASSIGNED_TTL_MINUTES", cfg.Dispatch.AssignedTTL.Minutes(), 5, 720, &errs) * float64(time.Minute))
	cfg.Dispatch.DriverStale = time.Duration(clampedFloat("DRIVER_STALE_SECONDS", cfg.Dispatch.DriverStale.Seconds(), 10, 300, &errs) * float64(time.Second))
	setDuration(&cfg.Dispatch.SweepInterval, "SWEEP_INTERVAL", &errs)
	cfg.Dispatch.BroadcastMinGap = time.Duration(clampedFloat("DRIVER_BROADCAST_MIN_MS", float64(cfg.Dispatch.BroadcastMinGap.Milliseconds()), 0, 60_000, &errs) * float64(time.Millisecond))
	cfg.Dispatch.BroadcastMinMoveM = clampedFloat("DRIVER_BROADCAST_MIN_MOVE_M", cfg.Dispatch.BroadcastMinMoveM, 0, 1000, &errs)

	if v := os.Getenv("DAYS_OPEN"); v != "" {
		cfg.Dispatch.DaysOpen = splitAndTrim(v)
	}

	setDuration(&cfg.Stream.PingInterval, "PING_INTERVAL", &errs)
	setDuration(&cfg.Stream.RiderSnapshotInterval, "RIDER_SNAPSHOT_INTERVAL", &errs)
	setDuration(&cfg.Session.TTL, "SESSION_TTL", &errs)

	if cfg.Dispatch.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func clampedFloat(key string, def, min, max float64, errs *[]error) float64 {
	v := def
	if raw := os.Getenv(key); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return clamp(def, min, max)
		}
		v = f
	}
	return clamp(v, min, max)
}

func clampedInt(key string, def, min, max int, errs *[]error) int {
	return int(clampedFloat(key, float64(def), float64(min), float64(max), errs))
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	return math.Min(max, math.Max(min, v))
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
