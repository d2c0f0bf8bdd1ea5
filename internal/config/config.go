package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/playmatatu/pinball/internal/physics"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Physics
	FrameRate     int     // session frames per wall-clock second
	FrameDT       float32 // simulation time per frame
	MaxSubSteps   int
	GravityX      float32
	GravityY      float32
	GravityZ      float32
	Drag          float32
	Parallelism   int
	Seed          uint64
	MaxBalls      int
	DefaultTable  string
	SnapshotEvery int // frames between cached pose snapshots

	// Sessions
	SessionIdleMinutes       int
	SessionWorkerPollSeconds int
	MaxSessions              int

	// Security
	JWTSecret       string
	TokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/pinball?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Physics
		FrameRate:     getEnvInt("PHYSICS_FRAME_RATE", 100),
		FrameDT:       getEnvFloat("PHYSICS_FRAME_DT", 1),
		MaxSubSteps:   getEnvInt("PHYSICS_MAX_SUBSTEPS", physics.DefaultMaxIterations),
		GravityX:      getEnvFloat("PHYSICS_GRAVITY_X", 0),
		GravityY:      getEnvFloat("PHYSICS_GRAVITY_Y", physics.DefaultSlopeY),
		GravityZ:      getEnvFloat("PHYSICS_GRAVITY_Z", physics.DefaultSlopeZ),
		Drag:          getEnvFloat("PHYSICS_DRAG", 0),
		Parallelism:   getEnvInt("PHYSICS_PARALLEL", 0),
		Seed:          uint64(getEnvInt("PHYSICS_SEED", 1)),
		MaxBalls:      getEnvInt("PHYSICS_MAX_BALLS", 6),
		DefaultTable:  getEnv("DEFAULT_TABLE", "demo"),
		SnapshotEvery: getEnvInt("SNAPSHOT_EVERY_FRAMES", 10),

		// Sessions
		SessionIdleMinutes:       getEnvInt("SESSION_IDLE_MINUTES", 15),
		SessionWorkerPollSeconds: getEnvInt("SESSION_WORKER_POLL_SECONDS", 30),
		MaxSessions:              getEnvInt("MAX_SESSIONS", 64),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
	}
}

// PhysicsOptions returns the world options for a new session. Logger and
// Observer are left for the caller.
func (c *Config) PhysicsOptions() physics.Options {
	opts := physics.DefaultOptions()
	opts.Gravity = physics.Vec3{c.GravityX, c.GravityY, c.GravityZ}
	opts.Drag = c.Drag
	if c.MaxSubSteps > 0 {
		opts.MaxIterations = c.MaxSubSteps
	}
	if c.Parallelism > 0 {
		opts.Parallelism = c.Parallelism
	}
	opts.Seed = c.Seed
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
