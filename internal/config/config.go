// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all physics, match, and server
// settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/fight-club/matchsim/internal/ballphysics"
	"github.com/fight-club/matchsim/internal/field"
)

// =============================================================================
// PHYSICS CONFIGURATION
// =============================================================================

// PhysicsConfig bundles the ball and field constants a match is built on.
type PhysicsConfig struct {
	Ball  ballphysics.Config
	Field field.Config
}

// DefaultPhysics returns the regulation-pitch, regulation-ball defaults.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Ball:  ballphysics.DefaultConfig(),
		Field: field.DefaultConfig(),
	}
}

// =============================================================================
// MATCH TIMING CONFIGURATION
// =============================================================================

// MatchConfig holds the tick rates and duration the scheduler and engine
// drive the simulation with.
type MatchConfig struct {
	BallPhysicsHz   int           // ball integration cadence
	PlayerPhysicsHz int           // player body integration cadence
	AIBaseInterval  time.Duration // mean AI re-decision interval before jitter
	AIJitter        time.Duration // width of the AI re-decision jitter window; the interval varies by +/- half of this
	HalfDuration    time.Duration // in-sim duration of one half
	StoppageMin     time.Duration // minimum added stoppage time per half
	StoppageMax     time.Duration // maximum added stoppage time per half
}

// DefaultMatch returns the standard 90-minute, two-half configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		BallPhysicsHz:   60,
		PlayerPhysicsHz: 60,
		AIBaseInterval:  100 * time.Millisecond,
		AIJitter:        20 * time.Millisecond,
		HalfDuration:    45 * time.Minute,
		StoppageMin:      1 * time.Minute,
		StoppageMax:      5 * time.Minute,
	}
}

// MatchFromEnv returns match configuration with environment overrides —
// mainly used to shorten halves for local testing.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()
	if m := getEnvInt("HALF_DURATION_MINUTES", 0); m > 0 {
		cfg.HalfDuration = time.Duration(m) * time.Minute
	}
	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and per-match sizing caps.
type ResourceLimits struct {
	MaxConcurrentMatches int // hard cap on simultaneously running matches
	MaxSquadSize         int // players + substitutes per team
	MaxSubstitutions     int // substitutions allowed per team per match
	MaxReplayEvents      int // events retained per match replay log
	MaxExternalQueueLen  int // external-event inbox capacity (rounded to pow2)
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxConcurrentMatches: 64,
		MaxSquadSize:         18,
		MaxSubstitutions:     5,
		MaxReplayEvents:      20_000,
		MaxExternalQueueLen:  1024,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP control-plane settings.
type ServerConfig struct {
	Port            int
	AllowedOrigins  []string
	MetricsPath     string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           8080,
		AllowedOrigins: []string{"*"},
		MetricsPath:    "/metrics",
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = []string{origins}
	}
	return cfg
}

// =============================================================================
// SPATIAL CONFIGURATION
// =============================================================================

// SpatialConfig holds spatial indexing settings.
type SpatialConfig struct {
	GridCellSize      float64 // meters; collision/proximity broad-phase
	FlowFieldCellSize float64 // meters; defensive-recovery navigation
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		GridCellSize:      2.0,
		FlowFieldCellSize: 1.0,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Physics PhysicsConfig
	Match   MatchConfig
	Server  ServerConfig
	Limits  ResourceLimits
	Spatial SpatialConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Physics: DefaultPhysics(),
		Match:   MatchFromEnv(),
		Server:  ServerFromEnv(),
		Limits:  DefaultLimits(),
		Spatial: DefaultSpatial(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
