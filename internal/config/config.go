package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Identity     IdentityConfig     `mapstructure:"identity" validate:"required"`
	Registration RegistrationConfig `mapstructure:"registration" validate:"required"`
	Delivery     DeliveryConfig     `mapstructure:"delivery" validate:"required"`
	HTTP         HTTPConfig         `mapstructure:"http" validate:"required"`
	Graph        GraphConfig        `mapstructure:"graph" validate:"required"`
	Log          LogConfig          `mapstructure:"log" validate:"required"`
}

// IdentityConfig identifies the participant registering with the remote service.
// RegNo is also echoed back in the delivered outcome.
type IdentityConfig struct {
	Name  string `mapstructure:"name" validate:"required"`
	RegNo string `mapstructure:"reg_no" validate:"required"`
	Email string `mapstructure:"email" validate:"required,email"`
}

// RegistrationConfig contains the endpoint used to obtain the task payload.
type RegistrationConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// DeliveryConfig bounds the retry loop used to post the outcome.
type DeliveryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"required,gte=1,lte=20"`
	Backoff     time.Duration `mapstructure:"backoff" validate:"gte=0"`
}

// HTTPConfig contains transport-level settings.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0"`
}

// Duplicate id policies understood by the graph builder.
const (
	DuplicateLastWins  = "last_wins"
	DuplicateFirstWins = "first_wins"
)

// GraphConfig controls how raw user records become a follow graph.
type GraphConfig struct {
	DuplicatePolicy string `mapstructure:"duplicate_policy" validate:"required,oneof=last_wins first_wins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}
