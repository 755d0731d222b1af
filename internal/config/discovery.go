// Package config provides centralized configuration for conceptbridge.
// All tuning defaults are defined here to ensure a single source of truth.
package config

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DiscoveryConfig holds the tuning knobs of the discovery pipeline. The
// numeric defaults are empirically chosen; they are configuration, not
// constants baked into the algorithm.
type DiscoveryConfig struct {
	// SimilarityThreshold is the minimum embedding similarity for a candidate
	// to count as high quality during selection.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	// FallbackSimilarity is used when the embedding capability is unavailable,
	// keeping the pipeline ranking instead of failing.
	FallbackSimilarity float64 `mapstructure:"fallback_similarity"`

	// OversampleFactor scales the requested candidate count so the selector
	// has material to discard.
	OversampleFactor int `mapstructure:"oversample_factor"`

	// MinNodes / MaxNodes bound the non-root node count of a result.
	MinNodes int `mapstructure:"min_nodes"`
	MaxNodes int `mapstructure:"max_nodes"`

	// EdgeWeightScale / EdgeWeightFloor map similarity into edge weight:
	// weight = similarity*scale + floor. The floor keeps every edge visible.
	EdgeWeightScale float64 `mapstructure:"edge_weight_scale"`
	EdgeWeightFloor float64 `mapstructure:"edge_weight_floor"`

	// RequestTimeout is the overall deadline for one discovery request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// AcademicFilterEnabled toggles the academic yes/no gate.
	AcademicFilterEnabled bool `mapstructure:"academic_filter_enabled"`
}

// DefaultDiscoveryConfig returns the default pipeline tuning.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		SimilarityThreshold:   0.62,
		FallbackSimilarity:    0.75,
		OversampleFactor:      2,
		MinNodes:              3,
		MaxNodes:              9,
		EdgeWeightScale:       0.9,
		EdgeWeightFloor:       0.1,
		RequestTimeout:        45 * time.Second,
		AcademicFilterEnabled: true,
	}
}

// LoadDiscoveryConfig reads the discovery tuning block from Viper, falling
// back to defaults for unset keys.
func LoadDiscoveryConfig() DiscoveryConfig {
	cfg := DefaultDiscoveryConfig()
	if err := viper.UnmarshalKey("discovery", &cfg); err != nil {
		slog.Warn("invalid discovery config block, using defaults", "error", err)
		return DefaultDiscoveryConfig()
	}
	cfg.normalize()
	return cfg
}

// WatchDiscoveryConfig re-reads the tuning block whenever the config file
// changes and hands the fresh value to onChange. Threshold tuning then takes
// effect without a restart.
func WatchDiscoveryConfig(onChange func(DiscoveryConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed, reloading discovery tuning", "file", e.Name)
		onChange(LoadDiscoveryConfig())
	})
	viper.WatchConfig()
}

// normalize clamps nonsensical values back to defaults so a bad config file
// degrades the tuning, not the service.
func (c *DiscoveryConfig) normalize() {
	def := DefaultDiscoveryConfig()
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		c.SimilarityThreshold = def.SimilarityThreshold
	}
	if c.FallbackSimilarity <= 0 || c.FallbackSimilarity > 1 {
		c.FallbackSimilarity = def.FallbackSimilarity
	}
	if c.OversampleFactor < 1 {
		c.OversampleFactor = def.OversampleFactor
	}
	if c.MinNodes < 1 {
		c.MinNodes = def.MinNodes
	}
	if c.MaxNodes < c.MinNodes {
		c.MaxNodes = c.MinNodes
	}
	if c.EdgeWeightScale <= 0 || c.EdgeWeightScale > 1 {
		c.EdgeWeightScale = def.EdgeWeightScale
	}
	if c.EdgeWeightFloor < 0 || c.EdgeWeightFloor >= 1 {
		c.EdgeWeightFloor = def.EdgeWeightFloor
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
}
