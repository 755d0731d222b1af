package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultDiscoveryConfig(t *testing.T) {
	cfg := DefaultDiscoveryConfig()

	assert.Equal(t, 0.62, cfg.SimilarityThreshold)
	assert.Equal(t, 0.75, cfg.FallbackSimilarity)
	assert.Equal(t, 2, cfg.OversampleFactor)
	assert.Equal(t, 3, cfg.MinNodes)
	assert.Equal(t, 9, cfg.MaxNodes)
	assert.Equal(t, 0.9, cfg.EdgeWeightScale)
	assert.Equal(t, 0.1, cfg.EdgeWeightFloor)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.AcademicFilterEnabled)
}

func TestLoadDiscoveryConfigOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("discovery.similarity_threshold", 0.7)
	viper.Set("discovery.max_nodes", 12)

	cfg := LoadDiscoveryConfig()

	assert.Equal(t, 0.7, cfg.SimilarityThreshold)
	assert.Equal(t, 12, cfg.MaxNodes)
	// Unset keys keep defaults
	assert.Equal(t, 2, cfg.OversampleFactor)
}

func TestNormalizeClampsBadValues(t *testing.T) {
	cfg := DiscoveryConfig{
		SimilarityThreshold: 1.5,
		FallbackSimilarity:  -1,
		OversampleFactor:    0,
		MinNodes:            0,
		MaxNodes:            -3,
		EdgeWeightScale:     2,
		EdgeWeightFloor:     1,
		RequestTimeout:      0,
	}
	cfg.normalize()

	def := DefaultDiscoveryConfig()
	assert.Equal(t, def.SimilarityThreshold, cfg.SimilarityThreshold)
	assert.Equal(t, def.FallbackSimilarity, cfg.FallbackSimilarity)
	assert.Equal(t, def.OversampleFactor, cfg.OversampleFactor)
	assert.Equal(t, def.MinNodes, cfg.MinNodes)
	assert.GreaterOrEqual(t, cfg.MaxNodes, cfg.MinNodes)
	assert.Equal(t, def.RequestTimeout, cfg.RequestTimeout)
}

func TestLoadAppConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := LoadAppConfig()
	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "en", cfg.Wiki.PrimaryLang)
}
