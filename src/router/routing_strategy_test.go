package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"www.github.com/Wanderer0074348/Yahmi/src/config"
)

func TestTierStrategy(t *testing.T) {
	strategy := NewTierStrategy()

	assert.Equal(t, config.TierAdvanced, strategy.Tier(ComplexityComplex))
	assert.Equal(t, config.TierBalanced, strategy.Tier(ComplexityModerate))
	assert.Equal(t, config.TierFast, strategy.Tier(ComplexitySimple))
}

func TestStreamTiers(t *testing.T) {
	assert.Equal(t, []string{config.TierAdvanced, config.TierFast}, StreamTiers(ComplexityComplex))
	assert.Equal(t, []string{config.TierFast}, StreamTiers(ComplexityModerate))
	assert.Equal(t, []string{config.TierFast}, StreamTiers(ComplexitySimple))
}
