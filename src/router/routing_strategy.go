package router

import (
	"www.github.com/Wanderer0074348/Yahmi/src/config"
)

// RoutingStrategy maps a classified prompt onto a provider tier.
type RoutingStrategy interface {
	Tier(complexity Complexity) string
}

type TierStrategy struct{}

func NewTierStrategy() *TierStrategy {
	return &TierStrategy{}
}

func (s *TierStrategy) Tier(complexity Complexity) string {
	switch complexity {
	case ComplexityComplex:
		return config.TierAdvanced
	case ComplexityModerate:
		return config.TierBalanced
	default:
		return config.TierFast
	}
}

// StreamTiers is the ordered list of tiers tried for streamed output.
// Only complex prompts get the advanced tier; everything streams from fast.
func StreamTiers(complexity Complexity) []string {
	if complexity == ComplexityComplex {
		return []string{config.TierAdvanced, config.TierFast}
	}
	return []string{config.TierFast}
}
