package router

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

const (
	simpleMaxLength  = 500
	complexMinLength = 1500

	// CacheKeyPrefix is the default number of prompt runes folded into a cache key.
	CacheKeyPrefix = 100
)

var complexKeywords = []string{
	"comprehensive", "detailed analysis", "deep dive", "enterprise",
	"strategic", "multi-faceted", "in-depth", "thorough assessment",
}

var simpleKeywords = []string{
	"quick", "simple", "basic", "summarize", "list", "brief",
}

// Classify estimates how demanding a prompt is. It depends only on the text.
func Classify(prompt string) Complexity {
	lower := strings.ToLower(prompt)
	length := utf8.RuneCountInString(prompt)

	if containsAny(lower, complexKeywords) || length > complexMinLength {
		return ComplexityComplex
	}

	if containsAny(lower, simpleKeywords) || length < simpleMaxLength {
		return ComplexitySimple
	}

	return ComplexityModerate
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// GenerateCacheKey digests the first prefixLen runes of the prompt together
// with the serialized options. Prompts sharing a prefix and options collide.
func GenerateCacheKey(prompt string, opts models.GenerationOptions, prefixLen int) string {
	if prefixLen <= 0 {
		prefixLen = CacheKeyPrefix
	}

	prefix := prompt
	if utf8.RuneCountInString(prompt) > prefixLen {
		prefix = string([]rune(prompt)[:prefixLen])
	}

	optsJSON, _ := json.Marshal(opts)
	hash := md5.Sum([]byte(prefix + "_" + string(optsJSON)))
	return "completion:" + hex.EncodeToString(hash[:])
}
