package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

func TestClassify_ShortPromptIsSimple(t *testing.T) {
	assert.Equal(t, ComplexitySimple, Classify("What is scope 2?"))
}

func TestClassify_SimpleKeyword(t *testing.T) {
	prompt := "Give me a quick overview of " + strings.Repeat("x", 70)
	assert.Len(t, prompt, 98)
	assert.Equal(t, ComplexitySimple, Classify(prompt))

	// keyword wins even above the short-length threshold
	long := "Please summarize " + strings.Repeat("emissions data ", 60)
	assert.Equal(t, ComplexitySimple, Classify(long))
}

func TestClassify_ComplexKeyword(t *testing.T) {
	assert.Equal(t, ComplexityComplex, Classify("A comprehensive review, quick"))
	assert.Equal(t, ComplexityComplex, Classify("ENTERPRISE rollout"))
}

func TestClassify_LongPromptIsComplex(t *testing.T) {
	prompt := strings.Repeat("a", 2000)
	assert.Equal(t, ComplexityComplex, Classify(prompt))
}

func TestClassify_Moderate(t *testing.T) {
	prompt := strings.Repeat("carbon ", 120)
	assert.Equal(t, ComplexityModerate, Classify(prompt))
}

func TestClassify_IsPure(t *testing.T) {
	prompt := strings.Repeat("governance ", 100)
	first := Classify(prompt)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(prompt))
	}
}

func TestGenerateCacheKey(t *testing.T) {
	opts := models.GenerationOptions{Temperature: 0.7, MaxTokens: 3000}

	key1 := GenerateCacheKey("Test", opts, CacheKeyPrefix)
	key2 := GenerateCacheKey("Test", opts, CacheKeyPrefix)
	key3 := GenerateCacheKey("Different", opts, CacheKeyPrefix)
	key4 := GenerateCacheKey("Test", models.GenerationOptions{Temperature: 0.2}, CacheKeyPrefix)

	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, key3)
	assert.NotEqual(t, key1, key4)
	assert.True(t, strings.HasPrefix(key1, "completion:"))
}

func TestGenerateCacheKey_PrefixOnly(t *testing.T) {
	opts := models.GenerationOptions{}
	base := strings.Repeat("p", 100)

	assert.Equal(t,
		GenerateCacheKey(base+" tail one", opts, 100),
		GenerateCacheKey(base+" tail two", opts, 100),
	)
	assert.NotEqual(t,
		GenerateCacheKey(base+" tail one", opts, 120),
		GenerateCacheKey(base+" tail two", opts, 120),
	)
}

func BenchmarkClassify(b *testing.B) {
	prompt := "Explain how scope 3 emissions are estimated for a mid-size manufacturer"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(prompt)
	}
}
