package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/taxonomy", "GET")
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 10-i-1, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/taxonomy", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, 6*time.Second)
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 60; i++ {
		limiter.Allow("c", "/jobs", "GET")
	}
	allowed, _ := limiter.Allow("c", "/jobs", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = limiter.Allow("c", "/jobs", "GET")
	assert.True(t, allowed, "one token refills per second")

	allowed, _ = limiter.Allow("c", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ResetTime(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: 10 * time.Second,
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow("c", "/x", "GET")
	}
	_, info := limiter.Allow("c", "/x", "GET")
	assert.Equal(t, 4, info.Remaining)
	assert.Equal(t, clock.Now().Add(6*time.Second), info.ResetTime)
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/jobs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.2", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("c", "/jobs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	// Reload allows a burst of 2
	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow("c", "/taxonomy/reload", "POST")
		require.True(t, allowed)
	}
	allowed, info := limiter.Allow("c", "/taxonomy/reload", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 10, info.Limit)

	// Applications to different jobs share the prefix bucket
	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("c", fmt.Sprintf("/jobs/%d/applications", i), "POST")
		require.True(t, allowed)
	}
	allowed, _ = limiter.Allow("c", "/jobs/99/applications", "POST")
	assert.False(t, allowed)

	// Reads are on the default tier
	allowed, info = limiter.Allow("c", "/jobs/99/applications", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("a", "/jobs", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("a", "/jobs", "GET")
	assert.False(t, allowed)
	allowed, _ = limiter.Allow("b", "/jobs", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("c", "/jobs", "GET"); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	limiter.Allow("old", "/jobs", "GET")
	clock.Advance(2 * time.Hour)
	limiter.Allow("new", "/jobs", "GET")
	require.Equal(t, 2, limiter.bucketCount())

	limiter.cleanupBuckets(clock.Now().Add(-time.Hour))
	assert.Equal(t, 1, limiter.bucketCount())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantTier     string
	}{
		{"/health", "GET", "unlimited"},
		{"/taxonomy/reload", "POST", "reload"},
		{"/jobs/abc/applications", "POST", "apply"},
		{"/candidates", "GET", "candidates"},
		{"/skills/match", "POST", "skills"},
		{"/health", "POST", ""},
		{"/jobs", "GET", ""},
		{"/jobs/abc/applications", "GET", ""},
		{"/taxonomy", "GET", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantTier == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantTier, got.Name)
		})
	}
}

func TestMatchEndpoint_LongestPrefixWins(t *testing.T) {
	configs := []EndpointConfig{
		{Name: "broad", Path: "/skills/", Method: "POST", Limit: 10, Window: time.Minute},
		{Name: "narrow", Path: "/skills/extract/", Method: "POST", Limit: 1, Window: time.Minute},
		{Name: "exact", Path: "/skills/extract/bulk", Method: "POST", Limit: 5, Window: time.Minute},
	}

	assert.Equal(t, "narrow", MatchEndpoint("/skills/extract/one", "POST", configs).Name)
	assert.Equal(t, "broad", MatchEndpoint("/skills/match", "POST", configs).Name)
	assert.Equal(t, "exact", MatchEndpoint("/skills/extract/bulk", "POST", configs).Name)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")
	t.Setenv("RATE_LIMIT_SKILLS_LIMIT", "5")
	t.Setenv("RATE_LIMIT_SKILLS_BURST", "1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)

	tier := MatchEndpoint("/skills/match", "POST", cfg.EndpointConfigs)
	require.NotNil(t, tier)
	assert.Equal(t, 5, tier.Limit)
	assert.Equal(t, 1, tier.Burst)
	assert.Equal(t, time.Minute, tier.Window)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RATE_LIMIT_ENABLED", "maybe"},
		{"RATE_LIMIT_DEFAULT_LIMIT", "lots"},
		{"RATE_LIMIT_DEFAULT_LIMIT", "-5"},
		{"RATE_LIMIT_DEFAULT_WINDOW", "1 minute"},
		{"RATE_LIMIT_BLACKLIST", "10.0.0.1,not-an-ip"},
		{"RATE_LIMIT_RELOAD_BURST", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
