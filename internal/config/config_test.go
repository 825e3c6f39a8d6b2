package config_test

import (
	"testing"

	"github.com/coprra/coprra/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvFilePath, "testdata/absent.env")
	t.Setenv(config.DBHostEnv, "localhost")
	t.Setenv(config.DBUserEnv, "user")
	t.Setenv(config.DBPassEnv, "pass")
	t.Setenv(config.DBNameEnv, "coprra")
	t.Setenv(config.DBPortEnv, "5432")
	t.Setenv(config.HTTPServerPortEnv, "8080")
	t.Setenv(config.MetricsServerPortEnv, "9090")
	t.Setenv(config.RedisAddrEnv, "localhost:6379")
	t.Setenv(config.SQSQueueURLEnv, "http://localhost:4566/000000000000/jobs")
	t.Setenv(config.JWTSecretEnv, "test-secret")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(config.DebugModeEnv, "true")
	t.Setenv(config.DefaultCurrencyEnv, "eur")
	t.Setenv(config.CurrencyRatesEnv, "EUR:0.92,GBP:0.79")
	t.Setenv(config.PasswordMinLengthEnv, "10")

	conf, err := config.LoadFromEnv()
	require.NoError(t, err, "loading config should not return error")

	assert.True(t, conf.DebugMode)
	assert.Equal(t, "localhost", conf.Database.Host)
	assert.Equal(t, "coprra", conf.Database.Name)
	assert.Equal(t, "8080", conf.HTTPServer.Port)
	assert.Equal(t, "9090", conf.MetricsServer.Port)
	assert.Equal(t, "localhost:6379", conf.Redis.Addr)
	assert.Equal(t, "EUR", conf.Currency.DefaultCode, "currency code should be upper-cased")
	assert.Equal(t, map[string]string{"EUR": "0.92", "GBP": "0.79"}, conf.Currency.Rates)
	assert.Equal(t, 10, conf.Password.MinLength)
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(config.JWTSecretEnv, "")

	_, err := config.LoadFromEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingConfig)
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"GetEnvAsBool_True", "true", false, true},
		{"GetEnvAsBool_False", "false", true, false},
		{"GetEnvAsBool_Invalid", "invalid", true, true},
		{"GetEnvAsBool_Empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV", tt.envValue)
			got := config.GetEnvAsBool("TEST_ENV", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"ParseRates_Empty", "", map[string]string{}},
		{"ParseRates_Valid", "EUR:0.92,GBP:0.79", map[string]string{"EUR": "0.92", "GBP": "0.79"}},
		{"ParseRates_LowercaseCode", "eur:0.92", map[string]string{"EUR": "0.92"}},
		{"ParseRates_SkipsMalformed", "EUR:0.92,broken,GBP:abc", map[string]string{"EUR": "0.92"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.ParseRates(tt.input))
		})
	}
}

func TestAllNumbers(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		wantErr bool
	}{
		{"AllNumbers_Valid", map[string]string{"key1": "123", "key2": "456"}, false},
		{"AllNumbers_Invalid", map[string]string{"key1": "123", "key2": "abc"}, true},
		{"AllNumbers_EmptyString", map[string]string{"key1": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.AllNumbers(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		wantErr bool
	}{
		{"AllNonEmpty_Valid", map[string]string{"key1": "host", "key2": "user"}, false},
		{"AllNonEmpty_EmptyString", map[string]string{"key1": "host", "key2": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.AllNonEmpty(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
