package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"DM_DB_HOST":     "localhost",
		"DM_DB_USER":     "hemobank",
		"DM_DB_PASSWORD": "secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8050 {
		t.Errorf("Port = %d, ожидается 8050", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, ожидается localhost", cfg.DBHost)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBName != "hemobank" {
		t.Errorf("DBName = %q, ожидается hemobank", cfg.DBName)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.DonorCacheSize != 1000 {
		t.Errorf("DonorCacheSize = %d, ожидается 1000", cfg.DonorCacheSize)
	}
	if cfg.DonorCacheTTL != time.Minute {
		t.Errorf("DonorCacheTTL = %v, ожидается 1m", cfg.DonorCacheTTL)
	}
	if cfg.DephealthCheckInterval != 30*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 30s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["DM_PORT"] = "8055"
	envs["DM_LOG_LEVEL"] = "debug"
	envs["DM_LOG_FORMAT"] = "text"
	envs["DM_DB_PORT"] = "5433"
	envs["DM_DB_SSL_MODE"] = "require"
	envs["DM_JWT_JWKS_URL"] = "https://idp.hemobank.lan/realms/hemobank/protocol/openid-connect/certs"
	envs["DM_DONOR_CACHE_SIZE"] = "500"
	envs["DM_DONOR_CACHE_TTL"] = "30s"
	envs["DM_SHUTDOWN_TIMEOUT"] = "10s"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8055 {
		t.Errorf("Port = %d, ожидается 8055", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, ожидается 5433", cfg.DBPort)
	}
	if cfg.DBSSLMode != "require" {
		t.Errorf("DBSSLMode = %q, ожидается require", cfg.DBSSLMode)
	}
	if cfg.DonorCacheSize != 500 {
		t.Errorf("DonorCacheSize = %d, ожидается 500", cfg.DonorCacheSize)
	}
	if cfg.DonorCacheTTL != 30*time.Second {
		t.Errorf("DonorCacheTTL = %v, ожидается 30s", cfg.DonorCacheTTL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{name: "без DM_DB_HOST", missing: "DM_DB_HOST"},
		{name: "без DM_DB_USER", missing: "DM_DB_USER"},
		{name: "без DM_DB_PASSWORD", missing: "DM_DB_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			delete(envs, tt.missing)
			// t.Setenv с пустым значением перекрывает окружение процесса
			envs[tt.missing] = ""
			setEnvs(t, envs)

			if _, err := Load(); err == nil {
				t.Errorf("Load() без %s не вернул ошибку", tt.missing)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "порт вне диапазона", key: "DM_PORT", val: "9000"},
		{name: "порт не число", key: "DM_PORT", val: "abc"},
		{name: "недопустимый уровень логов", key: "DM_LOG_LEVEL", val: "verbose"},
		{name: "недопустимый формат логов", key: "DM_LOG_FORMAT", val: "xml"},
		{name: "недопустимый SSL-режим", key: "DM_DB_SSL_MODE", val: "maybe"},
		{name: "некорректная длительность", key: "DM_DONOR_CACHE_TTL", val: "soon"},
		{name: "нулевой размер кэша", key: "DM_DONOR_CACHE_SIZE", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			envs[tt.key] = tt.val
			setEnvs(t, envs)

			if _, err := Load(); err == nil {
				t.Errorf("Load() с %s=%q не вернул ошибку", tt.key, tt.val)
			}
		})
	}
}
