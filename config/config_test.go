package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, 7, cfg.Schedule.Days)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}, cfg.Schedule.SlotTimes)
	assert.Equal(t, "clinic", cfg.Redis.KeyPrefix)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_BACKEND", "Redis")
	v.Set("JWT_ACCESS_EXPIRY", "not-a-duration")
	v.Set("SCHEDULE_SLOT_TIMES", " 08:30 , ,12:00")
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, []string{"08:30", "12:00"}, cfg.Schedule.SlotTimes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
}

func TestDBConfig_PostgresURL(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "clinic", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/clinic?sslmode=disable", cfg.PostgresURL())
}
