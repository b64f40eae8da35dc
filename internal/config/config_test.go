package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"shopadmin/internal/config"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "secret")

	cfg := config.FromViper(v)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 72*time.Hour, cfg.PasswordResetTTL)
	assert.Equal(t, "database", cfg.RevocationStore)
	assert.Equal(t, "log", cfg.MailDriver)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	v.Set("JWT_SECRET", "secret")
	v.Set("DB_DRIVER", "oracle")
	err = config.FromViper(v).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")

	v.Set("DB_DRIVER", "sqlite")
	v.Set("MAIL_DRIVER", "pigeon")
	err = config.FromViper(v).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_DRIVER")

	v.Set("MAIL_DRIVER", "amqp")
	v.Set("ACCESS_TOKEN_TTL", "0s")
	assert.Error(t, config.FromViper(v).Validate())
}
