package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/spf13/viper"
)

// ErrMissingKey indicates a required configuration key is absent or empty.
var ErrMissingKey = errors.New("config: missing key")

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at pathFile (format taken from its extension)
// and keeps watching it; a failed reload leaves the previous values in
// place. Environment variables win over the file, with dots in the key
// written as underscores: timeline.cache.ttl_seconds is read from
// TIMELINE_CACHE_TTL_SECONDS.
func NewViper(pathFile string) (*Viper, error) {
	v := viper.New()
	v.SetConfigFile(pathFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", pathFile, err)
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", ev.Name, "op", ev.Op.String(), "err", err)
			return
		}
		slog.Info("config reloaded", "path", ev.Name, "op", ev.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes builds a Config from an in-memory document of the given
// type ("yaml", "json", "toml"). Nothing is watched.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config: type is required")
	}

	v := viper.New()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetInt32 returns the value for key as int32.
func (vc *Viper) GetInt32(key string) int32 {
	return vc.v.GetInt32(key)
}

// GetInt64 returns the value for key as int64.
func (vc *Viper) GetInt64(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetInstant returns the value for key parsed from the nine-digit UTC wire form.
func (vc *Viper) GetInstant(key string) (instant.Instant, error) {
	raw := strings.TrimSpace(vc.v.GetString(key))
	if raw == "" {
		return instant.Instant{}, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}

	at, err := instant.Parse(raw)
	if err != nil {
		return instant.Instant{}, fmt.Errorf("config: key %s: %w", key, err)
	}

	return at, nil
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetArray returns the value for key split by commas.
// Empty elements are dropped, so an unset key yields an empty slice.
func (vc *Viper) GetArray(key string) []string {
	raw := vc.v.GetString(key)
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Close is a no-op; viper offers no way to stop the watcher.
func (vc *Viper) Close() error {
	return nil
}
