// Package config loads the node-level options §6 recognizes, layering
// defaults, an optional YAML file, and environment overrides the way the
// teacher's decision-point configuration does with spf13/viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

// Viper keys for the recognized options.
const (
	KeyPageSize                    = "storage.page-size"
	KeyCompactorFanIn              = "storage.compactor-fan-in"
	KeyBufferPoolCapacityBytes     = "storage.buffer-pool-capacity-bytes"
	KeyDefaultTimeZone             = "query.default-time-zone"
	KeySuppressTimeLiteralPrinters = "query.suppress-time-literal-printers"
)

const envPrefix = "XTDB"

// Config is the resolved, validated set of node options.
type Config struct {
	PageSize                    int
	CompactorFanIn              int
	BufferPoolCapacityBytes     int64
	DefaultTimeZone             *time.Location
	SuppressTimeLiteralPrinters bool
}

// Load resolves a Config from defaults, an optional YAML file at path (skip
// with an empty path), and XTDB_-prefixed environment overrides — e.g.
// XTDB_STORAGE_PAGE_SIZE overrides storage.page-size.
func Load(path string) (*Config, error) {
	v := viper.New()
	registerDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, xerrors.InvalidArgument("config: read %s: %v", path, err)
		}
	}

	zone, err := time.LoadLocation(v.GetString(KeyDefaultTimeZone))
	if err != nil {
		return nil, xerrors.InvalidArgument("config: %s: %v", KeyDefaultTimeZone, err)
	}

	pageSize := v.GetInt(KeyPageSize)
	if pageSize <= 0 {
		return nil, xerrors.InvalidArgument("config: %s must be positive, got %d", KeyPageSize, pageSize)
	}
	fanIn := v.GetInt(KeyCompactorFanIn)
	if fanIn < 2 {
		return nil, xerrors.InvalidArgument("config: %s must be >= 2, got %d", KeyCompactorFanIn, fanIn)
	}

	return &Config{
		PageSize:                    pageSize,
		CompactorFanIn:              fanIn,
		BufferPoolCapacityBytes:     v.GetInt64(KeyBufferPoolCapacityBytes),
		DefaultTimeZone:             zone,
		SuppressTimeLiteralPrinters: v.GetBool(KeySuppressTimeLiteralPrinters),
	}, nil
}

func registerDefaults(v *viper.Viper) {
	v.SetDefault(KeyPageSize, 256)
	v.SetDefault(KeyCompactorFanIn, 4)
	v.SetDefault(KeyBufferPoolCapacityBytes, int64(512<<20))
	v.SetDefault(KeyDefaultTimeZone, "UTC")
	v.SetDefault(KeySuppressTimeLiteralPrinters, false)
}
