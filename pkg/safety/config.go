package safety

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "safety"

	LARGE_TABLE_BYTES_DEFAULT = int64(10) << 30
	DISK_HEADROOM_DEFAULT     = 1.2
)

type Config struct {
	// SkipLarge excludes any table over LargeTableBytes from the plan
	SkipLarge       bool  `mapstructure:"skip_large"`
	LargeTableBytes int64 `mapstructure:"large_table_bytes" validate:"gt=0"`
	// ConfirmDestructive is standing approval for exclusive-lock
	// operations, the config-file equivalent of --yes
	ConfirmDestructive bool `mapstructure:"confirm_destructive"`
	// DiskCheck verifies free space on the data directory volume
	// before a full vacuum, which needs room for a full table copy
	DiskCheck    bool    `mapstructure:"disk_check"`
	DiskHeadroom float64 `mapstructure:"disk_headroom" validate:"gte=1"`
}

func ConfigFromViper(key *string) (Config, error) {
	var keyValue string
	if key == nil {
		keyValue = DEFAULT_CONFIG_KEY
	} else {
		keyValue = *key
	}

	pgtoolsConfig := viper.Sub(keyValue)
	if pgtoolsConfig == nil {
		pgtoolsConfig = viper.New()
	}

	pgtoolsConfig.BindEnv("skip_large", "PGT_SAFETY_SKIP_LARGE")
	pgtoolsConfig.BindEnv("large_table_bytes", "PGT_SAFETY_LARGE_TABLE_BYTES")
	pgtoolsConfig.BindEnv("confirm_destructive", "PGT_SAFETY_CONFIRM_DESTRUCTIVE")
	pgtoolsConfig.BindEnv("disk_check", "PGT_SAFETY_DISK_CHECK")
	pgtoolsConfig.BindEnv("disk_headroom", "PGT_SAFETY_DISK_HEADROOM")

	pgtoolsConfig.SetDefault("skip_large", false)
	pgtoolsConfig.SetDefault("large_table_bytes", LARGE_TABLE_BYTES_DEFAULT)
	pgtoolsConfig.SetDefault("confirm_destructive", false)
	pgtoolsConfig.SetDefault("disk_check", true)
	pgtoolsConfig.SetDefault("disk_headroom", DISK_HEADROOM_DEFAULT)

	var config Config
	err := pgtoolsConfig.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %v", err)
	}

	err = utils.ValidateStruct(&config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
