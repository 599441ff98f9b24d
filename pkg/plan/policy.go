package plan

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "thresholds"

	DEAD_TUPLE_RATIO_DEFAULT = 0.20
	STALENESS_DEFAULT        = 168 * time.Hour
	MOD_RATIO_DEFAULT        = 0.10
	MIN_LIVE_ROWS_DEFAULT    = 1000
	MIN_MODS_DEFAULT         = 50
)

// Policy holds the selection thresholds. Tables twice over
// DeadTupleRatio are tiered urgent; the two floors keep tiny tables
// from generating noise operations.
type Policy struct {
	DeadTupleRatio float64       `mapstructure:"dead_tuple_ratio" validate:"gt=0,lt=1"`
	Staleness      time.Duration `mapstructure:"staleness" validate:"gt=0"`
	ModRatio       float64       `mapstructure:"mod_ratio" validate:"gt=0"`
	MinLiveRows    int64         `mapstructure:"min_live_rows" validate:"gte=0"`
	MinMods        int64         `mapstructure:"min_mods" validate:"gte=0"`
}

func PolicyFromViper(key *string) (Policy, error) {
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

	pgtoolsConfig.BindEnv("dead_tuple_ratio", "PGT_THRESHOLDS_DEAD_TUPLE_RATIO")
	pgtoolsConfig.BindEnv("staleness", "PGT_THRESHOLDS_STALENESS")
	pgtoolsConfig.BindEnv("mod_ratio", "PGT_THRESHOLDS_MOD_RATIO")
	pgtoolsConfig.BindEnv("min_live_rows", "PGT_THRESHOLDS_MIN_LIVE_ROWS")
	pgtoolsConfig.BindEnv("min_mods", "PGT_THRESHOLDS_MIN_MODS")

	pgtoolsConfig.SetDefault("dead_tuple_ratio", DEAD_TUPLE_RATIO_DEFAULT)
	pgtoolsConfig.SetDefault("staleness", STALENESS_DEFAULT)
	pgtoolsConfig.SetDefault("mod_ratio", MOD_RATIO_DEFAULT)
	pgtoolsConfig.SetDefault("min_live_rows", MIN_LIVE_ROWS_DEFAULT)
	pgtoolsConfig.SetDefault("min_mods", MIN_MODS_DEFAULT)

	var policy Policy
	err := pgtoolsConfig.Unmarshal(&policy)
	if err != nil {
		return Policy{}, fmt.Errorf("unable to decode into struct, %v", err)
	}

	err = utils.ValidateStruct(&policy)
	if err != nil {
		return Policy{}, err
	}
	return policy, nil
}
