package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/bookreel/internal/config"
)

// ResetViper clears viper, registers the defaults and resets again when the
// test completes.
func ResetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset; an override can only be put back, not removed
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupDatastore enables the local recommendation log in the test environment
// and returns the database path.
func SetupDatastore(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("bookreel.db")
	SetViperValue(t, "datastore.enabled", true)
	SetViperValue(t, "datastore.mode", "local")
	SetViperValue(t, "datastore.dbfile", dbPath)
	return dbPath
}
