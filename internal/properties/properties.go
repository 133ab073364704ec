package properties

import (
	"os"

	"github.com/joho/godotenv"
)

const DefaultOutputPattern = "{Y}{m}{d}{H}{M}{S}-NCEO-{level}-{product}-v{collection:0.1f}-fv01.0.nc"

// Load reads the first .env file found among paths. A missing file is not an error.
func Load(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return godotenv.Load(p)
	}
	return nil
}

func LogLevel() string {
	if lvl := os.Getenv("LANDSAT_IMPORTER_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

func OutputPattern() string {
	if p, ok := os.LookupEnv("LANDSAT_IMPORTER_OUTPUT_PATTERN"); ok {
		return p
	}
	return DefaultOutputPattern
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
