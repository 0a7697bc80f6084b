// Package overtime compares tracked time per day against a configured work
// schedule. Days are reconstructed from the exported intervals in local time,
// including entries that span midnight, and each day in the report range gets
// an actual, expected and overtime balance.
package overtime

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment configuration for the overtime reports.
const (
	EnvPrefix = "TIMEWARRIOR_EXT_OVERTIME"

	DefaultDailyHours = 8.0
	DefaultWorkDays   = "1,2,3,4,5"
)

// Config is the resolved work schedule.
type Config struct {
	DailyHours float64

	// WorkDays holds ISO weekday numbers, Monday=1 through Sunday=7.
	WorkDays []int
}

type envSettings struct {
	DailyHours string `envconfig:"DAILY_HOURS"`
	WorkDays   string `envconfig:"WORK_DAYS"`
}

// LoadConfig reads the work schedule from the environment. Invalid values
// produce a warning and fall back to the defaults instead of failing the
// report.
func LoadConfig() Config {
	var raw envSettings
	if err := envconfig.Process(EnvPrefix, &raw); err != nil {
		log.Warn().Err(err).Msg("failed to read overtime environment")
	}

	return Config{
		DailyHours: parseDailyHours(raw.DailyHours),
		WorkDays:   parseWorkDays(raw.WorkDays),
	}
}

// Validate reports a configuration the reports cannot run with.
func (c Config) Validate() error {
	if len(c.WorkDays) == 0 {
		return errors.New("work days must not be empty")
	}
	return nil
}

func parseDailyHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDailyHours
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("value", raw).Msgf("Invalid value for %s_DAILY_HOURS. Using default %g.", EnvPrefix, DefaultDailyHours)
		return DefaultDailyHours
	}
	if value < 0 {
		log.Warn().Str("value", raw).Msgf("Negative value for %s_DAILY_HOURS. Using default %g.", EnvPrefix, DefaultDailyHours)
		return DefaultDailyHours
	}
	return value
}

func parseWorkDays(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultWorkDays
	}

	var parsed []int
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		day, err := strconv.Atoi(item)
		if err != nil {
			log.Warn().Msgf("Invalid WORK_DAYS entry: %s. Skipping.", item)
			continue
		}
		if day < 1 || day > 7 {
			log.Warn().Msgf("WORK_DAYS entry out of range (1-7): %d. Skipping.", day)
			continue
		}
		if !containsInt(parsed, day) {
			parsed = append(parsed, day)
		}
	}

	if len(parsed) == 0 {
		log.Warn().Msg("WORK_DAYS did not include any valid entries. Using defaults.")
		if raw == DefaultWorkDays {
			return nil
		}
		return parseWorkDays(DefaultWorkDays)
	}
	return parsed
}

func containsInt(items []int, value int) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
