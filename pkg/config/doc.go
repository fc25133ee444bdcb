// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Each config struct lives next
// to the code it configures (auth.Config, pg.Config, redis.Config, ...) and is
// parsed once per process:
//
//	var authCfg auth.Config
//	if err := config.Load(&authCfg); err != nil {
//		log.Fatal(err)
//	}
//
// Load reads ./.env on first use if it exists. Call LoadEnv beforehand to use
// other files. Variables already present in the environment always win.
//
// Parsed values are cached by type. ResetCache and Reload exist for tests that
// change the environment between cases.
package config
