// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for AssetHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ASSETHUB_MONGO_URI, ASSETHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "assethub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "assethub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "prefs_profile", Default: "default", Desc: "Preferences profile that persists the organization selection"},

	{Name: "document_url_prefix", Default: "/files/documents", Desc: "URL prefix for stored document files"},

	// Cache lifetimes. Short-lived lists (people, seats, assets) turn
	// over faster than the organization list.
	{Name: "cache_ttl_organizations", Default: "30m", Desc: "Organization list cache lifetime"},
	{Name: "cache_ttl_people", Default: "10m", Desc: "People list cache lifetime"},
	{Name: "cache_ttl_teams", Default: "15m", Desc: "Team list cache lifetime"},
	{Name: "cache_ttl_licenses", Default: "15m", Desc: "License list cache lifetime"},
	{Name: "cache_ttl_seats", Default: "10m", Desc: "Seat list cache lifetime"},
	{Name: "cache_ttl_assets", Default: "10m", Desc: "Asset list cache lifetime"},
	{Name: "cache_ttl_documents", Default: "10m", Desc: "Document list cache lifetime"},

	{Name: "scope_memo_ttl", Default: "5m", Desc: "How long resolved organization lookups are memoized"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ASSETHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ASSETHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		PrefsProfile: appValues.String("prefs_profile"),

		DocumentURLPrefix: appValues.String("document_url_prefix"),

		OrganizationsTTL: appValues.Duration("cache_ttl_organizations", 30*time.Minute),
		PeopleTTL:        appValues.Duration("cache_ttl_people", 10*time.Minute),
		TeamsTTL:         appValues.Duration("cache_ttl_teams", 15*time.Minute),
		LicensesTTL:      appValues.Duration("cache_ttl_licenses", 15*time.Minute),
		SeatsTTL:         appValues.Duration("cache_ttl_seats", 10*time.Minute),
		AssetsTTL:        appValues.Duration("cache_ttl_assets", 10*time.Minute),
		DocumentsTTL:     appValues.Duration("cache_ttl_documents", 10*time.Minute),

		ScopeMemoTTL: appValues.Duration("scope_memo_ttl", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// AssetHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects non-positive cache
// lifetimes since a zero TTL would make every cache entry dead on arrival.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.PrefsProfile == "" {
		return fmt.Errorf("prefs_profile must not be empty")
	}

	ttls := map[string]time.Duration{
		"cache_ttl_organizations": appCfg.OrganizationsTTL,
		"cache_ttl_people":        appCfg.PeopleTTL,
		"cache_ttl_teams":         appCfg.TeamsTTL,
		"cache_ttl_licenses":      appCfg.LicensesTTL,
		"cache_ttl_seats":         appCfg.SeatsTTL,
		"cache_ttl_assets":        appCfg.AssetsTTL,
		"cache_ttl_documents":     appCfg.DocumentsTTL,
		"scope_memo_ttl":          appCfg.ScopeMemoTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}

	return nil
}
