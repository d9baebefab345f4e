// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// AssetHub: the MongoDB connection, the session cookie, cache lifetimes,
// and the document URL prefix.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for the selected-organization session
	SessionDomain string // Cookie domain (blank means current host)

	// PrefsProfile names the preferences document that persists the
	// service-wide organization selection.
	PrefsProfile string

	// DocumentURLPrefix is prepended to generated document stored names
	// to form file URLs (e.g., "/files/documents").
	DocumentURLPrefix string

	// Cache lifetimes per entity list. Expired entries still serve as a
	// fallback when a refresh fails; these control when a revalidation
	// fetch is triggered.
	OrganizationsTTL time.Duration
	PeopleTTL        time.Duration
	TeamsTTL         time.Duration
	LicensesTTL      time.Duration
	SeatsTTL         time.Duration
	AssetsTTL        time.Duration
	DocumentsTTL     time.Duration

	// ScopeMemoTTL bounds how long a resolved organization lookup is
	// memoized before the scope re-reads it from the store.
	ScopeMemoTTL time.Duration
}
