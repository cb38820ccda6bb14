package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Care                      CareConfig
	Jobs                      JobsConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// CareConfig holds the tunable parameters of the care-team and
// escalation engine. These were fixed system-wide values in earlier
// deployments; they are named here so they can be tuned per
// deployment and overridden in tests.
type CareConfig struct {
	InvitationTTLDays         int // pending invitations expire after this many days
	EscalationWindowHours     int // trailing window for counting high alerts
	EscalationAlertThreshold  int // high alerts within the window that trigger escalation
	NotificationRetentionDays int // read notifications older than this are swept
}

// JobsConfig holds the cron specs for the scheduled sweeps.
type JobsConfig struct {
	InvitationSweepSpec   string
	NotificationSweepSpec string
	DailyReportSpec       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "vitalwatch"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	invitationTTL, err := strconv.Atoi(getEnv("INVITATION_TTL_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVITATION_TTL_DAYS: %w", err)
	}

	escalationWindow, err := strconv.Atoi(getEnv("ESCALATION_WINDOW_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid ESCALATION_WINDOW_HOURS: %w", err)
	}

	escalationThreshold, err := strconv.Atoi(getEnv("ESCALATION_ALERT_THRESHOLD", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid ESCALATION_ALERT_THRESHOLD: %w", err)
	}

	notificationRetention, err := strconv.Atoi(getEnv("NOTIFICATION_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION_DAYS: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Care: CareConfig{
			InvitationTTLDays:         invitationTTL,
			EscalationWindowHours:     escalationWindow,
			EscalationAlertThreshold:  escalationThreshold,
			NotificationRetentionDays: notificationRetention,
		},
		Jobs: JobsConfig{
			InvitationSweepSpec:   getEnv("JOB_INVITATION_SWEEP", "0 2 * * *"),
			NotificationSweepSpec: getEnv("JOB_NOTIFICATION_SWEEP", "0 3 * * 0"),
			DailyReportSpec:       getEnv("JOB_DAILY_REPORT", "30 0 * * *"),
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
