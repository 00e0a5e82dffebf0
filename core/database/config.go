package database

// Config holds PostgreSQL connection settings for the persistent store backend.
type Config struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConnections int
}
