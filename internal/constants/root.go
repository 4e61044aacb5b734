package constants

const (
	AppName            = "habitgrid"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitgrid"
	Version            = "v0.3.0"

	// DateFormat is the key format of habit records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat identifies a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// DocumentName is the fixed name of the persisted habit document
	DocumentName = "habits.json"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitgrid-"

	// Environment variables
	EnvConfig       = "HABITGRID_CONFIG"
	EnvTimezone     = "HABITGRID_TIMEZONE"
	EnvDBConnection = "HABITGRID_DB_CONNECTION"
	EnvAMQPURL      = "HABITGRID_AMQP_URL"
	EnvStore        = "HABITGRID_STORE"

	// AMQP defaults
	DefaultAMQPExchange = "habitgrid"
	DefaultAMQPQueue    = "habitgrid.changes"

	DefaultTimezone = "Local"
)
