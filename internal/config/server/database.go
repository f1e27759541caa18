package server

// DatabaseServerConfig holds archive store configuration
type DatabaseServerConfig struct {
	Type     string                 `mapstructure:"type"     yaml:"type"     validate:"required,oneof=sqlite postgres"`
	SQLite   DatabaseSQLiteConfig   `mapstructure:"sqlite"   yaml:"sqlite"`
	Postgres DatabasePostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// DatabaseSQLiteConfig holds SQLite-specific configuration
type DatabaseSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DatabasePostgresConfig holds PostgreSQL-specific configuration
type DatabasePostgresConfig struct {
	Host         string `mapstructure:"host"           yaml:"host"`
	Port         int    `mapstructure:"port"           yaml:"port"           validate:"omitempty,min=1,max=65535"`
	Database     string `mapstructure:"database"       yaml:"database"`
	User         string `mapstructure:"user"           yaml:"user"`
	Password     string `mapstructure:"password"       yaml:"password"`
	SSLMode      string `mapstructure:"ssl_mode"       yaml:"ssl_mode"       validate:"omitempty,oneof=disable require verify-ca verify-full"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns" validate:"gte=0"`
}
