package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Database: DatabaseServerConfig{
			Type: "sqlite",
			SQLite: DatabaseSQLiteConfig{
				Path: "./data/docarchive.db",
			},
			Postgres: DatabasePostgresConfig{
				Host:         "localhost",
				Port:         5432,
				Database:     "docarchive",
				User:         "docarchive",
				SSLMode:      "disable",
				MaxOpenConns: 25,
				MaxIdleConns: 5,
			},
		},

		Storage: StorageServerConfig{
			UploadRoot: "./data/uploads",
		},

		Upload: UploadServerConfig{
			MaxFileSize:  50 << 20,
			MaxFiles:     10,
			MaxBatchSize: 200 << 20,
			AllowedExtensions: []string{
				"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
				"txt", "md", "zip", "png", "jpg", "jpeg",
			},
		},

		HTTP: HTTPServerConfig{
			Address:         ":8080",
			ReadTimeout:     "30s",
			WriteTimeout:    "5m",
			IdleTimeout:     "2m",
			RequestTimeout:  "5m",
			PrincipalHeader: "X-Archive-User",
		},

		Metrics: MetricsServerConfig{
			Enabled: true,
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("database.type", defaults.Database.Type)
	viper.SetDefault("database.sqlite.path", defaults.Database.SQLite.Path)
	viper.SetDefault("database.postgres.host", defaults.Database.Postgres.Host)
	viper.SetDefault("database.postgres.port", defaults.Database.Postgres.Port)
	viper.SetDefault("database.postgres.database", defaults.Database.Postgres.Database)
	viper.SetDefault("database.postgres.user", defaults.Database.Postgres.User)
	viper.SetDefault("database.postgres.password", defaults.Database.Postgres.Password)
	viper.SetDefault("database.postgres.ssl_mode", defaults.Database.Postgres.SSLMode)
	viper.SetDefault("database.postgres.max_open_conns", defaults.Database.Postgres.MaxOpenConns)
	viper.SetDefault("database.postgres.max_idle_conns", defaults.Database.Postgres.MaxIdleConns)

	viper.SetDefault("storage.upload_root", defaults.Storage.UploadRoot)

	viper.SetDefault("upload.max_file_size", defaults.Upload.MaxFileSize)
	viper.SetDefault("upload.max_files", defaults.Upload.MaxFiles)
	viper.SetDefault("upload.max_batch_size", defaults.Upload.MaxBatchSize)
	viper.SetDefault("upload.allowed_extensions", defaults.Upload.AllowedExtensions)

	viper.SetDefault("http.address", defaults.HTTP.Address)
	viper.SetDefault("http.read_timeout", defaults.HTTP.ReadTimeout)
	viper.SetDefault("http.write_timeout", defaults.HTTP.WriteTimeout)
	viper.SetDefault("http.idle_timeout", defaults.HTTP.IdleTimeout)
	viper.SetDefault("http.request_timeout", defaults.HTTP.RequestTimeout)
	viper.SetDefault("http.principal_header", defaults.HTTP.PrincipalHeader)

	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
}
