package server

type HTTPServerConfig struct {
	Address        string `mapstructure:"address"         yaml:"address"         validate:"required,hostname_port"`
	ReadTimeout    string `mapstructure:"read_timeout"    yaml:"read_timeout"`
	WriteTimeout   string `mapstructure:"write_timeout"   yaml:"write_timeout"`
	IdleTimeout    string `mapstructure:"idle_timeout"    yaml:"idle_timeout"`
	RequestTimeout string `mapstructure:"request_timeout" yaml:"request_timeout"`
	// PrincipalHeader carries the external id of the user already
	// authenticated by the fronting proxy.
	PrincipalHeader string `mapstructure:"principal_header" yaml:"principal_header" validate:"required"`
}

type MetricsServerConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}
