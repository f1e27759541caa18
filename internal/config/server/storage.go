package server

// StorageServerConfig locates the physical archive
type StorageServerConfig struct {
	UploadRoot string `mapstructure:"upload_root" yaml:"upload_root" validate:"required"`
}

// UploadServerConfig holds the limits applied to every upload batch
type UploadServerConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size"      yaml:"max_file_size"      validate:"gt=0"`
	MaxFiles          int      `mapstructure:"max_files"          yaml:"max_files"          validate:"gt=0"`
	MaxBatchSize      int64    `mapstructure:"max_batch_size"     yaml:"max_batch_size"     validate:"gtefield=MaxFileSize"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions" validate:"min=1,dive,required,excludes=."`
}
