package config

const (
	defaultStagingDir     = "~/.local/share/tankobon/staging"
	defaultOutputDir      = "~/.local/share/tankobon/volumes"
	defaultLogDir         = "~/.local/share/tankobon/logs"
	defaultCeilingMB      = 47
	defaultLeadImageCount = 8
	defaultKCCBinary      = "kcc-c2e"
	defaultKCCProfile     = "KPW5"
	defaultKCCGamma       = 0.9
	defaultSMTPHost       = "smtp.gmail.com"
	defaultSMTPPort       = 465
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Packing: Packing{
			CeilingMB:      defaultCeilingMB,
			LeadImageCount: defaultLeadImageCount,
		},
		KCC: KCC{
			Binary:  defaultKCCBinary,
			Profile: defaultKCCProfile,
			Gamma:   defaultKCCGamma,
		},
		Email: Email{
			SMTPHost: defaultSMTPHost,
			SMTPPort: defaultSMTPPort,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Packing:        true,
			Delivery:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
