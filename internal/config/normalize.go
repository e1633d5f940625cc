package config

import "strings"

// normalize expands paths and backfills zero values left by partial config
// files so validation can assume a fully populated struct.
func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.StagingDir, &c.Paths.OutputDir, &c.Paths.LogDir} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Packing.CeilingMB == 0 {
		c.Packing.CeilingMB = defaultCeilingMB
	}
	if c.Packing.LeadImageCount == 0 {
		c.Packing.LeadImageCount = defaultLeadImageCount
	}
	if strings.TrimSpace(c.KCC.Binary) == "" {
		c.KCC.Binary = defaultKCCBinary
	}
	if strings.TrimSpace(c.KCC.Profile) == "" {
		c.KCC.Profile = defaultKCCProfile
	}
	if c.KCC.Gamma == 0 {
		c.KCC.Gamma = defaultKCCGamma
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
