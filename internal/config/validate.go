package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePacking(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("paths.staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	return nil
}

func (c *Config) validatePacking() error {
	if c.Packing.CeilingMB < 1 {
		return fmt.Errorf("packing.ceiling_mb must be at least 1, got %d", c.Packing.CeilingMB)
	}
	if c.Packing.LeadImageCount < 1 {
		return fmt.Errorf("packing.lead_image_count must be at least 1, got %d", c.Packing.LeadImageCount)
	}
	if c.KCC.Gamma <= 0 || c.KCC.Gamma > 3 {
		return fmt.Errorf("kcc.gamma must be in (0, 3], got %v", c.KCC.Gamma)
	}
	return nil
}

func (c *Config) validateEmail() error {
	if !c.Email.Enabled {
		return nil
	}
	missing := make([]string, 0, 4)
	for _, field := range []struct {
		name  string
		value string
	}{
		{"email.smtp_host", c.Email.SMTPHost},
		{"email.username", c.Email.Username},
		{"email.password", c.Email.Password},
		{"email.from", c.Email.From},
		{"email.kindle_address", c.Email.KindleAddress},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("email delivery enabled but missing: %s", strings.Join(missing, ", "))
	}
	if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port out of range: %d", c.Email.SMTPPort)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
