package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.MonitorDir == "" {
		return errors.New("paths.monitor_dir must be set")
	}
	if c.Paths.DestinationDir == "" {
		return errors.New("paths.destination_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.MonitorDir == c.Paths.DestinationDir {
		return errors.New("paths.monitor_dir and paths.destination_dir must differ")
	}
	if rel, err := filepath.Rel(c.Paths.DestinationDir, c.Paths.MonitorDir); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.New("paths.monitor_dir must not live inside paths.destination_dir")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.PollInterval <= 0 {
		return errors.New("watch.poll_interval must be positive")
	}
	if c.Watch.StableIntervalMS <= 0 {
		return errors.New("watch.stable_interval_ms must be positive")
	}
	if c.Watch.MetricsBind != "" {
		if _, _, err := net.SplitHostPort(c.Watch.MetricsBind); err != nil {
			return fmt.Errorf("watch.metrics_bind: %w", err)
		}
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	if strings.ContainsAny(c.Organizer.LogFileName, `/\`) {
		return fmt.Errorf("organizer.log_file_name must be a bare file name, got %q", c.Organizer.LogFileName)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
}
