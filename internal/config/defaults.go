package config

const (
	defaultConfigPath       = "~/.config/ecufiler/config.toml"
	defaultMonitorDir       = "~/Desktop/AutotunerFiles"
	defaultDestinationDir   = "~/Desktop/ECU_files"
	defaultStateDir         = "~/.local/share/ecufiler"
	defaultPollInterval     = 2
	defaultStableIntervalMS = 500
	defaultLogFileName      = "Log.txt"
	defaultRecentLimit      = 20
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

var defaultExtensions = []string{".bin"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MonitorDir:     defaultMonitorDir,
			DestinationDir: defaultDestinationDir,
			StateDir:       defaultStateDir,
		},
		Watch: Watch{
			PollInterval:     defaultPollInterval,
			StableIntervalMS: defaultStableIntervalMS,
			Extensions:       append([]string(nil), defaultExtensions...),
			AutoFile:         true,
		},
		Organizer: Organizer{
			LogFileName: defaultLogFileName,
		},
		History: History{
			Enabled:     true,
			RecentLimit: defaultRecentLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
