package config

const (
	CliConfigFileName = "pomgraph"
	DotCliConfigDir   = ".pomgraph"

	SystemDirConfigFilePath = "/usr/local/etc/pomgraph"
	WindowsAppDataEnvVar    = "LOCALAPPDATA"

	EnvPrefix           = "POMGRAPH"
	CliConfigPathEnvVar = "POMGRAPH_CLI_CONFIG_PATH"

	BasePathFlag     = "--base-path"
	ConfigFlag       = "--config"
	LogsLevelFlag    = "--logs-level"
	LogsFileFlag     = "--logs-file"
	SuperpomBumpFlag = "--superpom-bump"
	MismatchFlag     = "--mismatch"
)
