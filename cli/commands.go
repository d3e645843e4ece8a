package cli

// Globals defines global flags available to all commands.
type Globals struct {
	ConfigFile string `help:"Path to the configuration file." short:"c" default:"beanclerk-config.yml" type:"path"`
	Verbose    bool   `help:"Log debug messages."`
	Telemetry  bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Import  ImportCmd  `cmd:"" help:"Import new transactions into the input file."`
	Check   CheckCmd   `cmd:"" help:"Check the configuration, the input file and the marks of all accounts."`
	History HistoryCmd `cmd:"" help:"List recorded imports."`
}
