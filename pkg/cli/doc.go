/*
Package cli provides command-line helpers shared by the hassil-parser
commands: exit codes, output formatters and signal handling.

Exit Codes:

Commands return typed errors and main maps them with ExitCode:

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

ConfigError exits with 2, ValidationError with 3, anything else with 1.

Output Formatting:

Results can be printed as text, JSON or CSV. Values implementing Table are
aligned in columns as text and written row by row as CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, rows); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
