// IFS CLI — инструмент командной строки для работы с таблицей рейсов
// напрямую через хранилище.
//
// Использование:
//
//	ifs [--config PATH] [--json] <command> [flags]
//
// Команды:
//
//	migrate  Создать схему
//	seed     Заполнить пустую таблицу демо-рейсами
//	flight   Управление рейсами
//	tick     Один тик планировщика
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/ifs/internal/cli"
	"github.com/shaiso/ifs/internal/config"
	"github.com/shaiso/ifs/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "ifs",
		Short:         "IFS CLI — flight claim-and-process tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (default: $IFS_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	env := cli.Env{
		Config: func() (config.Config, error) { return config.Load(configPath) },
		Store:  cli.OpenStore,
		Output: func() *cli.Output { return cli.NewOutput(jsonOutput) },
		Logger: func() *slog.Logger { return telemetry.NewLogger(os.Stderr, os.Getenv("LOG_FORMAT"), telemetry.LogLevel()) },
	}

	rootCmd.AddCommand(
		cli.NewMigrateCmd(env),
		cli.NewSeedCmd(env),
		cli.NewFlightCmd(env),
		cli.NewTickCmd(env),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
