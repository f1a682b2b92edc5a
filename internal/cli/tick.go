package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/ifs/internal/action"
	"github.com/shaiso/ifs/internal/scheduler"
	"github.com/shaiso/ifs/internal/seed"
)

// NewTickCmd создаёт команду однократного тика.
// Удобно для ручной проверки окон без запуска ifs-scheduler.
func NewTickCmd(env Env) *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run a single claim-and-process tick over the configured windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			logger := env.Logger()
			pcfg := scheduler.Config{
				Store:    store,
				Action:   action.NewLog(logger),
				Windows:  cfg.Windows,
				Claimant: cfg.InstanceID,
				Logger:   logger,
			}
			if withSeed {
				pcfg.Seeder = seed.New(seed.Config{Store: store, Logger: logger})
			}

			poller, err := scheduler.New(pcfg)
			if err != nil {
				return err
			}

			report := poller.Tick(cmd.Context())

			rows := make([][]string, len(report.Results))
			for i, res := range report.Results {
				flightID, errText := "", ""
				if res.FlightID != 0 {
					flightID = strconv.FormatInt(res.FlightID, 10)
				}
				if res.Err != nil {
					errText = res.Err.Error()
				}
				rows[i] = []string{res.Window.String(), string(res.Outcome), flightID, errText}
			}
			return env.Output().Print([]string{"WINDOW", "OUTCOME", "FLIGHT_ID", "ERROR"}, rows, tickJSON(report))
		},
	}

	cmd.Flags().BoolVar(&withSeed, "seed", false, "Seed an empty table before the tick")

	return cmd
}

type tickResultJSON struct {
	Window   string `json:"window"`
	Outcome  string `json:"outcome"`
	FlightID int64  `json:"flight_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func tickJSON(report scheduler.TickReport) []tickResultJSON {
	out := make([]tickResultJSON, len(report.Results))
	for i, res := range report.Results {
		out[i] = tickResultJSON{
			Window:   res.Window.Name,
			Outcome:  string(res.Outcome),
			FlightID: res.FlightID,
		}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return out
}
