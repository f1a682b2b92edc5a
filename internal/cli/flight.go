package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/ifs/internal/domain"
	"github.com/shaiso/ifs/internal/repo"
)

// NewFlightCmd создаёт группу команд для работы с рейсами.
func NewFlightCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flight",
		Short: "Manage scheduled flights",
	}

	cmd.AddCommand(
		newFlightListCmd(env),
		newFlightShowCmd(env),
		newFlightAddCmd(env),
	)

	return cmd
}

var flightHeaders = []string{"ID", "FLIGHT", "ORIGIN", "DEST", "DEPARTURE", "CLAIMED", "CLAIMED_BY"}

func flightRow(f domain.Flight) []string {
	return []string{
		strconv.FormatInt(f.ID, 10),
		f.Designator(),
		f.Origin,
		f.Destination,
		f.DepartureAt.Local().Format(time.RFC3339),
		strconv.FormatBool(f.Claimed),
		f.ClaimedBy,
	}
}

func newFlightListCmd(env Env) *cobra.Command {
	var claimed, unclaimed bool
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flights ordered by departure",
		RunE: func(cmd *cobra.Command, args []string) error {
			if claimed && unclaimed {
				return fmt.Errorf("--claimed and --unclaimed are mutually exclusive")
			}

			_, store, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			filter := repo.FlightFilter{Limit: limit, Offset: offset}
			if claimed || unclaimed {
				filter.Claimed = &claimed
			}

			flights, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, len(flights))
			for i, f := range flights {
				rows[i] = flightRow(f)
			}
			return env.Output().Print(flightHeaders, rows, flights)
		},
	}

	cmd.Flags().BoolVar(&claimed, "claimed", false, "Only claimed flights")
	cmd.Flags().BoolVar(&unclaimed, "unclaimed", false, "Only unclaimed flights")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max flights to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Flights to skip")

	return cmd
}

func newFlightShowCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show flight details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid flight id %q", args[0])
			}

			_, store, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			f, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("flight %d: %w", id, err)
			}
			return env.Output().Print(flightHeaders, [][]string{flightRow(*f)}, f)
		},
	}
}

func newFlightAddCmd(env Env) *cobra.Command {
	var carrier, number, origin, dest, depart, arrive string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a flight (departure as RFC3339 or +duration from now)",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()

			dep, err := parseTime(depart, now)
			if err != nil {
				return fmt.Errorf("--depart: %w", err)
			}
			f := &domain.Flight{
				Carrier:      carrier,
				FlightNumber: number,
				Origin:       origin,
				Destination:  dest,
				DepartureAt:  dep,
			}
			if arrive != "" {
				arr, err := parseTime(arrive, now)
				if err != nil {
					return fmt.Errorf("--arrive: %w", err)
				}
				f.ArrivalAt = &arr
			}

			_, store, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.Create(cmd.Context(), f); err != nil {
				return err
			}

			out := env.Output()
			out.Success(fmt.Sprintf("Flight created: %d", f.ID))
			return out.Print(flightHeaders, [][]string{flightRow(*f)}, f)
		},
	}

	cmd.Flags().StringVar(&carrier, "carrier", "", "Carrier code (required)")
	cmd.Flags().StringVar(&number, "number", "", "Flight number (required)")
	cmd.Flags().StringVar(&origin, "origin", "", "Origin airport")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination airport")
	cmd.Flags().StringVar(&depart, "depart", "", "Departure: RFC3339 or +duration, e.g. +40m (required)")
	cmd.Flags().StringVar(&arrive, "arrive", "", "Arrival: RFC3339 or +duration")
	cmd.MarkFlagRequired("carrier")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("depart")

	return cmd
}

// parseTime разбирает RFC3339 или смещение от now вида "+40m".
func parseTime(s string, now time.Time) (time.Time, error) {
	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(d).UTC().Truncate(time.Microsecond), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
