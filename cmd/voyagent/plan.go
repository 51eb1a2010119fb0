package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/internal/agent/core"
	"github.com/voyagent/voyagent/internal/agent/telemetry"
)

func planCMD() *cobra.Command {
	var (
		cfgPath   string
		origin    string
		dest      string
		startDate string
		endDate   string
		travelers int
		budget    float64
		interests string
		useMocks  bool
		weather   string
		asJSON    bool
	)

	var plan = &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			req := core.UserRequest{
				Origin:      origin,
				Destination: dest,
				StartDate:   startDate,
				EndDate:     endDate,
				Travelers:   travelers,
				BudgetTotal: budget,
				Flags: core.RequestFlags{
					UseMocks:        useMocks,
					WeatherOverride: weather,
				},
			}
			for _, i := range strings.Split(interests, ",") {
				if i = strings.TrimSpace(i); i != "" {
					req.Interests = append(req.Interests, i)
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			tele := telemetry.New(cfg.Telemetry, nil)
			orch, err := core.NewOrchestrator(cfg, tele)
			if err != nil {
				return err
			}
			defer orch.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.General.DefaultTimeout)
			defer cancel()
			result, err := orch.PlanTrip(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printItinerary(result)
			return nil
		},
	}

	plan.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	plan.Flags().StringVar(&origin, "origin", "", "origin city")
	plan.Flags().StringVar(&dest, "destination", "", "destination city")
	plan.Flags().StringVar(&startDate, "start", time.Now().AddDate(0, 0, 14).Format("2006-01-02"), "start date (YYYY-MM-DD)")
	plan.Flags().StringVar(&endDate, "end", time.Now().AddDate(0, 0, 17).Format("2006-01-02"), "end date (YYYY-MM-DD)")
	plan.Flags().IntVar(&travelers, "travelers", 2, "number of travelers")
	plan.Flags().Float64Var(&budget, "budget", 1000, "total budget in dollars")
	plan.Flags().StringVar(&interests, "interests", "", "comma-separated interests (bbq, live music, ...)")
	plan.Flags().BoolVar(&useMocks, "mocks", false, "use sample data instead of live providers")
	plan.Flags().StringVar(&weather, "weather", "", "force a weather scenario (rainy or sunny)")
	plan.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	_ = plan.MarkFlagRequired("origin")
	_ = plan.MarkFlagRequired("destination")
	return plan
}

func printItinerary(result *core.TripResult) {
	it := result.Itinerary
	fmt.Printf("Trip to %s (%s to %s), %d travelers\n", it.Destination, it.StartDate, it.EndDate, it.Travelers)
	if it.Transport != nil {
		fmt.Printf("Getting there: %s, %.0f miles, $%.2f\n", it.Transport.Mode, it.Transport.DistanceMiles, it.Transport.Cost)
	}
	if it.Lodging != nil {
		fmt.Printf("Staying at: %s ($%.2f/night, %d nights, $%.2f)\n", it.Lodging.Name, it.Lodging.PricePerNight, it.Lodging.Nights, it.Lodging.TotalPrice)
	}
	if it.Weather != nil {
		fmt.Printf("Weather: %s, high %d low %d, %.0f%% rain chance\n", it.Weather.Summary, it.Weather.HighF, it.Weather.LowF, it.Weather.RainChance*100)
	}
	fmt.Println()
	for _, day := range it.Days {
		fmt.Printf("%s\n", day.Date)
		for _, item := range day.Items {
			line := fmt.Sprintf("  %s: %s", item.TimeBlock, item.Name)
			if item.Cost > 0 {
				line += fmt.Sprintf(" ($%.2f)", item.Cost)
			}
			fmt.Println(line)
		}
	}
	fmt.Println()
	fmt.Printf("Budget: $%.2f total; transport $%.2f, lodging $%.2f, activities $%.2f, remaining $%.2f\n",
		it.Budget.Total, it.Budget.Transport, it.Budget.Lodging, it.Budget.Activities, it.Budget.Remaining)
	fmt.Printf("Pack for %s in a %s climate: %s\n", it.Clothing.Season, it.Clothing.ClimateZone, it.Clothing.Summary)
	fmt.Printf("Playlist (%s): ", strings.Join(it.Music.Genres, "/"))
	for i, s := range it.Music.Songs {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%s", s.Title)
	}
	fmt.Println()
	if len(it.Flags) > 0 {
		fmt.Printf("Caveats: %s\n", strings.Join(it.Flags, ", "))
	}
}
