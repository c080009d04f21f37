package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"calorie-tracker/internal/models"
	"calorie-tracker/internal/stats"

	"github.com/spf13/cobra"
)

func (a *app) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, password, err := a.credentials(cmd)
			if err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.gate.Signup(username, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signup successful!")
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var rec models.NutrientRecord

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a custom food for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, id, err := a.login(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			added, err := s.tracker.AddFood(id, rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", added)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&rec.Name, "name", "", "food name")
	f.IntVar(&rec.Calories, "calories", 0, "calories")
	f.IntVar(&rec.Protein, "protein", 0, "protein in grams")
	f.IntVar(&rec.Fat, "fat", 0, "fat in grams")
	f.IntVar(&rec.Carbs, "carbs", 0, "carbohydrates in grams")
	return cmd
}

func (a *app) addFoodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-food NAME",
		Short: "Log a predefined food for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, id, err := a.login(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			added, err := s.tracker.AddCatalogFood(id, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", added)
			return nil
		},
	}
}

func (a *app) foodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "foods",
		Short: "List the predefined foods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, e := range s.tracker.Catalog().Entries() {
				fmt.Fprintln(cmd.OutOrStdout(), e.Record())
			}
			return nil
		},
	}
}

func (a *app) logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show today's food log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, id, err := a.login(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			log, err := s.tracker.TodayLog(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Food log for %s\n", s.tracker.Today())
			if len(log) == 0 {
				fmt.Fprintln(out, "No food added yet!")
				return nil
			}
			for _, rec := range log {
				fmt.Fprintln(out, rec)
			}
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty today's food log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, id, err := a.login(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.tracker.ResetToday(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Log for %s has been reset.\n", s.tracker.Today())
			return nil
		},
	}
}

func (a *app) reportCmd() *cobra.Command {
	var (
		period  string
		asJSON  bool
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize intake over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := stats.ParsePeriod(period)
			if err != nil {
				return err
			}
			s, id, err := a.login(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := s.tracker.Summary(id, p)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			writeReport(cmd.OutOrStdout(), p, summary, showAll)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&period, "period", string(stats.Today), "today, last7, last30 or yearly")
	f.BoolVar(&asJSON, "json", false, "print the summary as JSON")
	f.BoolVar(&showAll, "cumulative", false, "include the cumulative calorie series")
	return cmd
}

func writeReport(w io.Writer, p stats.Period, s stats.Summary, cumulative bool) {
	fmt.Fprintf(w, "%s\n", p.Label())
	fmt.Fprintf(w, "Calories: %d\n", s.Totals.Calories)
	fmt.Fprintf(w, "Protein: %dg\n", s.Totals.Protein)
	fmt.Fprintf(w, "Fat: %dg\n", s.Totals.Fat)
	fmt.Fprintf(w, "Carbs: %dg\n", s.Totals.Carbs)
	fmt.Fprintf(w, "Remaining Calories: %d\n", s.RemainingCalories)

	if !s.HasData() {
		fmt.Fprintln(w, "No data for this period.")
		return
	}

	if sh := s.MacroShares; sh != nil {
		fmt.Fprintf(w, "Macros: protein %.1f%%, fat %.1f%%, carbs %.1f%%\n",
			sh.Protein*100, sh.Fat*100, sh.Carbs*100)
	}
	for _, m := range s.MacroProgress {
		fmt.Fprintf(w, "%s goal: %d/%dg (%.0f%%)\n", m.Name, m.Consumed, m.Goal, m.Percent)
	}
	if cumulative {
		for _, pt := range s.Cumulative {
			fmt.Fprintf(w, "%s %d/%d\n", pt.Date, pt.Calories, pt.Limit)
		}
	}
}
