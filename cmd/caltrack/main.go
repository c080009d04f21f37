// Command caltrack logs food and prints nutrition reports from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. getenv feeds the config loader.
func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	root := &cobra.Command{
		Use:           "caltrack",
		Short:         "Track calories and macronutrients",
		Long:          "caltrack keeps a daily food log per user and summarizes it against calorie and macro goals.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to YAML config file")
	flags.StringVarP(&a.username, "user", "u", "", "username")
	flags.StringVarP(&a.password, "password", "p", "", "password (prompted when omitted)")
	flags.StringVar(&a.date, "date", "", "act on this day (YYYY-MM-DD) instead of today")

	root.AddCommand(
		a.signupCmd(),
		a.addCmd(),
		a.addFoodCmd(),
		a.foodsCmd(),
		a.logCmd(),
		a.resetCmd(),
		a.reportCmd(),
	)
	return root
}
