package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var discoverDisciplines []string

var discoverCmd = &cobra.Command{
	Use:   "discover <concept>",
	Short: "Discover concepts related to a seed concept",
	Long: `Runs one discovery pass for the given seed concept and prints the
resulting graph as JSON. With --disciplines, candidate generation is
restricted to the listed disciplines.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		seed := strings.TrimSpace(args[0])
		result, err := func() (any, error) {
			if len(discoverDisciplines) > 0 {
				return a.service.DiscoverConstrained(ctx, seed, discoverDisciplines)
			}
			return a.service.Discover(ctx, seed)
		}()
		if err != nil {
			return fmt.Errorf("discover %q: %w", seed, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	discoverCmd.Flags().StringSliceVarP(&discoverDisciplines, "disciplines", "d", nil,
		"restrict generation to these disciplines (comma-separated)")
	rootCmd.AddCommand(discoverCmd)
}
