package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var expandExisting []string

var expandCmd = &cobra.Command{
	Use:   "expand <concept>",
	Short: "Expand an existing graph from one of its concepts",
	Long: `Runs one expansion pass from the given concept and prints the new
nodes and edges as JSON. Pass the labels already present in the graph via
--existing so only new concepts come back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		seed := strings.TrimSpace(args[0])
		result, err := a.service.Expand(ctx, seed, expandExisting)
		if err != nil {
			return fmt.Errorf("expand %q: %w", seed, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	expandCmd.Flags().StringSliceVarP(&expandExisting, "existing", "e", nil,
		"concept labels already in the graph (comma-separated)")
	rootCmd.AddCommand(expandCmd)
}
