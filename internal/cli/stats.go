package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := st.Count()
	if err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}
	dim, err := st.Dimension()
	if err != nil {
		return fmt.Errorf("failed to read dimension: %w", err)
	}

	fmt.Printf("Store:     %s (%s)\n", cfg.Store.Path, storeType(cfg.Store.Type))
	fmt.Printf("Chunks:    %d\n", count)
	if dim > 0 {
		fmt.Printf("Dimension: %d\n", dim)
	} else {
		fmt.Println("Dimension: not set (store is empty)")
	}
	return nil
}

func storeType(typ string) string {
	if typ == "" {
		return "file"
	}
	return typ
}
