package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/config"
	"github.com/law-makers/boxscore/internal/ui"
)

var storeKeyCmd = &cobra.Command{
	Use:   "store-key",
	Short: "Manage REST store API keys in the OS keyring",
	Long: `Keys saved here are used by the rest store driver when store_key is not
set in the config file or environment. Entries are keyed by store URL.`,
	// no application is needed to edit the keyring
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var storeKeySetCmd = &cobra.Command{
	Use:     "set <store-url>",
	Short:   "Save the API key read from stdin",
	Example: `  echo "$SERVICE_KEY" | boxscore store-key set https://abc.supabase.co`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading key from stdin: %w", err)
		}
		if err := config.SaveStoreKey(args[0], strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s key for %s\n", ui.Success("Saved"), args[0])
		return nil
	},
}

var storeKeyDeleteCmd = &cobra.Command{
	Use:   "delete <store-url>",
	Short: "Remove a saved API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteStoreKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s key for %s\n", ui.Success("Deleted"), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeKeyCmd)
	storeKeyCmd.AddCommand(storeKeySetCmd, storeKeyDeleteCmd)
}
