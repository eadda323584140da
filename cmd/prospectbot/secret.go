package main

import (
	"bufio"
	"fmt"
	"strings"

	"evolve-engine/internal/secrets"

	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials stored in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Store a credential read from stdin",
	Long: `Reads one line from stdin and stores it in the OS keychain under NAME.
Stored credentials are used whenever the environment variable is unset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := bufio.NewScanner(cmd.InOrStdin())
		sc.Scan()
		if err := sc.Err(); err != nil {
			return err
		}
		if err := secrets.Set(args[0], strings.TrimSpace(sc.Text())); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var secretListCmd = &cobra.Command{
	Use:   "names",
	Short: "List credential names the keychain may hold",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range secrets.Names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}

func init() {
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd, secretListCmd)
}
