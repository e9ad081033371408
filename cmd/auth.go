package cmd

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/credentials"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials for LLM providers",
	Long: `Store and manage API credentials for LLM providers.

Credentials are stored in ~/.kaku/credentials.json and used
as a fallback when environment variables are not set.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key",
	Long: `Store an API key for a provider. The key is read from a masked prompt,
or from stdin when it is not a terminal:

  echo "$KEY" | kaku auth set anthropic`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: credentials.Providers(),
	RunE:      runAuthSet,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers have credentials",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [provider]",
	Short: "Remove stored credentials",
	Long: `Remove stored credentials for a provider.

If no provider is specified, removes all stored credentials.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func checkProvider(provider string) error {
	if !slices.Contains(credentials.Providers(), provider) {
		return fmt.Errorf("unknown provider %q (valid: %s)", provider, strings.Join(credentials.Providers(), ", "))
	}
	return nil
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	provider := args[0]
	if err := checkProvider(provider); err != nil {
		return err
	}

	key, err := readKey(provider)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("API key is required")
	}

	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}
	if err := store.Set(provider, key); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s credentials stored in %s\n", provider, store.Path())
	return nil
}

func readKey(provider string) (string, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	p := promptui.Prompt{
		Label: fmt.Sprintf("%s API key", provider),
		Mask:  '*',
	}
	key, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}
	creds, err := store.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Credentials file: %s\n\n", store.Path())
	fmt.Fprintln(out, "Provider     Status")
	fmt.Fprintln(out, "--------     ------")
	for _, p := range credentials.Providers() {
		status := "not configured"
		if env := credentials.EnvVar(p); os.Getenv(env) != "" {
			status = fmt.Sprintf("configured (env var %s)", env)
		} else if creds.Keys[p] != "" {
			status = "configured (stored)"
		}
		fmt.Fprintf(out, "%-12s %s\n", p, status)
	}
	fmt.Fprintf(out, "%-12s %s\n", "ollama", "available (local)")
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := store.Remove(""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All stored credentials removed.")
		return nil
	}

	if err := checkProvider(args[0]); err != nil {
		return err
	}
	if err := store.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s credentials removed.\n", args[0])
	return nil
}
