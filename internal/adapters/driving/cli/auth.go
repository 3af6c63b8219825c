package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driving/oauth"
)

// loginTimeout bounds how long auth login waits for the browser.
const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Notion credentials",
	Long: `Store and inspect the credentials sources use to reach Notion.

Internal integrations use a token from https://www.notion.so/my-integrations.
Public integrations use OAuth; configure notion.oauth.client_id,
notion.oauth.client_secret and notion.oauth.redirect_url first.

Sources without stored credentials fall back to the NOTION_TOKEN
environment variable.`,
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token [source-id]",
	Short: "Store an internal integration token",
	Long: `Store an internal integration token for a source. The token is read
from --token, or from the terminal without echo.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSetToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status [source-id]",
	Short: "Show how a source authenticates",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthStatus,
}

var authOAuthURLCmd = &cobra.Command{
	Use:   "oauth-url",
	Short: "Print the OAuth authorisation URL",
	Args:  cobra.NoArgs,
	RunE:  runAuthOAuthURL,
}

var authOAuthExchangeCmd = &cobra.Command{
	Use:   "oauth-exchange [source-id] [code]",
	Short: "Exchange an OAuth code for a source",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthOAuthExchange,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [source-id]",
	Short: "Connect a source through the browser",
	Long: `Open the Notion authorisation page and receive the redirect on the
configured notion.oauth.redirect_url, which must be a localhost URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

var (
	authToken      string
	authState      string
	authNoBrowser  bool
	authLoginState = func() string { return uuid.NewString() }
	openBrowser    = oauth.OpenBrowser
)

func init() {
	authSetTokenCmd.Flags().StringVar(&authToken, "token", "", "Integration token (prompted when empty)")
	authOAuthURLCmd.Flags().StringVar(&authState, "state", "", "OAuth state (random when empty)")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "Print the URL instead of opening a browser")

	authCmd.AddCommand(authSetTokenCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authOAuthURLCmd)
	authCmd.AddCommand(authOAuthExchangeCmd)
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSetToken(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	token := authToken
	if token == "" {
		cmd.Print("Integration token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	if err := authService.SetToken(cmd.Context(), args[0], token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	cmd.Printf("Token stored for source %s.\n", args[0])
	printAuthStatus(cmd, args[0])
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	if _, _, err := authService.Status(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to get auth status: %w", err)
	}
	printAuthStatus(cmd, args[0])
	return nil
}

func printAuthStatus(cmd *cobra.Command, sourceID string) {
	method, workspace, err := authService.Status(cmd.Context(), sourceID)
	if err != nil {
		return
	}
	cmd.Printf("  Method:    %s\n", method)
	if workspace != "" {
		cmd.Printf("  Workspace: %s\n", workspace)
	}
}

func runAuthOAuthURL(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	u, err := authService.OAuthURL(authState)
	if err != nil {
		return fmt.Errorf("failed to build authorisation URL: %w", err)
	}
	cmd.Println(u)
	return nil
}

func runAuthOAuthExchange(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if err := authService.ExchangeCode(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	cmd.Printf("Connected source %s.\n", args[0])
	printAuthStatus(cmd, args[0])
	return nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if authService == nil || configStore == nil {
		return errors.New("auth service not configured")
	}
	redirect := configStore.GetString("notion.oauth.redirect_url")
	if redirect == "" {
		return errors.New("notion.oauth.redirect_url is not set")
	}

	state := authLoginState()
	authURL, err := authService.OAuthURL(state)
	if err != nil {
		return fmt.Errorf("failed to build authorisation URL: %w", err)
	}

	server, err := oauth.NewCallbackServer(redirect, state)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer func() { _ = server.Stop() }()

	cmd.Println("Open this URL to authorise notion-nlp:")
	cmd.Printf("  %s\n\n", authURL)
	if !authNoBrowser {
		if err := openBrowser(authURL); err != nil {
			cmd.Printf("Could not open a browser: %v\n", err)
		}
	}
	cmd.Println("Waiting for authorisation...")

	code, err := server.WaitForCode(cmd.Context(), loginTimeout)
	if err != nil {
		return fmt.Errorf("authorisation failed: %w", err)
	}
	if err := authService.ExchangeCode(cmd.Context(), args[0], code); err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	cmd.Printf("Connected source %s.\n", args[0])
	printAuthStatus(cmd, args[0])
	return nil
}

// readSecret reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, an empty token is rejected later
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
