package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/s0up4200/linkup/librelinkup"
)

// Test seams for interactive input
var (
	readPassword           = term.ReadPassword
	isTerminal             = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }
	stdin        io.Reader = os.Stdin
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a reusable token",
	Long: `Log in to LibreLinkUp and print the session token and user id.

Store them as librelinkup.token and librelinkup.user_id (or LINKUP_LIBRELINKUP_TOKEN
and LINKUP_LIBRELINKUP_USER_ID) to skip the login on later runs.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	creds, err := resolveCredentials()
	if err != nil {
		return err
	}
	opts, err := clientOptions()
	if err != nil {
		return err
	}

	session, err := login(ctx, creds, opts)
	if err != nil {
		return describeLoginError(err)
	}

	fmt.Println("✓ Logged in")
	fmt.Printf("Region:  %s\n", displayRegion(session.Region))
	fmt.Printf("Token:   %s\n", session.Token)
	fmt.Printf("User ID: %s\n", session.UserID)
	if !session.Expires.IsZero() {
		fmt.Printf("Expires: %s\n", session.Expires.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// describeLoginError adds a hint for the failures a user can act on
func describeLoginError(err error) error {
	if errors.Is(err, librelinkup.ErrPrivacyPolicyAcceptanceRequired) {
		return fmt.Errorf("%w: accept the updated terms in the LibreLinkUp app, then retry", err)
	}
	return fmt.Errorf("login failed: %w", err)
}

func displayRegion(region string) string {
	if region == "" {
		return "global"
	}
	return region
}

// resolveCredentials takes credentials from the config, prompting for
// whatever is missing when stdin is a terminal
func resolveCredentials() (librelinkup.Credentials, error) {
	creds := librelinkup.Credentials{
		Username: cfg.LibreLinkUp.Email,
		Password: cfg.LibreLinkUp.Password,
	}
	if creds.Username != "" && creds.Password != "" {
		return creds, nil
	}

	if !isTerminal() {
		return creds, fmt.Errorf("librelinkup.email and librelinkup.password are required (set LINKUP_LIBRELINKUP_EMAIL and LINKUP_LIBRELINKUP_PASSWORD)")
	}

	if creds.Username == "" {
		fmt.Fprint(os.Stderr, "Email: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return creds, fmt.Errorf("failed to read email: %w", err)
		}
		creds.Username = strings.TrimSpace(line)
	}

	if creds.Password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return creds, fmt.Errorf("failed to read password: %w", err)
		}
		creds.Password = string(password)
	}

	if creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("email and password must not be empty")
	}
	return creds, nil
}
