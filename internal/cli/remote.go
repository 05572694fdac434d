package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/ironclock/internal/client"
	"github.com/existflow/ironclock/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the connection to an IronClock server",
	Long: `While logged in, every command works on the server instead of the local
database. Use --local to reach the local database anyway.

Examples:
  clock remote set-server https://clock.example.com
  clock remote login
  clock remote status`,
}

var setServerCmd = &cobra.Command{
	Use:   "set-server [url]",
	Short: "Set the server URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetServer,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the server",
	RunE:  runRegister,
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server and login state",
	RunE:  runRemoteStatus,
}

func init() {
	remoteCmd.AddCommand(setServerCmd)
	remoteCmd.AddCommand(loginCmd)
	remoteCmd.AddCommand(logoutCmd)
	remoteCmd.AddCommand(registerCmd)
	remoteCmd.AddCommand(remoteStatusCmd)
}

func remoteClient() (*client.Client, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return client.NewDefault(dir), nil
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runSetServer(cmd *cobra.Command, args []string) error {
	c, err := remoteClient()
	if err != nil {
		return err
	}
	if err := c.SetServer(args[0]); err != nil {
		return fmt.Errorf("failed to save server: %w", err)
	}
	fmt.Printf("✓ Server set to %s\n", strings.TrimRight(args[0], "/"))
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := remoteClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	password := readPassword("Password: ")

	fmt.Println("🔄 Logging in...")
	if err := c.Login(context.Background(), username, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := remoteClient()
	if err != nil {
		return err
	}

	if !c.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	if err := c.Logout(context.Background()); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := remoteClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	password := readPassword("Password: ")
	confirm := readPassword("Confirm Password: ")
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := c.Register(context.Background(), username, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runRemoteStatus(cmd *cobra.Command, args []string) error {
	c, err := remoteClient()
	if err != nil {
		return err
	}

	serverURL, username, userID := c.Status()
	fmt.Printf("🌐 Server: %s\n", serverURL)
	if !c.IsLoggedIn() {
		fmt.Println("👤 Not logged in, commands use the local database")
		return nil
	}
	fmt.Printf("👤 Logged in as %s (%s)\n", username, shortID(userID))
	return nil
}
