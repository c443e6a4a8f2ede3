package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xacademy/academy/core"
)

var errLoginFailed = errors.New("login failed")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the configured private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if c.Session().IsAuthenticated() {
			fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s\n", c.Session().User().Name())
			return nil
		}

		ok, err := c.Login(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return errLoginFailed
		}
		printUser(cmd, c.Session().User())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		return c.Logout(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		printUser(cmd, c.Session().User())
		if exp, ok := c.Session().ExpiresAt(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", exp.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func printUser(cmd *cobra.Command, u *core.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", u.Name(), u.WalletAddress)
	fmt.Fprintf(out, "Role: %s\n", u.Role)
	if u.Bio != "" {
		fmt.Fprintf(out, "Bio: %s\n", u.Bio)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
