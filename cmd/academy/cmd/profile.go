package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xacademy/academy/core"
)

var profileFlags struct {
	name, bio, avatar, email string
}

var profileCmd = &cobra.Command{
	Use:   "profile [address]",
	Short: "Show your profile, or the public profile of an address",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			c, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.API().PublicProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printUser(cmd, u)
			return nil
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		u, err := c.API().Profile(cmd.Context())
		if err != nil {
			return err
		}
		printUser(cmd, u)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your display name, bio, avatar or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := &core.ProfileUpdate{}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.DisplayName = &profileFlags.name
		}
		if flags.Changed("bio") {
			in.Bio = &profileFlags.bio
		}
		if flags.Changed("avatar") {
			in.AvatarURL = &profileFlags.avatar
		}
		if flags.Changed("email") {
			in.Email = &profileFlags.email
		}

		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		u, err := c.API().UpdateProfile(cmd.Context(), in)
		if err != nil {
			return err
		}
		printUser(cmd, u)
		return nil
	},
}

var becomeInstructorCmd = &cobra.Command{
	Use:   "become-instructor",
	Short: "Upgrade your account to instructor",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		_, msg, err := c.API().BecomeInstructor(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var certificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "List your course certificates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedIn(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		certs, err := c.API().Certificates(cmd.Context())
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "COURSE\tISSUED")
		for _, cert := range certs {
			title := cert.CourseID
			if cert.Course != nil {
				title = cert.Course.Title
			}
			fmt.Fprintf(w, "%s\t%s\n", title, cert.IssuedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileFlags.name, "name", "", "Display name")
	f.StringVar(&profileFlags.bio, "bio", "", "Short biography")
	f.StringVar(&profileFlags.avatar, "avatar", "", "Avatar URL")
	f.StringVar(&profileFlags.email, "email", "", "Contact email")

	profileCmd.AddCommand(profileUpdateCmd, becomeInstructorCmd)
	rootCmd.AddCommand(profileCmd, certificatesCmd)
}
