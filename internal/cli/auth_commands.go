package cli

import (
	"github.com/spf13/cobra"

	"github.com/voyago/voyago-client/internal/auth"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the token bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			result, err := a.auth.Login(ctx, auth.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			return PrintSuccess(map[string]any{"user": result.User})
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and persist the token bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			req := auth.RegisterRequest{}
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.Username, _ = cmd.Flags().GetString("username")
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")

			result, err := a.auth.Register(ctx, req)
			if err != nil {
				return err
			}
			return PrintSuccess(map[string]any{"user": result.User})
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("username", "", "Username (defaults to the email local part)")
	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newForgotPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Ask the backend to start a password reset flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")

			result, err := a.auth.RequestPasswordReset(ctx, auth.PasswordResetRequest{Email: email})
			if err != nil {
				return err
			}
			return PrintSuccess(result)
		},
	}
	cmd.Flags().String("email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			user, err := a.auth.Me(ctx)
			if err != nil {
				return err
			}
			payload := map[string]any{"user": user}
			if bundle, ok := a.tokens.Read(ctx); ok {
				if expiry, known := bundle.ExpiryHint(); known {
					payload["tokenExpiresAt"] = expiry
				}
			}
			return PrintSuccess(payload)
		},
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update profile fields on the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			req := auth.UpdateProfileRequest{}
			req.AvatarURL, _ = cmd.Flags().GetString("avatar-url")
			req.PrimaryContact, _ = cmd.Flags().GetString("primary-contact")
			req.SecondaryContact, _ = cmd.Flags().GetString("secondary-contact")

			user, err := a.auth.UpdateProfile(ctx, req)
			if err != nil {
				return err
			}
			return PrintSuccess(map[string]any{"user": user})
		},
	}
	cmd.Flags().String("avatar-url", "", "Avatar URL")
	cmd.Flags().String("primary-contact", "", "Primary contact number (E.164)")
	cmd.Flags().String("secondary-contact", "", "Secondary contact number (E.164)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted token bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := a.auth.Logout(ctx); err != nil {
				return err
			}
			return PrintSuccess(map[string]string{"status": "logged out"})
		},
	}
}
