package cmd

import (
	"context"

	"github.com/athlink/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	logoutForce bool
	verifyEmail string
	verifyCode  string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage authentication with Athlink",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Athlink",
	Long:  "Authenticate with Athlink using email and password",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAuthService(env).Login(ctx)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from Athlink",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAuthService(env).Logout(ctx, logoutForce)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Display current authenticated user",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAuthService(env).WhoAmI(ctx)
	}),
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify your email address with the code we sent",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAuthService(env).Verify(ctx, verifyEmail, verifyCode)
	}),
}

var resendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Send a new verification code",
	Long:  "Send a new verification code. Another code can be requested once the 60 second countdown ends.",
	RunE: run(func(ctx context.Context, env service.Env) error {
		return service.NewAuthService(env).Resend(ctx, verifyEmail)
	}),
}

func init() {
	logoutCmd.Flags().BoolVarP(&logoutForce, "force", "f", false, "Logout without confirmation")

	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "Account email")
	verifyCmd.Flags().StringVar(&verifyCode, "code", "", "Verification code")
	resendCmd.Flags().StringVar(&verifyEmail, "email", "", "Account email")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(verifyCmd)
	authCmd.AddCommand(resendCmd)
}
