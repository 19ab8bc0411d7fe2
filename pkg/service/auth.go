package service

import (
	"context"
	"fmt"

	"github.com/athlink/cli/pkg/formatter"
	"github.com/athlink/cli/pkg/logger"
	"github.com/athlink/cli/pkg/notice"
)

type AuthService struct {
	Env
}

// NewAuthService creates a new auth service
func NewAuthService(env Env) *AuthService {
	return &AuthService{Env: env}
}

// Login handles user login
func (s *AuthService) Login(ctx context.Context) error {
	if ok, _ := s.App.Restore(ctx); ok {
		user, _ := s.App.Session.User()
		s.Out.Warning("Already logged in as %s", user.Username)
		confirm, err := s.In.Confirm("Continue with new login?")
		if err != nil || !confirm {
			return err
		}
	}

	email, err := s.In.Required("Email: ")
	if err != nil {
		return err
	}
	password, err := s.In.Password("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	s.Out.Info("Authenticating...")
	user, err := s.App.Login(ctx, email, password)
	if err != nil {
		s.Out.Error("Login failed: %v", err)
		return err
	}

	s.Out.Success("✓ Login successful!")
	s.Out.Info("Logged in as %s (%s)", formatter.Bold.Sprint(user.Username), user.Role)
	if !user.EmailVerified {
		s.Out.Warning("Email not verified. Run 'athlink-cli auth verify' with the code from your inbox")
	}
	return s.Out.PrintRecord("", user, formatter.UserFields(user))
}

// Logout handles user logout
func (s *AuthService) Logout(ctx context.Context, force bool) error {
	if ok, _ := s.App.Session.Restore(); !ok {
		s.Out.Warning("Not logged in")
		return nil
	}

	if !force {
		confirm, err := s.In.Confirm("Logout?")
		if err != nil || !confirm {
			return err
		}
	}

	if err := s.App.Logout(ctx); err != nil {
		s.Out.Error("Failed to clear credentials: %v", err)
		return err
	}
	s.Out.Success("✓ Logged out")
	return nil
}

// WhoAmI shows the signed-in account as the server sees it
func (s *AuthService) WhoAmI(ctx context.Context) error {
	if _, err := s.requireUser(ctx); err != nil {
		return err
	}

	user, err := s.App.API.Me(ctx).Result()
	if err != nil {
		return err
	}
	if err := s.App.Session.UpdateUser(user); err != nil {
		logger.Warn("Failed to save refreshed user", "error", err)
	}
	return s.Out.PrintRecord("Current user", user, formatter.UserFields(user))
}

// Verify submits an email verification code
func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	var err error
	if email == "" {
		if email, err = s.In.Required("Email: "); err != nil {
			return err
		}
	}
	if code == "" {
		if code, err = s.In.Required("Verification code: "); err != nil {
			return err
		}
	}

	env := s.App.API.VerifyEmail(ctx, email, code)
	if !env.Success {
		s.Out.Notice(notice.Error(env.FailureMessage()))
		return env.Err()
	}
	s.Out.Notice(notice.Success(messageOr(env.Message, "Email verified")))
	return nil
}

// Resend sends a new verification code, then holds the next resend behind
// the countdown. After each countdown the user may send another.
func (s *AuthService) Resend(ctx context.Context, email string) error {
	if email == "" {
		var err error
		if email, err = s.In.Required("Email: "); err != nil {
			return err
		}
	}

	timer := s.App.ResendTimer()
	done := make(chan struct{}, 1)
	timer.OnTick(func(remaining int) {
		s.Out.Status("%s", formatter.Countdown(remaining))
	})
	timer.OnDone(func() {
		done <- struct{}{}
	})
	defer timer.Stop()

	for {
		if !timer.CanResend() {
			return fmt.Errorf("resend is not available yet")
		}

		env := s.App.API.ResendCode(ctx, email)
		if !env.Success {
			s.Out.Notice(notice.Error(env.FailureMessage()))
			return env.Err()
		}
		s.Out.Notice(notice.Success(messageOr(env.Message, "Verification code sent to "+email)))

		timer.Start()
		select {
		case <-ctx.Done():
			s.Out.Line("")
			return ctx.Err()
		case <-done:
		}
		s.Out.Line("")

		again, err := s.In.Confirm("Send another code?")
		if err != nil || !again {
			return nil
		}
	}
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
