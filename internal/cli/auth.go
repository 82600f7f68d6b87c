package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/presenter"
)

func authPresenter(s *session) *presenter.AuthPresenter {
	return presenter.NewAuthPresenter(s.app.Login, s.app.Register, s.app.Logout, s.app.CurrentUser)
}

func printUser(w io.Writer, u entities.User) {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	fmt.Fprintf(w, "Signed in as %s <%s> (%s)\n", name, u.Email, u.Role)
}

func newLoginCommand(a *app) *cobra.Command {
	var req entities.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				p := authPresenter(s)
				if !p.Login(cmd.Context(), req) {
					return failed(p.State().Error)
				}
				printUser(cmd.OutOrStdout(), *p.State().User)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var req entities.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				p := authPresenter(s)
				if !p.Register(cmd.Context(), req) {
					return failed(p.State().Error)
				}
				printUser(cmd.OutOrStdout(), *p.State().User)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password, at least 8 characters")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				p := authPresenter(s)
				p.Logout(cmd.Context())
				if msg := p.State().Error; msg != "" {
					return failed(msg)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				user := authPresenter(s).CheckAuth(cmd.Context())
				if user == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				printUser(cmd.OutOrStdout(), *user)
				return nil
			})
		},
	}
}
