package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/stores"
)

// readSecret takes the password from the environment or the first line
// of stdin.
func readSecret(in io.Reader) string {
	if p := os.Getenv("STOREFRONT_PASSWORD"); p != "" {
		return p
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func loginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session for this profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				password = readSecret(cmd.InOrStdin())
			}
			st := stores.NewAuthStore(a.auth)
			if err := st.Login(cmd.Context(), domain.LoginRequest{Username: username, Password: password}); err != nil {
				return failure(st.State().Err, err)
			}
			u := st.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", u.Username, strings.Join(u.Roles, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session for this profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := stores.NewAuthStore(a.auth).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	var req domain.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				req.Password = readSecret(cmd.InOrStdin())
			}
			st := stores.NewAuthStore(a.auth)
			if err := st.Register(cmd.Context(), req); err != nil {
				return failure(st.State().Err, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Run `storefront login -u %s` to sign in.\n", strings.TrimSpace(req.Username), strings.TrimSpace(req.Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user of this profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			st := stores.NewAuthStore(a.auth).State()
			if !st.IsAuthenticated || st.User == nil {
				fmt.Fprintf(w, "Not logged in (profile %s)\n", a.cfg.Profile)
				return nil
			}
			fmt.Fprintf(w, "%s <%s>\nroles:   %s\nprofile: %s\n", st.User.Username, st.User.Email, strings.Join(st.User.Roles, ", "), a.cfg.Profile)
			if exp, ok := a.auth.TokenExpiry(); ok {
				state := "expires"
				if time.Now().After(exp) {
					state = "expired"
				}
				fmt.Fprintf(w, "token:   %s %s\n", state, exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

// requireLogin stops a command early when no session is stored.
func requireLogin(a *app) error {
	if !a.auth.IsAuthenticated() {
		return fmt.Errorf("not logged in; run `storefront login` first")
	}
	return nil
}

func requireAdmin(a *app) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	if !a.auth.HasRole(domain.RoleAdmin) && !a.auth.HasRole(domain.RoleStaff) {
		return fmt.Errorf("this command needs an admin or staff account")
	}
	return nil
}
