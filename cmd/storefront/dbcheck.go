package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/dbcheck"
)

func dbcheckCmd() *cobra.Command {
	var (
		hosts   []string
		users   []string
		dbName  string
		sslmode string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dbcheck",
		Short: "Find which PostgreSQL host and user accept a password",
		Long: "Tries every --host with every --user, in order, and stops at the first\n" +
			"that connects. The password is read from STOREFRONT_DB_PASSWORD or stdin.",
		// no session or backend needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := dbcheck.Target{Users: users, Database: dbName, SSLMode: sslmode, Timeout: timeout}
			for _, h := range hosts {
				e, err := dbcheck.ParseEndpoint(h)
				if err != nil {
					return err
				}
				t.Endpoints = append(t.Endpoints, e)
			}
			if len(t.Endpoints) == 0 || len(t.Users) == 0 {
				return fmt.Errorf("need at least one --host and one --user")
			}
			t.Password = os.Getenv("STOREFRONT_DB_PASSWORD")
			if t.Password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				t.Password = readSecret(cmd.InOrStdin())
			}

			ok, attempts := dbcheck.ProbeAll(cmd.Context(), t)
			w := cmd.OutOrStdout()
			for _, at := range attempts {
				fmt.Fprintln(w, at)
			}
			if ok == nil {
				return fmt.Errorf("no combination connected (%d tried)", len(attempts))
			}
			fmt.Fprintf(w, "\nworking settings: host %s, user %s, database %s\n", ok.Endpoint, ok.User, dbName)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&hosts, "host", nil, "host or host:port, repeatable")
	f.StringSliceVar(&users, "user", []string{"postgres"}, "user name, repeatable")
	f.StringVar(&dbName, "database", "postgres", "database name")
	f.StringVar(&sslmode, "sslmode", "require", "lib/pq sslmode")
	f.DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout per attempt")
	return cmd
}
