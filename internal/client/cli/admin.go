package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/commoni/commoni/internal/server/auth"
	"github.com/commoni/commoni/internal/server/services"
	"github.com/spf13/cobra"
)

var errNothingToUpdate = errors.New("nothing to update")

func (a *App) withAdmin(cmd *cobra.Command, fn func(ctx context.Context, adm Admin) error) error {
	cfg, err := serverConfigFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	adm, err := a.openAdmin(ctx, cfg)
	if err != nil {
		return err
	}
	defer adm.Close()

	return fn(ctx, adm)
}

func (a *App) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create, show, update and delete accounts",
	}
	addServerFlags(cmd.PersistentFlags())

	var name string
	create := &cobra.Command{
		Use:   "create USER_ID",
		Short: "Create an account, prompting for its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := GetNewPassword(a.out)
			if err != nil {
				return err
			}
			defer WipeByteArray(pw)

			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				if err := adm.CreateUser(ctx, args[0], name, string(pw)); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "User %s created\n", args[0])
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")

	del := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete an account with its hosts and revoke all of its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				if err := adm.DeleteUser(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "User %s deleted\n", args[0])
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show USER_ID",
		Short: "Print an account and its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				u, err := adm.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				st := "active"
				if u.Deleted {
					st = "deleted"
				}
				fmt.Fprintf(a.out, "id:      %s\n", u.ID)
				fmt.Fprintf(a.out, "name:    %s\n", u.Name)
				fmt.Fprintf(a.out, "status:  %s\n", st)
				fmt.Fprintf(a.out, "created: %s\n", u.CreatedAt.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}

	var (
		newName     string
		newPassword bool
	)
	update := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Rename an account or set a new password",
		Long: `
Changes the display name (--name) or prompts for a new password (--password).
A new password stops renewal of the account's current session.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd services.UserUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &newName
			}
			if newPassword {
				pw, err := GetNewPassword(a.out)
				if err != nil {
					return err
				}
				defer WipeByteArray(pw)
				p := string(pw)
				upd.Password = &p
			}
			if upd.Name == nil && upd.Password == nil {
				return errNothingToUpdate
			}

			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				if err := adm.UpdateUser(ctx, args[0], upd); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "User %s updated\n", args[0])
				return nil
			})
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new display name")
	update.Flags().BoolVar(&newPassword, "password", false, "prompt for a new password")

	cmd.AddCommand(create, show, update, del)
	return cmd
}

func (a *App) agentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent tokens",
	}
	addServerFlags(cmd.PersistentFlags())

	revoke := &cobra.Command{
		Use:   "revoke USER_ID HOST_ID",
		Short: "Revoke the agent token of a host",
		Long: `
Revokes the agent token registered for the host, invalidating it immediately.
The agent can no longer push readings until the host is registered again.
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[1])
			if err != nil {
				return err
			}
			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				if err := adm.RevokeAgent(ctx, args[0], hostID); err != nil {
					return fmt.Errorf("revocation failed: %w", err)
				}
				fmt.Fprintf(a.out, "Agent token of host %d revoked\n", hostID)
				return nil
			})
		},
	}

	cmd.AddCommand(revoke)
	return cmd
}

func (a *App) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with issued tokens",
	}
	addServerFlags(cmd.PersistentFlags())

	inspect := &cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Verify a token's signature and print its claims",
		Long: `
Checks the signature, algorithm and expiry of TOKEN with the server secret and
prints its claims. The revocation store is not consulted, so a token that
was superseded or logged out still inspects as valid.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := serverConfigFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			v, err := auth.NewVerifier(auth.VerifierConfig{
				Secret:    []byte(cfg.SecretKey),
				Algorithm: cfg.Algorithm,
				Now:       a.now,
			})
			if err != nil {
				return err
			}

			tok, err := v.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			a.printToken(tok)
			return nil
		},
	}

	cmd.AddCommand(inspect)
	return cmd
}

func (a *App) printToken(tok *auth.ParsedToken) {
	fmt.Fprintf(a.out, "type:    %s\n", tok.Type())
	fmt.Fprintf(a.out, "user:    %s\n", tok.UserID())
	if hostID, ok := tok.HostID(); ok {
		fmt.Fprintf(a.out, "host:    %d\n", hostID)
	}
	if exp, ok := tok.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "expires: %s (in %s)\n", exp.UTC().Format("2006-01-02T15:04:05Z"), exp.Sub(a.now()).Round(time.Second))
	} else {
		fmt.Fprintln(a.out, "expires: never")
	}
}

func (a *App) revocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revocations",
		Short: "Maintain the revocation store",
	}
	addServerFlags(cmd.PersistentFlags())

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from a table-backed store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdmin(cmd, func(ctx context.Context, adm Admin) error {
				n, err := adm.PurgeRevocations(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Purged %d expired entries\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(purge)
	return cmd
}

func parseHostID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid host id %q", s)
	}
	return id, nil
}
