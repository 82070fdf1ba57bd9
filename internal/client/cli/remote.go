package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/commoni/commoni/internal/api"
	"github.com/commoni/commoni/internal/client/client"
	"github.com/commoni/commoni/internal/client/config"
	"github.com/spf13/cobra"
)

var errNoAgentToken = errors.New("no agent token: pass --agent-token or register the host with --save-agent-token")

// withRemote connects with the saved session and writes the session back
// when the call changed it, e.g. after a transparent renewal.
func (a *App) withRemote(cmd *cobra.Command, fn func(ctx context.Context, r Remote) error) error {
	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	tokens, err := client.LoadTokens(cfg.TokenFile)
	if err != nil {
		return err
	}

	r, err := a.dial(cfg)
	if err != nil {
		return err
	}
	defer r.Close()
	r.SetTokens(tokens)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	runErr := fn(ctx, r)

	if after := r.Tokens(); after != tokens {
		if err := client.SaveTokens(cfg.TokenFile, after); err != nil {
			return errors.Join(runErr, fmt.Errorf("save tokens: %w", err))
		}
	}
	return runErr
}

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login USER_ID",
		Short: "Log in and keep the session in the token file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := GetPassword(a.out, "Enter password")
			if err != nil {
				return err
			}
			defer WipeByteArray(pw)

			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				if err := r.Login(ctx, args[0], string(pw)); err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				fmt.Fprintf(a.out, "Logged in as %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				if err := r.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Logged out")
				return nil
			})
		},
	}
}

func (a *App) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				if err := r.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "OK")
				return nil
			})
		},
	}
}

func (a *App) hostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Register, list, update and delete monitored hosts",
	}

	var (
		req       api.RegisterHostRequest
		saveAgent bool
	)
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a host and print its agent token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				resp, err := r.RegisterHost(ctx, &req)
				if err != nil {
					return err
				}
				if saveAgent {
					r.SetAgentToken(resp.AgentToken)
				}
				fmt.Fprintf(a.out, "Host %d registered\n", resp.Host.ID)
				fmt.Fprintf(a.out, "%s token: %s\n", resp.TokenType, resp.AgentToken)
				return nil
			})
		},
	}
	register.Flags().StringVar(&req.Name, "name", "", "host name")
	register.Flags().StringVar(&req.IP, "ip", "", "host IP address")
	register.Flags().Int64Var(&req.MemoryMB, "memory", 0, "installed memory, MB")
	register.Flags().Int64Var(&req.DiskGB, "disk", 0, "disk size, GB")
	register.Flags().BoolVar(&saveAgent, "save-agent-token", false, "keep the agent token in the token file")
	_ = register.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				hosts, err := r.ListHosts(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tIP\tMEMORY_MB\tDISK_GB\tCREATED")
				for _, h := range hosts {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
						h.ID, h.Name, h.IP, h.MemoryMB, h.DiskGB, h.CreatedAt.UTC().Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	show := &cobra.Command{
		Use:   "show HOST_ID",
		Short: "Print one host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[0])
			if err != nil {
				return err
			}
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				h, err := r.GetHost(ctx, hostID)
				if err != nil {
					return err
				}
				a.printHost(h)
				return nil
			})
		},
	}

	var patch api.RegisterHostRequest
	update := &cobra.Command{
		Use:   "update HOST_ID",
		Short: "Change the name, address or capacity of a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[0])
			if err != nil {
				return err
			}
			upd := &api.UpdateHostRequest{HostID: hostID}
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &patch.Name
			}
			if flags.Changed("ip") {
				upd.IP = &patch.IP
			}
			if flags.Changed("memory") {
				upd.MemoryMB = &patch.MemoryMB
			}
			if flags.Changed("disk") {
				upd.DiskGB = &patch.DiskGB
			}
			if upd.Name == nil && upd.IP == nil && upd.MemoryMB == nil && upd.DiskGB == nil {
				return errNothingToUpdate
			}

			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				h, err := r.UpdateHost(ctx, upd)
				if err != nil {
					return err
				}
				a.printHost(h)
				return nil
			})
		},
	}
	update.Flags().StringVar(&patch.Name, "name", "", "host name")
	update.Flags().StringVar(&patch.IP, "ip", "", "host IP address")
	update.Flags().Int64Var(&patch.MemoryMB, "memory", 0, "installed memory, MB")
	update.Flags().Int64Var(&patch.DiskGB, "disk", 0, "disk size, GB")

	del := &cobra.Command{
		Use:   "delete HOST_ID",
		Short: "Delete a host and revoke its agent token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[0])
			if err != nil {
				return err
			}
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				if err := r.DeleteHost(ctx, hostID); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Host %d deleted\n", hostID)
				return nil
			})
		},
	}

	cmd.AddCommand(register, list, show, update, del)
	return cmd
}

func (a *App) printHost(h *api.Host) {
	fmt.Fprintf(a.out, "id:      %d\n", h.ID)
	fmt.Fprintf(a.out, "name:    %s\n", h.Name)
	fmt.Fprintf(a.out, "ip:      %s\n", h.IP)
	fmt.Fprintf(a.out, "memory:  %d MB\n", h.MemoryMB)
	fmt.Fprintf(a.out, "disk:    %d GB\n", h.DiskGB)
	fmt.Fprintf(a.out, "created: %s\n", h.CreatedAt.UTC().Format(time.RFC3339))
}

func (a *App) readingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readings",
		Short: "Push and query host utilisation",
	}

	var (
		sample     api.PushReadingRequest
		agentToken string
	)
	push := &cobra.Command{
		Use:   "push",
		Short: "Push one sample with the agent token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				if agentToken != "" {
					r.SetAgentToken(agentToken)
				}
				if r.Tokens().AgentToken == "" {
					return errNoAgentToken
				}
				id, err := r.PushReading(ctx, &sample)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Reading %d stored\n", id)
				return nil
			})
		},
	}
	push.Flags().Float64Var(&sample.CPU, "cpu", 0, "CPU utilisation, percent")
	push.Flags().Float64Var(&sample.Memory, "memory", 0, "memory utilisation, percent")
	push.Flags().Float64Var(&sample.Disk, "disk", 0, "disk utilisation, percent")
	push.Flags().StringVar(&agentToken, "agent-token", "", "agent token to push with")

	var (
		since time.Duration
		limit int
	)
	list := &cobra.Command{
		Use:   "list HOST_ID",
		Short: "List readings of a host, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[0])
			if err != nil {
				return err
			}
			req := &api.ListReadingsRequest{HostID: hostID, Limit: limit}
			if since > 0 {
				req.To = a.now().UTC()
				req.From = req.To.Add(-since)
			}

			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				readings, err := r.ListReadings(ctx, req)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COLLECTED\tCPU\tMEMORY\tDISK")
				for _, rd := range readings {
					fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\n",
						rd.CollectedAt.UTC().Format(time.RFC3339), rd.CPU, rd.Memory, rd.Disk)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().DurationVar(&since, "since", 0, "only readings newer than this (default: last 24h)")
	list.Flags().IntVar(&limit, "limit", 0, "maximum number of readings (default 100)")

	latest := &cobra.Command{
		Use:   "latest HOST_ID",
		Short: "Print the most recent reading of a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := parseHostID(args[0])
			if err != nil {
				return err
			}
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				rd, err := r.LatestReading(ctx, hostID)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "collected: %s\n", rd.CollectedAt.UTC().Format(time.RFC3339))
				fmt.Fprintf(a.out, "cpu:       %.1f\n", rd.CPU)
				fmt.Fprintf(a.out, "memory:    %.1f\n", rd.Memory)
				fmt.Fprintf(a.out, "disk:      %.1f\n", rd.Disk)
				return nil
			})
		},
	}

	cmd.AddCommand(push, list, latest)
	return cmd
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the account of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				u, err := r.GetUser(ctx)
				if err != nil {
					return err
				}
				if u.Name != "" {
					fmt.Fprintf(a.out, "%s (%s)\n", u.ID, u.Name)
				} else {
					fmt.Fprintln(a.out, u.ID)
				}
				return nil
			})
		},
	}
}

func (a *App) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the current account",
		Long: `
Prompts for a new password and sets it. The session stays usable until its
access token expires; log in again afterwards.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := GetNewPassword(a.out)
			if err != nil {
				return err
			}
			defer WipeByteArray(pw)

			return a.withRemote(cmd, func(ctx context.Context, r Remote) error {
				p := string(pw)
				if _, err := r.UpdateUser(ctx, &api.UpdateUserRequest{Password: &p}); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Password changed")
				return nil
			})
		},
	}
}
