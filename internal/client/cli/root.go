package cli

import (
	"github.com/commoni/commoni/internal/buildinfo"
	"github.com/commoni/commoni/internal/client/config"
	"github.com/spf13/cobra"
)

// RootCmd builds the commonictl command tree.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "commonictl",
		Short: "Manage a commoni monitoring server",
		Long: `commonictl administers a commoni server and talks to its gRPC endpoint.

Operator commands (user, agent, token, revocations) work on the server's
database and revocation store directly and take the server's settings.
Remote commands (login, logout, whoami, passwd, ping, host, readings) call
the endpoint with the session kept in the token file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		a.userCmd(),
		a.agentCmd(),
		a.tokenCmd(),
		a.revocationsCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.passwdCmd(),
		a.pingCmd(),
		a.hostCmd(),
		a.readingsCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(a.out)
		},
	}
}
