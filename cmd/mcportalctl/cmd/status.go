package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.pilab.hu/mcportal/internal/mcstatus"
	"go.pilab.hu/mcportal/services"
)

func newStatusCmd(env *Env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the game server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = env.cfg.MCServerAddr
			}
			pinger := env.Pinger
			if pinger == nil {
				pinger = mcstatus.NewPinger(env.cfg.MCStatusTimeout)
			}

			st := services.NewStatusService(pinger, addr, nil, nil).Poll(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:   %s\n", addr)
			fmt.Fprintf(out, "online:   %t (%s)\n", st.Online, st.Source)
			fmt.Fprintf(out, "version:  %s\n", st.ServerVersion)
			fmt.Fprintf(out, "players:  %d/%d\n", st.PlayersOnline, st.MaxPlayers)
			fmt.Fprintf(out, "motd:     %s\n", st.MOTD)
			fmt.Fprintf(out, "latency:  %.0fms\n", st.Latency)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server address host[:port] (default MC_SERVER_ADDR)")
	return cmd
}
