package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/audit"
	"go.pilab.hu/mcportal/services"
	"gopkg.in/yaml.v3"
)

type userRow struct {
	ID         string     `yaml:"id"`
	Username   string     `yaml:"minecraft_username"`
	UUID       string     `yaml:"uuid"`
	IsAdmin    bool       `yaml:"is_admin"`
	LoginCount int64      `yaml:"login_count"`
	CreatedAt  time.Time  `yaml:"created_at"`
	LastLogin  *time.Time `yaml:"last_login,omitempty"`
}

func toRow(u *domain.User) userRow {
	return userRow{
		ID:         u.ID,
		Username:   u.MinecraftUsername,
		UUID:       u.UUID,
		IsAdmin:    u.IsAdmin,
		LoginCount: u.LoginCount,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}

// withUserService opens storage for the duration of fn.
func withUserService(cmd *cobra.Command, env *Env, fn func(*services.UserService) error) error {
	ctx := cmd.Context()
	storage, err := env.OpenStorage(ctx, env.cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Close(ctx)

	return fn(services.NewUserService(storage.Repos.UserRepository(), audit.New(os.Stderr)))
}

func newUsersCmd(env *Env) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:     "users",
		Short:   "Manage portal users",
		Aliases: []string{"user"},
	}
	usersCmd.AddCommand(
		newUsersListCmd(env),
		newSetAdminCmd(env, "promote", "Grant admin rights to a user", true),
		newSetAdminCmd(env, "demote", "Revoke admin rights from a user", false),
	)
	return usersCmd
}

func newUsersListCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserService(cmd, env, func(users *services.UserService) error {
				list, err := users.List(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([]userRow, 0, len(list))
				for _, u := range list {
					rows = append(rows, toRow(u))
				}

				switch output {
				case "yaml":
					return yaml.NewEncoder(cmd.OutOrStdout()).Encode(rows)
				case "table":
					return writeTable(cmd.OutOrStdout(), rows)
				default:
					return fmt.Errorf("unknown output format %q", output)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func writeTable(w io.Writer, rows []userRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tADMIN\tLOGINS\tID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\n", r.Username, r.IsAdmin, r.LoginCount, r.ID)
	}
	return tw.Flush()
}

func newSetAdminCmd(env *Env, use, short string, isAdmin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <minecraft_username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserService(cmd, env, func(users *services.UserService) error {
				user, err := users.SetAdminByUsername(cmd.Context(), args[0], isAdmin)
				if err != nil {
					return fmt.Errorf("%s %s: %w", use, args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is_admin=%t\n", user.MinecraftUsername, user.IsAdmin)
				return nil
			})
		},
	}
}
