package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/impactreport/impact/backend/go-services/internal/config"
	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/internal/content/repository"
	"github.com/impactreport/impact/backend/go-services/internal/content/service"
	"github.com/impactreport/impact/backend/go-services/internal/database"
	"github.com/impactreport/impact/backend/go-services/internal/users"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
)

// backends is what the commands operate on; tests swap in memory stores.
type backends struct {
	content *service.Service
	users   *users.Service
	close   func()
}

type opener func(ctx context.Context) (*backends, error)

// openBackends wires the same stores the server uses, minus the cache: the
// CLI writes straight to MongoDB and the server's cache entries expire on
// their own TTL.
func openBackends(ctx context.Context) (*backends, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	h, err := database.NewHandle(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout)
	if err != nil {
		return nil, err
	}
	if err := h.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return &backends{
		content: service.New(content.DefaultRegistry(), repository.NewMongoStore(h), cfg.Content.DefaultSlug),
		users:   users.NewService(users.NewMongoUserRepository(h, "users")),
		close:   func() { _ = h.Close(context.Background()) },
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contentctl",
		Short:         "Inspect and edit impact report sections",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(sectionsCmd())
	rootCmd.AddCommand(getCmd(open))
	rootCmd.AddCommand(putCmd(open))
	rootCmd.AddCommand(createAdminCmd(open))
	return rootCmd
}

func sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List registered sections and their collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tCOLLECTION\tKEYS")
			for _, s := range content.DefaultRegistry().Sections() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", s.Path, s.Collection, len(s.AllowedKeys()))
			}
			return w.Flush()
		},
	}
}

func getCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [section]",
		Short: "Print the API view of a section (all sections when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, _ := cmd.Flags().GetString("slug")
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			var out any
			if len(args) == 0 {
				out, err = b.content.GetAll(cmd.Context(), slug)
			} else {
				out, err = b.content.Get(cmd.Context(), args[0], slug)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringP("slug", "s", "", "Report instance (default from CONTENT_DEFAULT_SLUG)")
	return cmd
}

func putCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <section>",
		Short: "Update a section from a JSON file (or - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, _ := cmd.Flags().GetString("slug")
			file, _ := cmd.Flags().GetString("file")

			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var body map[string]any
			if err := json.NewDecoder(r).Decode(&body); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			data, err := b.content.Put(cmd.Context(), args[0], slug, body)
			if err != nil {
				return err
			}
			logger.Infof("updated %s for %s", args[0], b.content.Slug(slug))
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringP("slug", "s", "", "Report instance (default from CONTENT_DEFAULT_SLUG)")
	cmd.Flags().StringP("file", "f", "-", "JSON file with the section fields")
	return cmd
}

func createAdminCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Create or reset an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			first, _ := cmd.Flags().GetString("first-name")
			last, _ := cmd.Flags().GetString("last-name")
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}

			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			u, err := b.users.CreateUser(cmd.Context(), args[0], password, first, last, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "Password (default $ADMIN_PASSWORD)")
	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
