package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/state"
	"github.com/matzehuels/gridboard/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the layout store",
	}

	cmd.AddCommand(c.storeInfoCommand())
	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// storeInfoCommand creates the "store info" subcommand.
func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show which backend is selected and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			raw, backend, err := c.openStore(ctx, cfg, c.Logger)
			if err != nil {
				return err
			}
			defer raw.Close()

			scoped := store.Scoped(raw, cfg.KeyPrefix())
			printKeyValue("Backend", string(backend))
			printKeyValue("Dashboard", cfg.Store.Dashboard)
			printKeyValue("Prefix", scoped.Prefix())
			printKeyValue("Codec", cfg.Store.Codec)

			for _, key := range []string{state.DefaultLayoutKey, state.DefaultMetaKey} {
				data, ok, err := scoped.Get(ctx, key)
				switch {
				case err != nil:
					printKeyValue(key, StyleWarning.Render(errors.UserMessage(err)))
				case !ok:
					printKeyValue(key, StyleDim.Render("missing"))
				default:
					printKeyValue(key, fmt.Sprintf("%d bytes · %s", len(data), store.Hash(data)[:12]))
				}
			}
			return nil
		},
	}
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the dashboard's stored layout",
		Long: `Delete the stored layout of the selected dashboard. The next command
starts from the default template.

With --all, every key of a local backend (sqlite or file) is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			raw, backend, err := c.openStore(ctx, cfg, c.Logger)
			if err != nil {
				return err
			}
			defer raw.Close()

			if all {
				clearer, ok := raw.(store.Clearer)
				if !ok {
					return errors.New(errors.ErrCodeUnsupported, "the %s backend cannot be cleared wholesale", backend)
				}
				if err := clearer.Clear(ctx); err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "clear store")
				}
				printSuccess("Cleared %s store", backend)
				return nil
			}

			scoped := store.Scoped(raw, cfg.KeyPrefix())
			for _, key := range []string{state.DefaultLayoutKey, state.DefaultMetaKey} {
				if err := scoped.Delete(ctx, key); err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "delete %s", key)
				}
			}
			printSuccess("Cleared dashboard %s", cfg.Store.Dashboard)
			printDetail("Backend: %s", backend)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear every dashboard in a local store")
	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the local store locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := dataDir()
			if err != nil {
				return fmt.Errorf("get data dir: %w", err)
			}
			sc := cfg.StoreConfig(dir)
			printKeyValue("Data", dir)
			printKeyValue("SQLite", sc.SQLitePath)
			printKeyValue("Files", sc.FileDir)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printDetail("Nothing has been stored yet")
			}
			return nil
		},
	}
}
