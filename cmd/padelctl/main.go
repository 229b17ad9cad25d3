// Command padelctl is the operator CLI for the padel tournament service.
//
// Usage:
//
//	padelctl import --name "Spring Open" --groups 2 --csv pairs.csv
//	padelctl import --name "Spring Open" --groups 2 --sheet <spreadsheet-id> --range "Pairs!A:B"
//	padelctl standings --group <group-id>
//	padelctl seed-cup --tournament <id> --name Gold --groups <g1>,<g2>
//	padelctl hash-key <admin-key>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"padel-app/internal/bracket"
	"padel-app/internal/config"
	"padel-app/internal/importer"
	"padel-app/internal/standings"
	"padel-app/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	root := &cobra.Command{
		Use:           "padelctl",
		Short:         "Padel tournament operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(importCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(seedCupCmd())
	root.AddCommand(hashKeyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type env struct {
	cfg    *config.Config
	store  store.Store
	logger *slog.Logger
}

func run(fn func(ctx context.Context, e env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger()
	st, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if _, ok := st.(*store.MemoryStore); ok {
		logger.Warn("no POSTGRES_DSN or DB_PATH set, changes will not be kept")
	}
	return fn(ctx, env{cfg: cfg, store: st, logger: logger})
}

func importCmd() *cobra.Command {
	var (
		name, csvPath, sheetID, readRange string
		groups, numSets                   int
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a tournament with groups and round robin matches from a list of pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (csvPath == "") == (sheetID == "") {
				return errors.New("exactly one of --csv or --sheet is required")
			}
			return run(func(ctx context.Context, e env) error {
				pairs, err := loadPairs(ctx, e.cfg, csvPath, sheetID, readRange)
				if err != nil {
					return err
				}
				if numSets == 0 {
					numSets = e.cfg.DefaultNumSets
				}
				summary, err := importer.Import(ctx, e.store, importer.Request{
					Name:    name,
					NumSets: numSets,
					Groups:  groups,
					Pairs:   pairs,
				}, e.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tournament %s: %d groups, %d pairs, %d matches\n",
					summary.Tournament.ID, len(summary.Groups), summary.Competitors, summary.Matches)
				for _, g := range summary.Groups {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\n", g.Name, g.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Tournament name")
	cmd.Flags().IntVar(&groups, "groups", 1, "Number of groups")
	cmd.Flags().IntVar(&numSets, "num-sets", 0, "Sets per match, 2 or 3 (default DEFAULT_NUM_SETS)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with one pair per row")
	cmd.Flags().StringVar(&sheetID, "sheet", "", "Google Sheets spreadsheet id")
	cmd.Flags().StringVar(&readRange, "range", "A:B", "Sheet range to read")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loadPairs(ctx context.Context, cfg *config.Config, csvPath, sheetID, readRange string) ([]string, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return importer.ReadCSV(f)
	}
	src, err := importer.NewSheetSource(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, err
	}
	return src.Pairs(ctx, sheetID, readRange)
}

func standingsCmd() *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the standings of a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e env) error {
				rows, err := standings.NewService(e.store, e.cfg.Standings()).GroupStandings(ctx, groupID)
				if err != nil {
					return err
				}
				printStandings(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "Group id")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func printStandings(out io.Writer, rows []standings.Row) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPAIR\tP\tW\tL\tSETS\tGAMES\tPTS\tNOTE")
	for _, r := range rows {
		note := ""
		switch {
		case r.Overridden:
			note = fmt.Sprintf("override (auto %d)", r.AutoRank)
		case r.Unresolved:
			note = fmt.Sprintf("tie %d unresolved", r.TieGroup)
		case r.TieGroup > 0:
			note = fmt.Sprintf("tie %d", r.TieGroup)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d-%d\t%d-%d\t%d\t%s\n",
			r.Rank, r.Name, r.Played, r.Won, r.Lost,
			r.SetsFor, r.SetsAgainst, r.GamesFor, r.GamesAgainst, r.Points, note)
	}
	_ = tw.Flush()
}

func seedCupCmd() *cobra.Command {
	var (
		tournamentID, name string
		groupIDs           []string
		seed               int64
	)
	cmd := &cobra.Command{
		Use:   "seed-cup",
		Short: "Draw cup semifinals from group standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e env) error {
				table := standings.NewService(e.store, e.cfg.Standings())
				draw, err := bracket.NewCupService(e.store, table, e.logger).SeedCup(ctx, bracket.SeedRequest{
					TournamentID: tournamentID,
					Name:         name,
					GroupIDs:     groupIDs,
					Seed:         seed,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cup %s (%s)\n", draw.Cup.Name, draw.Cup.ID)
				for _, m := range draw.Matches {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s vs %s\n", m.Round, m.CompetitorAName, m.CompetitorBName)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament id")
	cmd.Flags().StringVar(&name, "name", "", "Cup name")
	cmd.Flags().StringSliceVar(&groupIDs, "groups", nil, "Group ids in draw order")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for the draw")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("groups")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <admin-key>",
		Short: "Print the bcrypt hash to put in ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}
