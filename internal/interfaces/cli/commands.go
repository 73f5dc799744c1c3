package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/infrastructure/repository/csvfile"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"github.com/spf13/cobra"
)

func (r *runner) competitionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "competitions",
		Short: "List competitions and seasons published by the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.servicesFor()
			if err != nil {
				return err
			}
			items, err := services.Matches.ListCompetitions(cmd.Context())
			if err != nil {
				return err
			}
			return r.render(cmd.OutOrStdout(), items, func(w io.Writer) error {
				return competitionsTable(w, items)
			})
		},
	}
}

func (r *runner) matchesCommand() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List the matches of one season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.servicesFor()
			if err != nil {
				return err
			}
			target, err := r.seasonOrFeatured(season)
			if err != nil {
				return err
			}
			items, err := services.Matches.ListMatches(cmd.Context(), target.CompetitionID, target.SeasonID)
			if err != nil {
				return err
			}
			return r.render(cmd.OutOrStdout(), items, func(w io.Writer) error {
				return matchesTable(w, items)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "competition:season, defaults to FEATURED_COMPETITION")
	return cmd
}

func (r *runner) recoveryCommand() *cobra.Command {
	var matchID int64
	var byMinute bool
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Possession recovery times of one match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analysis, err := r.analyze(cmd, matchID)
			if err != nil {
				return err
			}
			if byMinute {
				return r.render(cmd.OutOrStdout(), analysis.RecoveryByMinute, func(w io.Writer) error {
					return recoveryByMinuteTable(w, analysis.RecoveryByMinute)
				})
			}
			return r.render(cmd.OutOrStdout(), analysis.RecoverySummary, func(w io.Writer) error {
				return recoverySummaryTable(w, analysis.RecoverySummary)
			})
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id, defaults to the featured match")
	cmd.Flags().BoolVar(&byMinute, "minutes", false, "print the per-minute series instead of the team summary")
	return cmd
}

func (r *runner) zonesCommand() *cobra.Command {
	var matchID int64
	var combined bool
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Final third and penalty area carry entries of one match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			analysis, err := r.analyze(cmd, matchID)
			if err != nil {
				return err
			}
			if combined {
				return r.render(cmd.OutOrStdout(), analysis.Combined, func(w io.Writer) error {
					return combinedTable(w, analysis.Combined)
				})
			}
			return r.render(cmd.OutOrStdout(), analysis.ZoneTotals, func(w io.Writer) error {
				return zoneTotalsTable(w, analysis.ZoneTotals)
			})
		},
	}
	cmd.Flags().Int64Var(&matchID, "match", 0, "match id, defaults to the featured match")
	cmd.Flags().BoolVar(&combined, "combined", false, "join entries with recovery time per minute")
	return cmd
}

func (r *runner) overviewCommand() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Aggregate recovery and zone entries over every match of a season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.servicesFor()
			if err != nil {
				return err
			}
			target, err := r.seasonOrFeatured(season)
			if err != nil {
				return err
			}
			overview, err := services.Overview.Overview(cmd.Context(), target.CompetitionID, target.SeasonID)
			if err != nil {
				return err
			}
			return r.render(cmd.OutOrStdout(), overview, func(w io.Writer) error {
				return overviewTable(w, overview)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "competition:season, defaults to FEATURED_COMPETITION")
	return cmd
}

func (r *runner) clustersCommand() *cobra.Command {
	var (
		profile    string
		k          int
		components int
		space      string
		players    bool
	)
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Cluster a player profile with standardisation, PCA and k-means",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.servicesFor()
			if err != nil {
				return err
			}
			parsed, err := playerprofile.ParseProfile(profile)
			if err != nil {
				return err
			}
			params := services.Cluster
			if cmd.Flags().Changed("k") {
				params.K = k
			}
			if cmd.Flags().Changed("components") {
				params.Components = components
			}
			if cmd.Flags().Changed("space") {
				params.Space = usecase.ClusterSpace(strings.ToLower(strings.TrimSpace(space)))
			}

			result, err := services.Profiles.Cluster(cmd.Context(), parsed, params)
			if err != nil {
				return err
			}
			if players {
				return r.render(cmd.OutOrStdout(), result.Players, func(w io.Writer) error {
					return clusteredPlayersTable(w, result.Players)
				})
			}
			return r.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return clustersTable(w, result)
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", string(playerprofile.Defenders), "defenders or attackers")
	cmd.Flags().IntVar(&k, "k", usecase.DefaultClusterK, "number of clusters")
	cmd.Flags().IntVar(&components, "components", usecase.DefaultClusterComponents, "principal components kept")
	cmd.Flags().StringVar(&space, "space", string(usecase.ClusterOnScaled), "cluster on scaled metrics or pca components")
	cmd.Flags().BoolVar(&players, "players", false, "list every player with its cluster")
	return cmd
}

func (r *runner) elbowCommand() *cobra.Command {
	var (
		profile string
		kMin    int
		kMax    int
	)
	cmd := &cobra.Command{
		Use:   "elbow",
		Short: "Within-cluster inertia for a range of k",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.servicesFor()
			if err != nil {
				return err
			}
			parsed, err := playerprofile.ParseProfile(profile)
			if err != nil {
				return err
			}
			points, err := services.Profiles.Elbow(cmd.Context(), parsed, kMin, kMax)
			if err != nil {
				return err
			}
			return r.render(cmd.OutOrStdout(), points, func(w io.Writer) error {
				return elbowTable(w, points)
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", string(playerprofile.Defenders), "defenders or attackers")
	cmd.Flags().IntVar(&kMin, "min", 1, "smallest k")
	cmd.Flags().IntVar(&kMax, "max", usecase.MaxClusterK, "largest k")
	return cmd
}

func (r *runner) importMetricsCommand() *cobra.Command {
	var (
		profile string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "import-metrics",
		Short: "Load a per-match metrics CSV into Postgres, replacing the profile's rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := r.config()
			if err != nil {
				return err
			}
			parsed, err := playerprofile.ParseProfile(profile)
			if err != nil {
				return err
			}
			path := file
			if path == "" {
				path = csvfile.NewPlayerMetricsRepository(cfg.PlayerMetricsDir).Path(parsed)
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open metrics file: %w", err)
			}
			defer f.Close()
			table, err := csvfile.Decode(parsed, f)
			if err != nil {
				return fmt.Errorf("read metrics file %s: %w", path, err)
			}

			writer, closeWriter, err := r.opts.OpenMetricsWriter(cfg, r.opts.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeWriter() }()

			start := time.Now()
			written, err := writer.ReplaceMatchMetrics(cmd.Context(), table)
			if err != nil {
				return err
			}
			r.opts.Logger.InfoContext(cmd.Context(), "player metrics imported",
				"profile", parsed,
				"file", path,
				"players_matches", len(table.Rows),
				"rows", written,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows for %s from %s\n", written, parsed, path)
			return err
		},
	}
	cmd.Flags().StringVar(&profile, "profile", string(playerprofile.Defenders), "defenders or attackers")
	cmd.Flags().StringVar(&file, "file", "", "CSV path, defaults to PLAYER_METRICS_DIR/<profile>.csv")
	return cmd
}

func (r *runner) analyze(cmd *cobra.Command, matchID int64) (usecase.MatchAnalysis, error) {
	services, err := r.servicesFor()
	if err != nil {
		return usecase.MatchAnalysis{}, err
	}
	if matchID == 0 {
		featured, err := services.Matches.FeaturedMatch(cmd.Context())
		if err != nil {
			return usecase.MatchAnalysis{}, err
		}
		r.opts.Logger.Info("using featured match", "match_id", featured.MatchID, "label", featured.Scoreline())
		matchID = featured.MatchID
	}
	return services.Matches.Analyze(cmd.Context(), matchID)
}

func (r *runner) seasonOrFeatured(raw string) (usecase.CompetitionSeason, error) {
	if strings.TrimSpace(raw) != "" {
		return usecase.ParseCompetitionSeason(raw)
	}
	cfg, err := r.config()
	if err != nil {
		return usecase.CompetitionSeason{}, err
	}
	return cfg.FeaturedCompetition, nil
}
