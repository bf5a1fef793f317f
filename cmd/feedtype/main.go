// Package main provides the CLI entrypoint for feedtype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lcestou/feed-n-type-sub000/internal/achievement"
	"github.com/lcestou/feed-n-type-sub000/internal/companion"
	"github.com/lcestou/feed-n-type-sub000/internal/config"
	"github.com/lcestou/feed-n-type-sub000/internal/ident"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
	"github.com/lcestou/feed-n-type-sub000/internal/report"
	"github.com/lcestou/feed-n-type-sub000/internal/store"
	"github.com/lcestou/feed-n-type-sub000/internal/streak"
)

// defaultUserID keys every aggregate; the engine is single-user.
const defaultUserID = "default"

const defaultWeeklyWords = 500

var (
	statsSince string
	statsLast  int

	recordDate    string
	recordMinutes int

	feedCorrect int
	feedWrong   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "feedtype",
		Short:         "Typing practice gamification engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runStatusCmd,
	}

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newStreakCmd())
	rootCmd.AddCommand(newCompanionCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newAckCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// engineState bundles the loaded aggregates for one CLI invocation.
type engineState struct {
	store     *store.Store
	companion *companion.Companion
	streak    *streak.Tracker
	ledger    *achievement.Engine
	ids       ident.Generator
	log       zerolog.Logger
}

func newLogger(cfg config.FileConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Log.Level != nil {
		if parsed, err := zerolog.ParseLevel(*cfg.Log.Level); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openState loads every aggregate, falling back to fresh defaults for
// missing or corrupt records.
func openState(ctx context.Context) (*engineState, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	st, err := store.Open(config.DefaultDBPath(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	ids := ident.UUID{}

	compState, found, err := st.LoadCompanion(ctx, defaultUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load companion: %w", err)
	}
	if !found {
		compState = companion.State{ID: ids.NewID(), Form: companion.FormEgg, Happiness: 80}
		if cfg.Companion.Name != nil {
			compState.Name = *cfg.Companion.Name
		}
	}
	comp := companion.New(compState, ids)

	streakRec, found, err := st.LoadStreak(ctx, defaultUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}
	var streakTracker *streak.Tracker
	if found {
		streakTracker = streak.Restore(streakRec)
	} else {
		streakTracker = streak.New()
	}

	ledgerRec, _, err := st.LoadLedger(ctx, defaultUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	engine := achievement.NewEngine(ledgerRec, ids)

	weekly := defaultWeeklyWords
	if cfg.Goals.WeeklyWords != nil {
		weekly = *cfg.Goals.WeeklyWords
	}
	engine.EnsureWeeklyGoal(weekly, time.Now())

	return &engineState{
		store:     st,
		companion: comp,
		streak:    streakTracker,
		ledger:    engine,
		ids:       ids,
		log:       log,
	}, nil
}

func (s *engineState) save(ctx context.Context) error {
	if err := s.store.SaveCompanion(ctx, defaultUserID, s.companion.State()); err != nil {
		return err
	}
	if err := s.store.SaveStreak(ctx, defaultUserID, s.streak.Record()); err != nil {
		return err
	}
	return s.store.SaveLedger(ctx, defaultUserID, s.ledger.Ledger())
}

func (s *engineState) close() {
	if err := s.store.Close(); err != nil {
		s.log.Error().Err(err).Msg("failed to close db")
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show companion, streak, and pending celebrations",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	now := time.Now()
	out := cmd.OutOrStdout()
	comp := state.companion.State()
	if err := report.RenderCompanion(out, comp, state.companion.Mood(now)); err != nil {
		return err
	}
	if err := report.RenderStreak(out, state.streak.Record(), state.streak.CheckStatus(now)); err != nil {
		return err
	}

	pending := append(state.companion.Celebrations().Pending(), state.ledger.Celebrations().Pending()...)
	return report.RenderCelebrations(out, pending)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	sessions, err := state.store.ListSessions(ctx, model.SessionFilter{Since: sinceTime, Last: statsLast})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	return report.RenderSessions(cmd.OutOrStdout(), sessions)
}

func newStreakCmd() *cobra.Command {
	streakCmd := &cobra.Command{
		Use:   "streak",
		Short: "Inspect or update the practice streak",
	}

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a finished practice session",
		Args:  cobra.NoArgs,
		RunE:  runStreakRecordCmd,
	}
	recordCmd.Flags().StringVar(&recordDate, "date", "", "session date (YYYY-MM-DD, default today)")
	recordCmd.Flags().IntVar(&recordMinutes, "minutes", 0, "session duration in minutes")

	catchupCmd := &cobra.Command{
		Use:   "catchup",
		Short: "Open a 48-hour catch-up window",
		Args:  cobra.NoArgs,
		RunE:  runStreakCatchupCmd,
	}

	streakCmd.AddCommand(recordCmd)
	streakCmd.AddCommand(catchupCmd)
	return streakCmd
}

func runStreakRecordCmd(cmd *cobra.Command, _ []string) error {
	date := time.Now()
	if recordDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", recordDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}
		date = parsed
	}
	if recordMinutes <= 0 {
		return fmt.Errorf("--minutes must be > 0")
	}

	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	res := state.streak.RecordPracticeSession(date, time.Duration(recordMinutes)*time.Minute)
	if res.Ignored {
		fmt.Fprintln(cmd.OutOrStdout(), "Session under five minutes; streak unchanged.")
		return nil
	}

	rec := state.streak.Record()
	state.companion.UpdateStreak(rec.CurrentStreak, res.Milestones, time.Now())

	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Streak: %d days (longest %d)\n", rec.CurrentStreak, rec.LongestStreak)
	if res.CreditSpent {
		fmt.Fprintln(cmd.OutOrStdout(), "A forgiveness credit covered the missed day.")
	}
	if res.CatchUpConsumed {
		fmt.Fprintln(cmd.OutOrStdout(), "Catch-up window used; streak preserved.")
	}
	if res.WeekendBonus {
		fmt.Fprintln(cmd.OutOrStdout(), "Weekend bonus applied!")
	}
	return nil
}

func runStreakCatchupCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	deadline := state.streak.ActivateCatchUp(time.Now())
	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Catch-up window open until %s\n", deadline.Format(time.RFC1123))
	return nil
}

func newCompanionCmd() *cobra.Command {
	companionCmd := &cobra.Command{
		Use:   "companion",
		Short: "Interact with the companion",
	}

	nameCmd := &cobra.Command{
		Use:   "name <name>",
		Short: "Rename the companion",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompanionNameCmd,
	}

	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Feed typed words to the companion",
		Args:  cobra.NoArgs,
		RunE:  runCompanionFeedCmd,
	}
	feedCmd.Flags().IntVar(&feedCorrect, "correct", 0, "number of correctly typed words")
	feedCmd.Flags().IntVar(&feedWrong, "wrong", 0, "number of mistyped words")

	evolveCmd := &cobra.Command{
		Use:   "evolve",
		Short: "Advance the companion one evolution stage if ready",
		Args:  cobra.NoArgs,
		RunE:  runCompanionEvolveCmd,
	}

	companionCmd.AddCommand(nameCmd)
	companionCmd.AddCommand(feedCmd)
	companionCmd.AddCommand(evolveCmd)
	return companionCmd
}

func runCompanionNameCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	if err := state.companion.SetName(args[0]); err != nil {
		return err
	}
	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Companion renamed to %s\n", state.companion.State().Name)
	return nil
}

func runCompanionFeedCmd(cmd *cobra.Command, _ []string) error {
	if feedCorrect <= 0 && feedWrong <= 0 {
		return fmt.Errorf("nothing to feed: pass --correct and/or --wrong")
	}

	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	now := time.Now()
	for i := 0; i < feedCorrect; i++ {
		state.companion.FeedWord(true, now)
	}
	for i := 0; i < feedWrong; i++ {
		state.companion.FeedWord(false, now)
	}
	state.ledger.UpdateWeeklyGoalProgress(feedCorrect, now)

	comp := state.companion.State()
	snapshot, err := buildSnapshot(ctx, state, comp)
	if err != nil {
		return err
	}
	state.ledger.CheckAchievements(snapshot, now)
	state.ledger.CheckAccessories(snapshot, now)

	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fed %d words (%d mistyped). Happiness %.0f, mood %s.\n",
		feedCorrect+feedWrong, feedWrong, comp.Happiness, state.companion.Mood(now))
	if state.companion.EvolutionReady() {
		fmt.Fprintln(out, "Evolution available! Run: feedtype companion evolve")
	}
	return nil
}

func runCompanionEvolveCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	ev := state.companion.EvolveToNextForm(time.Now())
	if ev == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not ready to evolve yet.")
		return nil
	}
	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Evolved from %s to %s!\n", ev.From, ev.To)
	return nil
}

func newAchievementsCmd() *cobra.Command {
	achievementsCmd := &cobra.Command{
		Use:   "achievements",
		Short: "List rewards or equip accessories",
		Args:  cobra.NoArgs,
		RunE:  runAchievementsListCmd,
	}

	equipCmd := &cobra.Command{
		Use:   "equip <accessory-id>",
		Short: "Equip an unlocked accessory",
		Args:  cobra.ExactArgs(1),
		RunE:  runAchievementsEquipCmd,
	}
	achievementsCmd.AddCommand(equipCmd)
	return achievementsCmd
}

func runAchievementsListCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	return report.RenderLedger(cmd.OutOrStdout(), state.ledger.Ledger())
}

func runAchievementsEquipCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	if err := state.ledger.EquipAccessory(args[0]); err != nil {
		return err
	}
	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Equipped %s\n", args[0])
	return nil
}

// buildSnapshot assembles the cross-aggregate stats view for the
// achievement engine.
func buildSnapshot(ctx context.Context, state *engineState, comp companion.State) (model.StatsSnapshot, error) {
	sessions, err := state.store.ListSessions(ctx, model.SessionFilter{Last: 1})
	if err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	var wpm, accuracy float64
	if len(sessions) > 0 {
		wpm = sessions[len(sessions)-1].WPM
		accuracy = sessions[len(sessions)-1].Accuracy
	}
	count, err := state.store.CountSessions(ctx)
	if err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("failed to count sessions: %w", err)
	}
	bySource, err := state.store.CountSessionsBySource(ctx)
	if err != nil {
		return model.StatsSnapshot{}, fmt.Errorf("failed to count sessions by source: %w", err)
	}

	ledger := state.ledger.Ledger()
	return model.StatsSnapshot{
		WPM:               wpm,
		Accuracy:          accuracy,
		Streak:            state.streak.Record().CurrentStreak,
		TotalWords:        comp.TotalWordsEaten,
		SessionsCompleted: count,
		ContentBySource:   bySource,
		AchievementCount:  len(ledger.Achievements),
	}, nil
}

func newAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <celebration-id>",
		Short: "Acknowledge a pending celebration",
		Args:  cobra.ExactArgs(1),
		RunE:  runAckCmd,
	}
}

func runAckCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	id := args[0]
	if !state.companion.Celebrations().Acknowledge(id) && !state.ledger.Celebrations().Acknowledge(id) {
		return fmt.Errorf("no pending celebration %q", id)
	}
	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", id)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# feedtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[companion]
# name = "Typingotchi"    # Companion display name (max 20 chars)

[goals]
# weekly-words = %d      # Weekly word target

[log]
# level = "info"          # trace, debug, info, warn, error
`, defaultWeeklyWords)
}
