package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcestou/feed-n-type-sub000/internal/session"
)

// telemetryFile is the handoff format produced by an external typing UI:
// one finished session with its raw keystroke stream.
type telemetryFile struct {
	Source     string `json:"source"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt"`
	Keystrokes []struct {
		Char        string `json:"char"`
		Correct     bool   `json:"correct"`
		TimestampMs int64  `json:"timestampMs"`
	} `json:"keystrokes"`
}

func newSessionCmd() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Work with recorded typing sessions",
	}

	importCmd := &cobra.Command{
		Use:   "import <telemetry.json>",
		Short: "Replay a captured session through the engine",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionImportCmd,
	}
	sessionCmd.AddCommand(importCmd)
	return sessionCmd
}

func runSessionImportCmd(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read telemetry: %w", err)
	}
	var tf telemetryFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return fmt.Errorf("failed to parse telemetry: %w", err)
	}
	if len(tf.Keystrokes) == 0 {
		return fmt.Errorf("telemetry has no keystrokes")
	}
	startedAt, err := time.Parse(time.RFC3339, tf.StartedAt)
	if err != nil {
		return fmt.Errorf("invalid startedAt: %w", err)
	}
	endedAt, err := time.Parse(time.RFC3339, tf.EndedAt)
	if err != nil {
		return fmt.Errorf("invalid endedAt: %w", err)
	}
	source := tf.Source
	if source == "" {
		source = "practice"
	}

	ctx := context.Background()
	state, err := openState(ctx)
	if err != nil {
		return err
	}
	defer state.close()

	tracker := session.New(state.ids.NewID(), source, startedAt)
	for _, ks := range tf.Keystrokes {
		tracker.RecordKeystroke(ks.Char, ks.Correct, ks.TimestampMs)
	}
	tracker.CheckMilestones()
	rec := tracker.Finalize(endedAt)

	if err := state.store.InsertSession(ctx, rec); err != nil {
		return err
	}

	now := time.Now()
	streakRes := state.streak.RecordPracticeSession(endedAt, endedAt.Sub(startedAt))
	if !streakRes.Ignored {
		state.companion.UpdateStreak(state.streak.Record().CurrentStreak, streakRes.Milestones, now)
	}

	// The companion eats standard 5-char words.
	wordsCorrect := rec.CorrectChars / 5
	wordsWrong := rec.Errors / 5
	for i := 0; i < wordsCorrect; i++ {
		state.companion.FeedWord(true, now)
	}
	for i := 0; i < wordsWrong; i++ {
		state.companion.FeedWord(false, now)
	}
	state.companion.UpdateAccuracy(rec.Accuracy, 0.1)

	state.ledger.UpdatePersonalBest("wpm", rec.WPM, now)
	state.ledger.UpdatePersonalBest("accuracy", rec.Accuracy, now)
	state.ledger.UpdateWeeklyGoalProgress(wordsCorrect, now)

	comp := state.companion.State()
	snapshot, err := buildSnapshot(ctx, state, comp)
	if err != nil {
		return err
	}
	snapshot.WPM = rec.WPM
	snapshot.Accuracy = rec.Accuracy
	unlocked := state.ledger.CheckAchievements(snapshot, now)
	state.ledger.CheckAccessories(snapshot, now)

	if err := state.save(ctx); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported session %s: %.1f wpm, %.1f%% accuracy, %d errors\n",
		rec.ID, rec.WPM, rec.Accuracy, rec.Errors)
	if len(rec.ChallengingKeys) > 0 {
		fmt.Fprintf(out, "Challenging keys: %v\n", rec.ChallengingKeys)
	}
	if streakRes.Ignored {
		fmt.Fprintln(out, "Session under five minutes; streak unchanged.")
	} else {
		fmt.Fprintf(out, "Streak: %d days\n", state.streak.Record().CurrentStreak)
	}
	for _, u := range unlocked {
		fmt.Fprintf(out, "Achievement unlocked: %s (+%d points)\n", u.ID, u.Points)
	}
	for _, sug := range tracker.Suggestions() {
		fmt.Fprintf(out, "Tip (%s): %s\n", sug.Area, sug.Message)
	}
	if state.companion.EvolutionReady() {
		fmt.Fprintln(out, "Evolution available! Run: feedtype companion evolve")
	}
	return nil
}
