package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/replay"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to affect_field.db (session mode)")
	sessionID := flag.String("session", "", "session to replay (session mode, default: latest)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/affect_field.db [--session id]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runSessionMode(*dbPath, *sessionID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region modes

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	results, mismatches, err := f.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(results, mismatches, len(f.Expected))
}

func runSessionMode(dbPath, sessionID string) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	if sessionID == "" {
		sessions, err := st.ListSessions(1)
		if err != nil || len(sessions) == 0 {
			fmt.Fprintf(os.Stderr, "no sessions found (%v)\n", err)
			return 2
		}
		sessionID = sessions[0].ID
	}

	sess, err := replay.LoadSession(st, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session: %v\n", err)
		return 2
	}
	results, err := replay.Replay(sess.Config, sess.Frames())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	expected := sess.Expectations()
	fmt.Printf("Session %s: %d snapshots, %d ticks rebuilt\n", sess.ID, len(sess.Snapshots), len(results))
	if sess.Approximated() {
		fmt.Printf("Some gaps have no per-tick timing; budgets after the first such gap are not checked\n")
	}
	fmt.Println()
	return printComparison(results, replay.Check(results, expected), len(expected))
}

// #endregion modes

// #region output

// printComparison outputs the summary and any mismatches and returns the
// exit code.
func printComparison(results []replay.ReplayResult, mismatches []replay.Mismatch, checked int) int {
	s := replay.Summarize(results)
	fmt.Printf("%-16s %d\n", "Ticks", s.TotalTicks)
	fmt.Printf("%-16s %d..%d\n", "Particles", s.MinParticles, s.MaxParticles)
	fmt.Printf("%-16s %d particles, quality %.2f, effects %v\n", "Final budget",
		s.FinalBudget.ParticleCount, s.FinalBudget.QualityLevel, s.FinalBudget.EffectsEnabled)
	fmt.Printf("%-16s %d\n", "Budget changes", s.BudgetChanges)
	fmt.Printf("%-16s %d merged, %d rejected\n", "Analysis", s.Merges, s.Rejects)
	fmt.Printf("%-16s %d\n", "Fallbacks", s.Fallbacks)
	fmt.Printf("%-16s %d\n", "Eval failures", s.EvalFailures)

	if len(mismatches) > 0 {
		fmt.Printf("\n%-8s| %-16s| %-12s| %s\n", "Tick", "Field", "Expected", "Replayed")
		fmt.Printf("%-8s+%-17s+%-13s+%s\n", "--------", "-----------------", "-------------", "----------")
		for _, m := range mismatches {
			fmt.Printf("%-8d| %-16s| %-12s| %s\n", m.Tick, m.Field, m.Want, m.Got)
		}
	}

	fmt.Printf("\nSummary: %d expectations, %d mismatches\n", checked, len(mismatches))
	if len(mismatches) > 0 || s.EvalFailures > 0 {
		return 1
	}
	return 0
}

// #endregion output
