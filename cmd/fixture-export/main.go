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
	dbPath := flag.String("db", "", "path to affect_field.db")
	sessionID := flag.String("session", "", "session to export (default: latest)")
	every := flag.Int("every", 10, "pin the budget every N ticks (the last tick is always pinned)")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--session id] [--every N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *sessionID, *every, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, sessionID string, every int, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	if sessionID == "" {
		sessions, err := st.ListSessions(1)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return fmt.Errorf("no sessions in %s", dbPath)
		}
		sessionID = sessions[0].ID
	}

	sess, err := replay.LoadSession(st, sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d snapshots in session %s\n", len(sess.Snapshots), sess.ID)

	fixture, err := sess.Fixture(every)
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("Wrote %d frames and %d expectations to %s\n", len(fixture.Frames), len(fixture.Expected), outPath)
	return nil
}

// #endregion export
