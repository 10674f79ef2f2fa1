package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to affect_field.db")
	last := flag.Int("last", 20, "show N most recent sessions, or N snapshots with --session")
	sessionID := flag.String("session", "", "show one session's snapshots and events")
	channel := flag.String("channel", "", "show only this affect channel in snapshot rows")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/affect_field.db [--last N] [--session id] [--channel name] [--json]")
		os.Exit(2)
	}
	if *channel != "" {
		if _, err := affect.ParseChannel(*channel); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *sessionID != "" {
		err = runDetailMode(st, *sessionID, *last, *channel, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type sessionRow struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	StartedAt string `json:"started_at"`
	Snapshots int    `json:"snapshots"`
	LastTick  uint64 `json:"last_tick"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	sessions, err := st.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]sessionRow, len(sessions))
	for i, s := range sessions {
		snaps, err := st.ListSnapshots(s.ID, -1)
		if err != nil {
			return err
		}
		row := sessionRow{
			SessionID: s.ID,
			Kind:      s.Kind,
			StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z"),
			Snapshots: len(snaps),
		}
		if len(snaps) > 0 {
			row.LastTick = snaps[len(snaps)-1].Tick
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-12s  %-18s  %9s  %8s  %s\n", "Session", "Kind", "Snapshots", "Ticks", "Started")
	fmt.Printf("%-12s+-%-18s+-%9s+-%8s+-%s\n", "------------", "------------------", "---------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-18s  %9d  %8d  %s\n", shortID(r.SessionID), r.Kind, r.Snapshots, r.LastTick, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type snapshotRow struct {
	Tick          uint64             `json:"tick"`
	Dominant      string             `json:"dominant"`
	Intensity     float64            `json:"intensity"`
	QualityLevel  float64            `json:"quality_level"`
	ParticleCount int                `json:"particle_count"`
	FPS           float64            `json:"fps"`
	Channels      map[string]float64 `json:"channels"`
}

type eventRow struct {
	Tick   uint64 `json:"tick"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

type detailOutput struct {
	SessionID string          `json:"session_id"`
	Kind      string          `json:"kind"`
	StartedAt string          `json:"started_at"`
	Config    json.RawMessage `json:"config,omitempty"`
	Snapshots []snapshotRow   `json:"snapshots"`
	Events    []eventRow      `json:"events"`
}

func runDetailMode(st *store.Store, sessionID string, last int, channel string, jsonOut bool) error {
	sess, err := st.GetSession(sessionID)
	if err != nil {
		return err
	}
	snaps, err := st.ListSnapshots(sessionID, -1)
	if err != nil {
		return err
	}
	if last > 0 && len(snaps) > last {
		snaps = snaps[len(snaps)-last:]
	}
	events, err := st.ListEvents(sessionID, -1)
	if err != nil {
		return err
	}

	out := detailOutput{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		StartedAt: sess.StartedAt.Format("2006-01-02T15:04:05Z"),
	}
	if sess.ConfigJSON != "" {
		out.Config = json.RawMessage(sess.ConfigJSON)
	}
	for _, s := range snaps {
		out.Snapshots = append(out.Snapshots, snapshotRow{
			Tick:          s.Tick,
			Dominant:      s.Dominant,
			Intensity:     s.Intensity,
			QualityLevel:  s.QualityLevel,
			ParticleCount: s.ParticleCount,
			FPS:           s.FPS,
			Channels:      channelValues(s.State, channel),
		})
	}
	for _, e := range events {
		out.Events = append(out.Events, eventRow{Tick: e.Tick, Kind: e.Kind, Detail: e.Detail})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:  %s\n", out.SessionID)
	fmt.Printf("Kind:     %s\n", out.Kind)
	fmt.Printf("Started:  %s\n", out.StartedAt)

	fmt.Printf("\n%-8s  %-10s  %9s  %7s  %9s  %6s  %s\n", "Tick", "Dominant", "Intensity", "Quality", "Particles", "FPS", "Channels")
	for _, r := range out.Snapshots {
		fmt.Printf("%-8d  %-10s  %9.3f  %7.2f  %9d  %6.1f  %s\n",
			r.Tick, r.Dominant, r.Intensity, r.QualityLevel, r.ParticleCount, r.FPS, formatChannels(r.Channels))
	}

	if len(out.Events) > 0 {
		fmt.Printf("\nEvents:\n")
		for _, e := range out.Events {
			fmt.Printf("  %-8d %-22s %s\n", e.Tick, e.Kind, e.Detail)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

// channelValues names the state's channels, optionally keeping one.
func channelValues(s affect.State, only string) map[string]float64 {
	out := make(map[string]float64, affect.NumChannels)
	for _, ch := range affect.Channels() {
		if only != "" && ch.String() != only {
			continue
		}
		out[ch.String()] = s.Get(ch)
	}
	return out
}

func formatChannels(m map[string]float64) string {
	var parts []string
	for _, ch := range affect.Channels() {
		if v, ok := m[ch.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s=%.2f", ch, v))
		}
	}
	return strings.Join(parts, " ")
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
