package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/statewatch"
)

// ReplayFlags holds flags for the replay command.
type ReplayFlags struct {
	FilePath   string
	Subject    string
	MaxRecords int
	ShowDiffs  bool
}

// captureLine is one recorded hook in a JSONL capture file.
type captureLine struct {
	Type    string `json:"type"` // create, event, state, error, close
	Subject string `json:"subject"`
	Payload any    `json:"payload"`
	Prev    any    `json:"prev"`
	Next    any    `json:"next"`
	Error   string `json:"error"`
	Stack   string `json:"stack"`
}

// createReplayCommand creates the replay subcommand
func createReplayCommand() *cobra.Command {
	replayFlags := &ReplayFlags{}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a captured hook stream",
		Long: `Replay a JSONL capture of lifecycle hooks through an in-memory
observer and print a per-subject summary.

Each line is a JSON object:
  {"type":"create","subject":"cart"}
  {"type":"event","subject":"cart","payload":"AddItem"}
  {"type":"state","subject":"cart","prev":"Cart(items: 0)","next":"Cart(items: 1)"}

Examples:
  statewatch replay --file=capture.jsonl
  statewatch replay --file=capture.jsonl --subject=cart --diffs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, replayFlags)
		},
	}
	cmd.Flags().StringVar(&replayFlags.FilePath, "file", "", "path to JSONL capture file (required)")
	cmd.Flags().StringVar(&replayFlags.Subject, "subject", "", "only summarize this subject")
	cmd.Flags().IntVar(&replayFlags.MaxRecords, "max-records", 0, "per-subject record cap (0 = default)")
	cmd.Flags().BoolVar(&replayFlags.ShowDiffs, "diffs", false, "print field diffs for state transitions")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

func runReplay(cmd *cobra.Command, flags *ReplayFlags) error {
	f, err := os.Open(flags.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer func() { _ = f.Close() }()

	obs := statewatch.NewWithOptions(statewatch.Options{MaxRecords: flags.MaxRecords})
	fed, subjects, err := feedCapture(obs, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Replayed %d hook(s) from %s\n", fed, flags.FilePath)

	// Summarize every subject the capture touched; a close hook retires a
	// subject from the active set but its records are retained.
	if flags.Subject != "" {
		subjects = []string{flags.Subject}
	}
	for _, subject := range subjects {
		events := obs.EventsFor(subject)
		states := obs.StatesFor(subject)
		_, _ = fmt.Fprintf(out, "\n%s: %d event(s), %d transition(s)\n", subject, len(events), len(states))
		for _, e := range events {
			marker := " "
			if e.IsError() {
				marker = "!"
			}
			_, _ = fmt.Fprintf(out, "  %s %s\n", marker, e.Description())
		}
		for i, s := range states {
			_, _ = fmt.Fprintf(out, "  #%d %s -> %s\n", i, s.PrevDescription(), s.NextDescription())
			if flags.ShowDiffs {
				for _, c := range statewatch.DiffStates(s.Prev, s.Next) {
					_, _ = fmt.Fprintf(out, "     %s %s: %q -> %q\n", c.Kind, c.Field, c.Old, c.New)
				}
			}
		}
	}
	return nil
}

// feedCapture replays every line of r through obs. It returns how many hooks
// were delivered and the subjects the capture touched, in first-seen order.
// Blank lines are skipped; a malformed line aborts the replay.
func feedCapture(obs *statewatch.Observer, r *os.File) (int, []string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fed := 0
	lineNo := 0
	var subjects []string
	seen := make(map[string]struct{})
	for scanner.Scan() {
		lineNo++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line captureLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return fed, subjects, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		if line.Subject == "" {
			return fed, subjects, fmt.Errorf("line %d: subject required", lineNo)
		}
		switch line.Type {
		case "create":
			obs.OnCreate(line.Subject)
		case "event":
			obs.OnEvent(line.Subject, line.Payload)
		case "state":
			obs.OnStateChange(line.Subject, line.Prev, line.Next)
		case "error":
			obs.OnError(line.Subject, errors.New(line.Error), line.Stack)
		case "close":
			obs.OnClose(line.Subject)
		default:
			return fed, subjects, fmt.Errorf("line %d: unknown type %q", lineNo, line.Type)
		}
		if _, dup := seen[line.Subject]; !dup {
			seen[line.Subject] = struct{}{}
			subjects = append(subjects, line.Subject)
		}
		fed++
	}
	if err := scanner.Err(); err != nil {
		return fed, subjects, fmt.Errorf("failed to read capture file: %w", err)
	}
	return fed, subjects, nil
}
