package main

import (
	"os"
	"strings"

	"planner-cli/internal/cli"
)

// collectionForID maps a generated id to the command that shows it ("" when s is not one).
func collectionForID(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "evt-") && len(s) > len("evt-"):
		return "events"
	case strings.HasPrefix(s, "tsk-") && len(s) > len("tsk-"):
		return "tasks"
	}
	return ""
}

// rewriteDirectLookupArgs makes `planner <id>` work like `planner events|tasks show <id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first (`planner --dir D <id>`), so the first positional is searched for.
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--config":    true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int, id string) []string {
		col := collectionForID(id)
		if col == "" {
			return argv
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, col, "show")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				return rewrite(i+1, argv[i+1])
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		return rewrite(i, a)
	}
	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
