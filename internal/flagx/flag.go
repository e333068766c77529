// Package flagx lets several loaders share one command line: each picks out
// only the flags it owns and parses them with its own flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps the owned flags from args, together with their values,
// and drops everything else. Both "-c value" and "-c=value" (or
// "--config=value") are understood. A value is taken from the following
// argument only when that argument does not itself start with '-'.
func FilterArgs(args []string, owned []string) []string {
	names := make(map[string]struct{}, len(owned))
	for _, f := range owned {
		names[f] = struct{}{}
	}

	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(arg, "-") {
			if _, ok := names[name]; ok {
				kept = append(kept, arg)
			}
			continue
		}

		if _, ok := names[arg]; !ok {
			continue
		}
		kept = append(kept, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}

	return kept
}

// ConfigPath returns the config file path given with -c or -config
// (single or double dash), or "" when none was given.
func ConfigPath(args []string) string {
	var path string

	owned := FilterArgs(args, []string{"-c", "-config", "--c", "--config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(owned)

	return path
}
