// Package flagx holds small helpers shared by the server and client flag
// loaders.
package flagx

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FilterArgs keeps only allowedFlags and their values from args.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A
// value is consumed only when the next token does not start with '-'.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath returns the JSON config file given via -c or -config, or ""
// when neither is present. Other arguments are ignored.
func ConfigPath() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}

// unitDuration is a flag.Value reading an integer count of unit.
type unitDuration struct {
	dst  *time.Duration
	unit time.Duration
}

func (d *unitDuration) String() string {
	if d.dst == nil || d.unit == 0 {
		return "0"
	}
	return strconv.FormatInt(int64(*d.dst/d.unit), 10)
}

func (d *unitDuration) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	if n < 0 {
		return fmt.Errorf("negative duration %d", n)
	}
	*d.dst = time.Duration(n) * d.unit
	return nil
}

// DurationVar registers a flag that takes an integer count of unit and
// stores it into dst. dst is written only when the flag is given, so
// values finer than unit from other config sources survive.
func DurationVar(fs *flag.FlagSet, dst *time.Duration, name string, unit time.Duration, usage string) {
	fs.Var(&unitDuration{dst: dst, unit: unit}, name, usage)
}
