package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/spf13/pflag"
)

// AddFlagValidation makes flagName reject values validator refuses, at parse
// time, before any command runs.
func AddFlagValidation(flags *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := flags.Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateChoice accepts exactly one of choices.
func ValidateChoice(choices ...string) func(string) error {
	return func(s string) error {
		for _, c := range choices {
			if s == c {
				return nil
			}
		}
		return fmt.Errorf("invalid value %q, must be one of: %s", s, strings.Join(choices, ", "))
	}
}

// ValidateFileName accepts a bare file name, never a path.
func ValidateFileName(name string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q: must not contain a path", name)
	}
	return nil
}

// expandDirs turns arguments into directories. Arguments holding glob
// characters are expanded with ** support; only directories are kept.
// Plain arguments pass through unchanged so a missing directory is
// reported by the command that uses it.
func expandDirs(args []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]struct{})

	add := func(dir string) {
		clean := filepath.Clean(dir)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		dirs = append(dirs, clean)
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}

		// A glob that cannot be expanded matches nothing
		matches, _ := zglob.Glob(arg)
		found := false
		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && info.IsDir() {
				add(match)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("no directories match %s", arg)
		}
	}

	return dirs, nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
