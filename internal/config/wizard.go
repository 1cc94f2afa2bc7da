package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ConfigWizard provides an interactive setup experience for new projects
type ConfigWizard struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewConfigWizard creates a wizard reading answers from in and printing
// prompts to out.
func NewConfigWizard(in io.Reader, out io.Writer) *ConfigWizard {
	return &ConfigWizard{
		reader: bufio.NewReader(in),
		out:    out,
		config: Default(),
	}
}

// Run executes the interactive configuration wizard
func (w *ConfigWizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "barrel configuration")
	fmt.Fprintln(w.out, "====================")
	fmt.Fprintln(w.out, "Press enter to accept the value in brackets.")
	fmt.Fprintln(w.out)

	w.configureNaming()
	w.configureContent()
	w.configureFiltering()
	if err := w.configureWatch(); err != nil {
		return nil, fmt.Errorf("watch configuration failed: %w", err)
	}

	if result := ValidateConfigWithDetails(w.config); result.HasErrors() {
		return nil, result.Err()
	}

	fmt.Fprintln(w.out)
	return w.config, nil
}

func (w *ConfigWizard) configureNaming() {
	b := &w.config.Barrel

	b.SourceExtension = w.askString("Source file extension", b.SourceExtension)
	b.NamingScheme = w.askChoice("Barrel naming scheme",
		[]string{string(NamingFolder), string(NamingIndex), string(NamingCustom)}, b.NamingScheme)
	if b.NamingScheme == string(NamingCustom) {
		b.CustomName = w.askString("Barrel file name", "exports"+b.SourceExtension)
	}
	fmt.Fprintln(w.out)
}

func (w *ConfigWizard) configureContent() {
	b := &w.config.Barrel

	b.SortExports = w.askBool("Sort export statements", b.SortExports)
	if b.SortExports {
		b.GroupByDirectory = w.askBool("Group exports by directory", b.GroupByDirectory)
	}
	b.IncludeSubdirectories = w.askBool("Include files from subdirectories", b.IncludeSubdirectories)
	b.IncludeHeader = w.askBool("Write a header comment", b.IncludeHeader)
	if b.IncludeHeader {
		b.HeaderComment = w.askString("Header comment", b.HeaderComment)
	}
	fmt.Fprintln(w.out)
}

func (w *ConfigWizard) configureFiltering() {
	b := &w.config.Barrel

	patterns := w.askString("Exclude patterns (comma separated)", strings.Join(b.ExcludePatterns, ","))
	b.ExcludePatterns = splitList(patterns)
	b.RespectGitignore = w.askBool("Skip files ignored by .gitignore", b.RespectGitignore)
	fmt.Fprintln(w.out)
}

func (w *ConfigWizard) configureWatch() error {
	b := &w.config.Barrel

	b.AutoGenerateOnChange = w.askBool("Regenerate barrels when files change", b.AutoGenerateOnChange)
	if !b.AutoGenerateOnChange {
		return nil
	}

	paths := w.askString("Paths to watch (comma separated)", strings.Join(w.config.Watch.Paths, ","))
	w.config.Watch.Paths = splitList(paths)

	raw := w.askString("Debounce", w.config.Watch.Debounce.String())
	debounce, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid debounce %q: %w", raw, err)
	}
	w.config.Watch.Debounce = debounce
	return nil
}

// Helper methods for user interaction

func (w *ConfigWizard) askString(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultValue
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}

	return input
}

func (w *ConfigWizard) askBool(prompt string, defaultValue bool) bool {
	defaultStr := "n"
	if defaultValue {
		defaultStr = "y"
	}

	fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultStr)

	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultValue
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue
	}

	return input == "y" || input == "yes" || input == "true"
}

func (w *ConfigWizard) askChoice(prompt string, choices []string, defaultValue string) string {
	for {
		fmt.Fprintf(w.out, "%s [%s] (options: %s): ", prompt, defaultValue, strings.Join(choices, ", "))

		input, err := w.reader.ReadString('\n')
		if err != nil && input == "" {
			return defaultValue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			return defaultValue
		}

		for _, choice := range choices {
			if strings.EqualFold(input, choice) {
				return choice
			}
		}

		fmt.Fprintf(w.out, "Invalid choice. Please select from: %s\n", strings.Join(choices, ", "))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
