// Package main provides the CLI entrypoint for space-defense.
package main

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/megancady/Space-Defense-Pilot/internal/config"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
	"github.com/megancady/Space-Defense-Pilot/internal/report"
	"github.com/megancady/Space-Defense-Pilot/internal/scheduler"
	"github.com/megancady/Space-Defense-Pilot/internal/session"
	"github.com/megancady/Space-Defense-Pilot/internal/tui"
)

const (
	defaultRepeats      = 3
	defaultRoundSeconds = 20.0
	defaultPractice     = true
)

// sessionFlags holds the settings shared by the commands that build a plan.
type sessionFlags struct {
	subject      string
	repeats      int
	roundSeconds float64
	practice     bool
	levels       string
	out          string
}

var (
	playFlags     sessionFlags
	scheduleFlags sessionFlags
	scheduleSeed  int64
	levelsFile    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "space-defense",
		Short:         "Space Defense reinforcement-schedule game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	bindSessionFlags(rootCmd, &playFlags)
	rootCmd.Flags().StringVar(&playFlags.subject, "subject", "", "three-digit participant number (prompted when empty)")
	rootCmd.Flags().StringVar(&playFlags.out, "out", "", "directory for the CSV export")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newLevelsCmd())

	return rootCmd
}

func bindSessionFlags(cmd *cobra.Command, f *sessionFlags) {
	cmd.Flags().IntVar(&f.repeats, "repeats", defaultRepeats, "times each level appears in the schedule")
	cmd.Flags().Float64Var(&f.roundSeconds, "round-seconds", defaultRoundSeconds, "round duration in seconds")
	cmd.Flags().BoolVar(&f.practice, "practice", defaultPractice, "run a practice round first")
	cmd.Flags().StringVar(&f.levels, "levels", "", "levels file (.yaml, .yml or .toml)")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, envCfg, err := resolveConfig(cmd, &playFlags)
	if err != nil {
		return err
	}
	if cfg.Subject != "" && !isSubjectID(cfg.Subject) {
		return fmt.Errorf("--subject must be exactly 3 digits")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("space-defense needs an interactive terminal; use `space-defense schedule` for a dry run")
	}

	if envCfg.DebugLog != "" {
		f, err := tea.LogToFile(envCfg.DebugLog, "space-defense")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logErrf("failed to close debug log: %v\n", cerr)
			}
		}()
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := tui.NewModel(tui.Options{Config: cfg})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := m.Err(); err != nil {
		return err
	}

	res := m.Result()
	if res.ExportErr != nil {
		return fmt.Errorf("failed to save export: %w", res.ExportErr)
	}
	if res.ExportPath == "" {
		logErrln("Session ended before any round started; nothing exported.")
		return nil
	}
	if !res.Completed {
		logErrln("Session aborted; partial data kept.")
	}
	logErrf("Saved %s\n", res.ExportPath)
	if err := report.RenderSummaries(cmd.OutOrStdout(), res.Summaries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// resolveConfig layers defaults, config file, environment and flags, in
// increasing precedence.
func resolveConfig(cmd *cobra.Command, f *sessionFlags) (model.Config, config.EnvConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, config.EnvConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return model.Config{}, config.EnvConfig{}, err
	}

	applyIntConfig(cmd, "repeats", &f.repeats, fileCfg.Session.Repeats)
	applyFloatConfig(cmd, "round-seconds", &f.roundSeconds, fileCfg.Session.RoundSeconds)
	applyBoolConfig(cmd, "practice", &f.practice, fileCfg.Session.Practice)
	applyStringConfig(cmd, "out", &f.out, fileCfg.Session.ExportDir)
	applyStringConfig(cmd, "levels", &f.levels, fileCfg.Session.LevelsFile)

	applyEnv(cmd, "subject", &f.subject, envCfg.Subject)
	applyEnv(cmd, "out", &f.out, envCfg.ExportDir)
	applyEnv(cmd, "levels", &f.levels, envCfg.LevelsFile)

	levels, err := config.ResolveLevels(fileCfg.Levels, f.levels)
	if err != nil {
		return model.Config{}, config.EnvConfig{}, err
	}
	exportDir := f.out
	if exportDir == "" {
		exportDir = config.DefaultExportDir()
	}

	cfg := model.Config{
		Subject:      strings.TrimSpace(f.subject),
		Levels:       levels,
		Repeats:      f.repeats,
		RoundSeconds: f.roundSeconds,
		Practice:     f.practice,
		ExportDir:    exportDir,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, config.EnvConfig{}, err
	}
	return cfg, envCfg, nil
}

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print a generated round order without playing",
		Args:  cobra.NoArgs,
		RunE:  runScheduleCmd,
	}
	bindSessionFlags(cmd, &scheduleFlags)
	cmd.Flags().Int64Var(&scheduleSeed, "seed", 0, "shuffle seed (0 picks one at random)")
	return cmd
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := resolveConfig(cmd, &scheduleFlags)
	if err != nil {
		return err
	}
	sched := scheduler.New()
	if scheduleSeed != 0 {
		sched = scheduler.NewWithSource(rand.NewSource(scheduleSeed))
	}
	sess, err := session.New(cfg, sched)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := report.RenderPlan(out, sess.Plan()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if attempts, fallback := sched.Attempts(); fallback {
		logErrf("Shuffle gave up after %d attempts; used the deterministic arrangement.\n", attempts)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the active contingency levels",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
	cmd.Flags().StringVar(&levelsFile, "levels", "", "levels file (.yaml, .yml or .toml)")
	return cmd
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "levels", &levelsFile, fileCfg.Session.LevelsFile)
	applyEnv(cmd, "levels", &levelsFile, envCfg.LevelsFile)
	levels, err := config.ResolveLevels(fileCfg.Levels, levelsFile)
	if err != nil {
		return err
	}
	if err := report.RenderLevels(cmd.OutOrStdout(), levels); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyEnv overrides target with a non-empty environment value unless the
// flag was given.
func applyEnv(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	levels := model.DefaultLevels()
	var b strings.Builder
	fmt.Fprintf(&b, `# space-defense configuration
# Uncomment a value to enable it. Environment variables override these values
# and CLI flags override both.

[session]
# repeats = %d              # Times each level appears in the schedule
# round-seconds = %.1f      # Round duration in seconds
# practice = %t             # Run a practice round first
# export-dir = %q
# levels-file = ""          # .yaml, .yml or .toml file with a "levels" list

# Levels replace the built-in set when present.
`, defaultRepeats, defaultRoundSeconds, defaultPractice, config.DefaultExportDir())
	for _, lvl := range levels {
		fmt.Fprintf(&b, "\n# [[levels]]\n# label = %q\n# p = %.2f\n# color = %q\n", lvl.Label, lvl.Probability, lvl.Color)
	}
	return b.String()
}

func validateConfig(cfg model.Config) error {
	if cfg.Repeats < 1 {
		return fmt.Errorf("--repeats must be >= 1")
	}
	if cfg.RoundSeconds <= 0 {
		return fmt.Errorf("--round-seconds must be > 0")
	}
	if err := scheduler.Validate(cfg.Levels, cfg.Repeats); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	return nil
}

func isSubjectID(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
