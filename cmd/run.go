package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/bot"
	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/portal"
)

const (
	PromptSearch   = "Search for jobs"
	PromptApply    = "Apply to jobs"
	PromptStats    = "View stats"
	PromptApplyURL = "Apply to specific job URL"
	PromptExit     = "Exit"

	PromptLinkedIn       = "LinkedIn"
	PromptWorkAtAStartup = "Work at a Startup"
	PromptBoth           = "Both"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What would you like to do?",
	Items: []string{PromptSearch, PromptApply, PromptStats, PromptApplyURL, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive job-bot menu",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-bot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	deps, err := setup(ctx, config, logger, false)
	if err != nil {
		logger.Fatal("setting up", zap.Error(err))
	}
	defer deps.Close(logger)

	out := cmd.OutOrStdout()

	_, choice, err := menu.Run()
	if err != nil {
		logger.Fatal("reading menu choice", zap.Error(err))
	}

	err = dispatch(ctx, choice, config, deps, logger, out)

	switch {
	case errors.Is(err, errExit), errors.Is(err, promptui.ErrInterrupt):
		logger.Info("exit requested, bye")
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted, bye")
	case err != nil:
		logger.Fatal("running "+strings.ToLower(choice), zap.Error(err))
	}
}

// dispatch runs the chosen menu action. The agent is only started for the
// actions that browse portals.
func dispatch(ctx context.Context, choice string, config *Config, deps *components, log *zap.Logger, out io.Writer) error {
	switch choice {
	case PromptStats:
		return printStats(deps.tracker.Summary, out)
	case PromptExit:
		return errExit
	}

	if err := deps.buildBot(config, log); err != nil {
		return err
	}

	switch choice {
	case PromptSearch:
		return runSearch(ctx, deps.bot, out)
	case PromptApply:
		return runApply(ctx, deps.bot, out)
	case PromptApplyURL:
		return runApplyURL(ctx, deps.bot, out)
	default:
		return fmt.Errorf("unknown menu choice %q", choice)
	}
}

func runSearch(ctx context.Context, b *bot.Bot, out io.Writer) error {
	keys, err := choosePortals()
	if err != nil {
		return err
	}
	opts := bot.SearchOptions{Portals: keys}

	if slices.Contains(keys, portal.LinkedInKey) {
		if opts.Freshness, err = chooseFreshness(); err != nil {
			return err
		}
	}
	if opts.RequireSalary, err = confirm("Only jobs with a salary range"); err != nil {
		return err
	}
	if opts.DryRun, err = confirm("Dry run (build prompts only)"); err != nil {
		return err
	}

	result, err := b.Search(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, result.String())
	return nil
}

func runApply(ctx context.Context, b *bot.Bot, out io.Writer) error {
	keys, err := choosePortals()
	if err != nil {
		return err
	}
	opts := bot.ApplyOptions{Allocation: allocationFor(b.Allocation(), keys)}

	if slices.Contains(keys, portal.LinkedInKey) {
		if opts.Freshness, err = chooseFreshness(); err != nil {
			return err
		}
	}
	if opts.RequireSalary, err = confirm("Only jobs with a salary range"); err != nil {
		return err
	}
	if opts.DryRun, err = confirm("Dry run (no applications submitted)"); err != nil {
		return err
	}

	report, err := b.ApplyAll(ctx, opts)
	if report != nil {
		fmt.Fprintln(out, report.String())
	}
	return err
}

func runApplyURL(ctx context.Context, b *bot.Bot, out io.Writer) error {
	url, err := (&promptui.Prompt{Label: "Job URL", Validate: validateURL}).Run()
	if err != nil {
		return err
	}

	dryRun, err := confirm("Dry run (no application submitted)")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, bot.Describe(b.ApplyURL(ctx, strings.TrimSpace(url), dryRun)))
	return nil
}

func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return nil
	}
	return errors.New("url must start with http:// or https://")
}

func choosePortals() ([]string, error) {
	selector := promptui.Select{
		Label:     "Which portal?",
		Items:     []string{PromptLinkedIn, PromptWorkAtAStartup, PromptBoth},
		CursorPos: 2,
	}

	_, choice, err := selector.Run()
	if err != nil {
		return nil, err
	}

	return portalsFor(choice), nil
}

func portalsFor(choice string) []string {
	switch choice {
	case PromptLinkedIn:
		return []string{portal.LinkedInKey}
	case PromptWorkAtAStartup:
		return []string{portal.WorkAtAStartupKey}
	default:
		return []string{portal.LinkedInKey, portal.WorkAtAStartupKey}
	}
}

// allocationFor keeps the configured order and zeroes portals not chosen.
func allocationFor(allocation []bot.Allocation, keys []string) []bot.Allocation {
	result := make([]bot.Allocation, 0, len(allocation))
	for _, a := range allocation {
		if !slices.Contains(keys, a.Portal) {
			a.Jobs = 0
		}
		result = append(result, a)
	}
	return result
}

func chooseFreshness() (string, error) {
	items := make([]string, 0, len(portal.FreshnessChoices))
	cursor := 0
	for i, f := range portal.FreshnessChoices {
		items = append(items, fmt.Sprintf("%s - %s", f, portal.FreshnessLabel(f)))
		if f == portal.DefaultFreshness {
			cursor = i
		}
	}

	selector := promptui.Select{Label: "LinkedIn job freshness", Items: items, CursorPos: cursor}
	i, _, err := selector.Run()
	if err != nil {
		return "", err
	}

	return portal.FreshnessChoices[i], nil
}

// confirm asks a y/n question defaulting to no.
func confirm(label string) (bool, error) {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}
