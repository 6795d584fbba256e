package tui

import (
	"strings"

	"github.com/theirongolddev/budgetsim/internal/config"
	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues backs the first-run form fields.
type setupValues struct {
	name       string
	category   string
	difficulty string
	theme      string
}

func newSetupForm(vals *setupValues) *huh.Form {
	if vals.category == "" {
		vals.category = model.CategoryBudget.Slug()
	}
	if vals.difficulty == "" {
		vals.difficulty = string(model.Beginner)
	}
	if vals.theme == "" {
		vals.theme = theme.Active.Name
	}

	catOpts := make([]huh.Option[string], 0, len(model.Categories()))
	for _, c := range model.Categories() {
		catOpts = append(catOpts, huh.NewOption(c.Display(), c.Slug()))
	}
	diffOpts := []huh.Option[string]{
		huh.NewOption(model.Beginner.Display(), string(model.Beginner)),
		huh.NewOption(model.Intermediate.Display(), string(model.Intermediate)),
		huh.NewOption(model.Advanced.Display(), string(model.Advanced)),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to budgetsim").
				Description("Build a monthly budget from a list of expenses.\nCover every essential and stay within your income."),
			huh.NewInput().
				Title("What should we call you?").
				Placeholder("Player").
				Value(&vals.name),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Favourite topic").
				Options(catOpts...).
				Value(&vals.category),
			huh.NewSelect[string]().
				Title("Starting difficulty").
				Options(diffOpts...).
				Value(&vals.difficulty),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
		),
	).WithShowHelp(true)
}

// saveSetupConfig applies the form values to the app and persists them.
func (a *App) saveSetupConfig() error {
	cfg, _ := config.Load()

	if name := strings.TrimSpace(a.setupVals.name); name != "" {
		cfg.General.PlayerName = name
	}
	cfg.Game.DefaultCategory = a.setupVals.category
	cfg.Game.DefaultDifficulty = a.setupVals.difficulty
	cfg.Appearance.Theme = a.setupVals.theme
	theme.SetActive(cfg.Appearance.Theme)

	if a.opts.Category == "" {
		a.opts.Category = cfg.Game.DefaultCategory
	}
	if a.opts.Difficulty == "" {
		a.opts.Difficulty = cfg.Game.DefaultDifficulty
	}
	return config.Save(cfg)
}
