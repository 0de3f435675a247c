package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Klingon-tech/sui-tokengen/internal/project"
	"github.com/Klingon-tech/sui-tokengen/internal/prompt"
	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

type createOpts struct {
	name        string
	symbol      string
	decimals    uint8
	description string
	frozen      bool
	environment string
	paramsFile  string
	out         string
	force       bool
	noPrompt    bool
}

func newCreateCmd(g *globalOpts, stdin io.Reader) *cobra.Command {
	o := &createOpts{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a coin package",
		Long: `Generate a Move package for a new Sui coin.

Parameters come from --params, then from flags. When name, symbol or
decimals are still missing and stdin is a terminal, they are asked for
interactively.

Files written:
  <out>/Move.toml
  <out>/sources/<slug>.move
  <out>/tests/<slug>.move`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd, g, o, stdin)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.name, "name", "", "coin name (letters, digits, spaces, commas, periods)")
	f.StringVar(&o.symbol, "symbol", "", "ticker symbol (1-6 letters or digits)")
	f.Uint8Var(&o.decimals, "decimals", 0, fmt.Sprintf("decimal places (%d-%d)", token.MinDecimals, token.MaxDecimals))
	f.StringVar(&o.description, "description", "", "coin description")
	f.BoolVar(&o.frozen, "frozen", false, "freeze the coin metadata")
	f.StringVar(&o.environment, "env", "devnet", "target environment (mainnet, testnet, devnet)")
	f.StringVar(&o.paramsFile, "params", "", "YAML file with coin parameters")
	f.StringVarP(&o.out, "out", "o", "", "output directory (default: ./<slug>)")
	f.BoolVar(&o.force, "force", false, "overwrite existing files")
	f.BoolVar(&o.noPrompt, "no-prompt", false, "never prompt for missing parameters")
	return cmd
}

func runCreate(cmd *cobra.Command, g *globalOpts, o *createOpts, stdin io.Reader) error {
	p, err := collectParams(cmd, o)
	if err != nil {
		return err
	}

	if missingParams(p) && !o.noPrompt && isTerminal(stdin) {
		p, err = prompt.Params(p, tea.WithInput(stdin), tea.WithOutput(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
	}

	b, err := newBackend(g)
	if err != nil {
		return &usageError{err}
	}
	ctx, cancel := commandContext(cmd, g)
	defer cancel()

	res, err := b.Create(ctx, p)
	if err != nil {
		return err
	}

	out := o.out
	if out == "" {
		out = res.Slug
	}
	l, err := project.Write(out, project.Package{
		Slug:     res.Slug,
		MoveToml: res.MoveToml,
		Source:   res.TokenContent,
		Tests:    res.TestTokenContent,
	}, o.force)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	abs, _ := filepath.Abs(l.Dir)
	fmt.Fprintf(w, "Created %s in %s\n", res.Slug, abs)
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n", l.Manifest, l.Source, l.Tests)
	return nil
}

// collectParams merges the params file with explicitly set flags.
func collectParams(cmd *cobra.Command, o *createOpts) (token.Params, error) {
	var p token.Params
	if o.paramsFile != "" {
		var err error
		p, err = token.LoadParamsFile(o.paramsFile)
		if err != nil {
			return token.Params{}, err
		}
	}

	f := cmd.Flags()
	if f.Changed("name") || p.Name == "" {
		p.Name = o.name
	}
	if f.Changed("symbol") || p.Symbol == "" {
		p.Symbol = o.symbol
	}
	if f.Changed("decimals") || p.Decimals == 0 {
		p.Decimals = o.decimals
	}
	if f.Changed("description") || p.Description == "" {
		p.Description = o.description
	}
	if f.Changed("frozen") {
		p.IsFrozen = o.frozen
	}
	if f.Changed("env") || p.Environment == "" {
		p.Environment = token.Environment(o.environment)
	}
	return p.Canonicalize(), nil
}

func missingParams(p token.Params) bool {
	return p.Name == "" || p.Symbol == "" || p.Decimals == 0
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
