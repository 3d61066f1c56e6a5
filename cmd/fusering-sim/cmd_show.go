package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fusering/fusering/internal/field"
)

var showFlags struct {
	boardFile   string
	catalogFile string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve a board config against the catalog and print it",
	RunE:  runShow,
}

func init() {
	f := showCmd.Flags()
	f.StringVar(&showFlags.boardFile, "board", "", "Path to a YAML board config (required)")
	f.StringVar(&showFlags.catalogFile, "catalog", "", "Path to a catalog CSV; empty uses the embedded catalog")

	_ = showCmd.MarkFlagRequired("board")
}

func runShow(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(showFlags.catalogFile)
	if err != nil {
		return err
	}

	boardCfg, err := loadBoardConfig(showFlags.boardFile)
	if err != nil {
		return err
	}

	tokens, err := field.BuildTokensFromConfig(boardCfg, catalog)
	if err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "board %q (%d tokens, catalog of %d):\n", boardCfg.Name, len(tokens), catalog.Size())
	for i, tok := range tokens {
		if tok.Kind == field.KindNumbered {
			fmt.Fprintf(out, "  %2d: %-8s %s %s\n", i, tok.Symbol, tok.Name, tok.Color)
		} else {
			fmt.Fprintf(out, "  %2d: %s\n", i, tok)
		}
	}
	return nil
}
