package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fusering/fusering/internal/field"
)

var playFlags struct {
	boardFile   string
	movesFile   string
	catalogFile string
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Apply a scripted sequence of moves to a board",
	RunE:  runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playFlags.boardFile, "board", "", "Path to a YAML board config (required)")
	f.StringVar(&playFlags.movesFile, "moves", "", "Path to a YAML move script (required)")
	f.StringVar(&playFlags.catalogFile, "catalog", "", "Path to a catalog CSV; empty uses the embedded catalog")

	_ = playCmd.MarkFlagRequired("board")
	_ = playCmd.MarkFlagRequired("moves")
}

// moveConfig is one scripted move. Action is "insert" or "remove"; insert
// moves carry a token kind (and number for numbered tokens).
type moveConfig struct {
	Action string `yaml:"action"`
	Kind   string `yaml:"kind,omitempty"`
	Number int    `yaml:"number,omitempty"`
	Index  int    `yaml:"index"`
}

type moveScript struct {
	Moves []moveConfig `yaml:"moves"`
}

// consoleListener prints every board event as it happens.
type consoleListener struct {
	out io.Writer
}

func (cl *consoleListener) OnInsert(index int, token field.Token) {
	fmt.Fprintf(cl.out, "  insert  %s at %d\n", token, index)
}

func (cl *consoleListener) OnReaction(ccwIndex, centerIndex, cwIndex int, result field.Token, resultIndex int) {
	fmt.Fprintf(cl.out, "  fusion  (%d %d %d) -> %s at %d\n", ccwIndex, centerIndex, cwIndex, result, resultIndex)
}

func (cl *consoleListener) OnRemove(index int) {
	fmt.Fprintf(cl.out, "  remove  index %d\n", index)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(playFlags.catalogFile)
	if err != nil {
		return err
	}

	boardCfg, err := loadBoardConfig(playFlags.boardFile)
	if err != nil {
		return err
	}

	tokens, err := field.BuildTokensFromConfig(boardCfg, catalog)
	if err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	ring, err := field.NewRing(catalog, tokens)
	if err != nil {
		return fmt.Errorf("cannot build ring: %w", err)
	}

	data, err := os.ReadFile(playFlags.movesFile)
	if err != nil {
		return fmt.Errorf("reading move script: %w", err)
	}
	var script moveScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return fmt.Errorf("parsing move script: %w", err)
	}

	out := cmd.OutOrStdout()
	ring.AddListener(&consoleListener{out: out})

	fmt.Fprintf(out, "board %q: %s\n", boardCfg.Name, ring)

	for i, move := range script.Moves {
		fmt.Fprintf(out, "move %d: %s\n", i+1, describeMove(move))

		switch move.Action {
		case "insert":
			token, err := field.TokenFromConfig(field.TokenConfig{Kind: move.Kind, Number: move.Number}, catalog)
			if err != nil {
				return fmt.Errorf("move %d: %w", i+1, err)
			}
			if err := ring.Insert(token, move.Index); err != nil {
				return fmt.Errorf("move %d: %w", i+1, err)
			}
		case "remove":
			if err := ring.Remove(move.Index); err != nil {
				return fmt.Errorf("move %d: %w", i+1, err)
			}
		default:
			return fmt.Errorf("move %d: unknown action %q", i+1, move.Action)
		}

		fmt.Fprintf(out, "  ring    %s (%d tokens)\n", ring, ring.Count())
	}

	fmt.Fprintf(out, "final: %s (%d tokens after %d moves)\n", ring, ring.Count(), len(script.Moves))
	return nil
}

func describeMove(move moveConfig) string {
	if move.Action == "remove" {
		return fmt.Sprintf("remove index %d", move.Index)
	}
	if move.Kind == string(field.KindNumbered) {
		return fmt.Sprintf("insert #%d at %d", move.Number, move.Index)
	}
	return fmt.Sprintf("insert %s at %d", move.Kind, move.Index)
}

func loadCatalog(path string) (*field.Catalog, error) {
	if path == "" {
		return field.DefaultCatalog(), nil
	}
	catalog, err := field.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}
	return catalog, nil
}

func loadBoardConfig(path string) (field.BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return field.BoardConfig{}, fmt.Errorf("reading board config: %w", err)
	}
	var cfg field.BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return field.BoardConfig{}, fmt.Errorf("parsing board config: %w", err)
	}
	return cfg, nil
}
