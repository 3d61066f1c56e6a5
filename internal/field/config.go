package field

// TokenConfig describes one token in a board configuration. Kind is one of
// "numbered", "accelerator", or "dark"; Number is set only for numbered
// tokens.
type TokenConfig struct {
	Kind   string `json:"kind" yaml:"kind"`
	Number int    `json:"number,omitempty" yaml:"number,omitempty"`
}

// BoardConfig describes an initial board: a name and the token sequence,
// clockwise. It is accepted as JSON (server) and YAML (CLI).
type BoardConfig struct {
	Name   string        `json:"name" yaml:"name"`
	Tokens []TokenConfig `json:"tokens" yaml:"tokens"`
}

// TokenFromConfig resolves one token config against a catalog. Numbered
// tokens pick up their display metadata from the catalog entry.
func TokenFromConfig(tc TokenConfig, cat *Catalog) (Token, error) {
	switch TokenKind(tc.Kind) {
	case KindAccelerator:
		return Accelerator, nil
	case KindDarkAccelerator:
		return DarkAccelerator, nil
	case KindNumbered:
		return cat.Lookup(tc.Number)
	default:
		return Token{}, &ValidationError{Issues: []string{"unknown token kind: " + tc.Kind}}
	}
}

// BuildTokensFromConfig resolves a validated board config into the token
// sequence for a new ring.
func BuildTokensFromConfig(cfg BoardConfig, cat *Catalog) ([]Token, error) {
	if err := ValidateBoardConfig(cfg); err != nil {
		return nil, err
	}
	if cat == nil {
		cat = DefaultCatalog()
	}

	tokens := make([]Token, 0, len(cfg.Tokens))
	for _, tc := range cfg.Tokens {
		tok, err := TokenFromConfig(tc, cat)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
