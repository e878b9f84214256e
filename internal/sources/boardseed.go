package sources

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed boardseed.yaml
var boardSeedYAML []byte

// boardSeed is the parsed default board-token list per ATS, used when
// the operator hasn't configured their own *_BOARD_TOKENS list.
type boardSeed struct {
	Greenhouse []string `yaml:"greenhouse"`
	Lever      []string `yaml:"lever"`
	Ashby      []string `yaml:"ashby"`
	Workable   []string `yaml:"workable"`
}

// defaultBoardSeed is parsed once at package init. A malformed embed
// (which would only ever happen from a broken build, never at
// runtime) leaves every list empty, so affected adapters simply
// report themselves unavailable rather than panicking at startup.
var defaultBoardSeed = loadBoardSeed()

func loadBoardSeed() boardSeed {
	var seed boardSeed
	_ = yaml.Unmarshal(boardSeedYAML, &seed)
	return seed
}
