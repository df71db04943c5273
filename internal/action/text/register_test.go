package text

import (
	"testing"

	"stringact/internal/action"
	"stringact/internal/config"
	"stringact/internal/term"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllNames(t *testing.T) {
	var names []string
	for _, a := range All(Options{}) {
		names = append(names, a.Name().String())
	}
	assert.Equal(t, []string{"string/random", "string/replace"}, names)
}

func TestOptionsFromConfig(t *testing.T) {
	seed := uint64(5)
	cfg := config.DefaultConfig()
	cfg.Random.Seed = &seed
	cfg.Random.MaxLength = 3
	cfg.Random.SkipWhitespace = true
	cfg.Replace.Options = []string{"ignore_case"}

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	actions := All(opts)

	random, replace := actions[0], actions[1]

	sink := action.NewListSink()
	err = random.Execute(false, action.EmptyContext, []term.Term{term.String("a b"), term.Int(3), term.Int(4)}, sink)
	require.ErrorIs(t, err, action.ErrGeneration, "max length applies")
	require.Equal(t, 1, sink.Len())
	requireFromAlphabet(t, "ab", sink.Strings()[0])

	sink = action.NewListSink()
	err = replace.Execute(false, action.EmptyContext, term.Strings("X", "y", "xXx"), sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"yyy"}, sink.Strings())
}

func TestOptionsFromConfigPrintableOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Random.PrintableOnly = true

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)

	sink := action.NewListSink()
	err = All(opts)[0].Execute(false, action.EmptyContext, []term.Term{term.String("\x01x\x7f"), term.Int(16)}, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"xxxxxxxxxxxxxxxx"}, sink.Strings())

	sink = action.NewListSink()
	err = All(opts)[0].Execute(false, action.EmptyContext, []term.Term{term.String("\x01\x02"), term.Int(1)}, sink)
	assert.ErrorIs(t, err, action.ErrGeneration, "nothing printable left to draw from")
}

func TestOptionsFromConfigRejectsUnknownOption(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Replace.Options = []string{"fuzzy"}

	_, err := OptionsFromConfig(cfg)
	assert.ErrorContains(t, err, "fuzzy")
}
