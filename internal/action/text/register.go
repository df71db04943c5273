package text

import (
	"fmt"

	"stringact/internal/action"
	"stringact/internal/config"
)

// Options carries the per-action options used by All.
type Options struct {
	Random  []RandomOption
	Replace []ReplaceOption
}

// All returns every string action, configured with opts.
func All(opts Options) []action.Action {
	return []action.Action{
		NewRandom(opts.Random...),
		NewReplace(opts.Replace...),
	}
}

// OptionsFromConfig translates the random and replace config sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	regexOpts, err := ParseRegexOptions(cfg.Replace.Options)
	if err != nil {
		return Options{}, fmt.Errorf("replace options: %w", err)
	}

	opts := Options{
		Random: []RandomOption{WithMaxLength(cfg.Random.MaxLength)},
		Replace: []ReplaceOption{
			WithRegexOptions(regexOpts),
			WithMatchTimeout(cfg.GetMatchTimeout()),
			WithPatternCache(NewPatternCache(cfg.Replace.CacheSize)),
		},
	}
	if cfg.Random.Seed != nil {
		opts.Random = append(opts.Random, WithSeed(*cfg.Random.Seed))
	}
	if cfg.Random.SkipWhitespace {
		opts.Random = append(opts.Random, WithFilter(NotSpace))
	}
	if cfg.Random.PrintableOnly {
		opts.Random = append(opts.Random, WithFilter(Printable))
	}
	return opts, nil
}
