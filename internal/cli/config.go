package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/peg"
)

// defaultBlocks is the block count the CLI uses when neither a flag nor the
// config file sets one. The library default is smaller.
const defaultBlocks = 10

// Config is the on-disk configuration. Zero-valued keys absent from the file
// keep their defaults.
type Config struct {
	Blocks     int    `toml:"blocks"`
	Seed       uint64 `toml:"seed"` // 0 picks a random seed per run
	Iterations int    `toml:"iterations"`
	StepMS     int    `toml:"step_ms"`
	SlackMS    int    `toml:"slack_ms"`
	Strict     bool   `toml:"strict"`

	Geometry GeometryConfig `toml:"geometry"`
	Render   RenderConfig   `toml:"render"`
	Serve    ServeConfig    `toml:"serve"`
}

// GeometryConfig mirrors peg.Geometry.
type GeometryConfig struct {
	OriginX       int `toml:"origin_x"`
	OriginY       int `toml:"origin_y"`
	BlockHeight   int `toml:"block_height"`
	StackWidth    int `toml:"stack_width"`
	MaxBlockWidth int `toml:"max_block_width"`
}

// RenderConfig holds raster and animation output settings.
type RenderConfig struct {
	Scale float64 `toml:"scale"`
	Speed float64 `toml:"speed"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr         string `toml:"addr"`
	MaxRuns      int    `toml:"max_runs"`
	CacheEntries int    `toml:"cache_entries"` // encoded frames kept; 0 disables
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	g := peg.DefaultGeometry()
	return Config{
		Blocks:     defaultBlocks,
		Iterations: animate.DefaultIterations,
		StepMS:     int(animate.DefaultStep / time.Millisecond),
		SlackMS:    int(animate.DefaultSlack / time.Millisecond),
		Geometry: GeometryConfig{
			OriginX:       g.Origin.X,
			OriginY:       g.Origin.Y,
			BlockHeight:   g.BlockHeight,
			StackWidth:    g.StackWidth,
			MaxBlockWidth: g.MaxBlockWidth,
		},
		Render: RenderConfig{Scale: 2, Speed: 1},
		Serve:  ServeConfig{Addr: ":8080", MaxRuns: 64, CacheEntries: 256},
	}
}

// PegGeometry converts the geometry section.
func (c Config) PegGeometry() peg.Geometry {
	return peg.Geometry{
		Origin:        peg.Point{X: c.Geometry.OriginX, Y: c.Geometry.OriginY},
		BlockHeight:   c.Geometry.BlockHeight,
		StackWidth:    c.Geometry.StackWidth,
		MaxBlockWidth: c.Geometry.MaxBlockWidth,
	}
}

// AnimateConfig converts the timing keys.
func (c Config) AnimateConfig() animate.Config {
	return animate.Config{
		Iterations: c.Iterations,
		Step:       time.Duration(c.StepMS) * time.Millisecond,
		Slack:      time.Duration(c.SlackMS) * time.Millisecond,
	}
}

// Validate rejects values no run can work with. The block count is left to
// peg.NewManager, which warns or fails depending on Strict.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"iterations must be >= 0", c.Iterations >= 0},
		{"step_ms must be > 0", c.StepMS > 0},
		{"slack_ms must be >= 0", c.SlackMS >= 0},
		{"geometry.block_height must be > 0", c.Geometry.BlockHeight > 0},
		{"geometry.stack_width must be > 0", c.Geometry.StackWidth > 0},
		{"geometry.max_block_width must be > 0", c.Geometry.MaxBlockWidth > 0},
		{"render.scale must be > 0", c.Render.Scale > 0},
		{"render.speed must be > 0", c.Render.Speed > 0},
		{"serve.max_runs must be > 0", c.Serve.MaxRuns > 0},
		{"serve.cache_entries must be >= 0", c.Serve.CacheEntries >= 0},
	}
	for _, chk := range checks {
		if !chk.ok {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", chk.name)
		}
	}
	return nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/pegtower/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// loadConfig reads path on top of DefaultConfig. An empty path means the
// default location, which may be absent; an explicit path must exist.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Run Flags
// =============================================================================

// runFlags are the flags shared by solve, render and animate. They override
// config file values only when set explicitly.
type runFlags struct {
	blocks     int
	seed       uint64
	iterations int
	step       time.Duration
	slack      time.Duration
	strict     bool
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	d := DefaultConfig()
	cmd.Flags().IntVarP(&f.blocks, "blocks", "n", d.Blocks, "number of blocks stacked on the first peg")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for block widths (0 = random)")
	cmd.Flags().IntVar(&f.iterations, "iterations", d.Iterations, "heuristic iterations to run")
	cmd.Flags().DurationVar(&f.step, "step", animate.DefaultStep, "delay between moves")
	cmd.Flags().DurationVar(&f.slack, "slack", animate.DefaultSlack, "extra pause after each delivery")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on block counts outside [0, 10] instead of warning")
}

// apply copies explicitly set flags into cfg and revalidates it.
func (f *runFlags) apply(cmd *cobra.Command, cfg Config) (Config, error) {
	changed := cmd.Flags().Changed
	if changed("blocks") {
		cfg.Blocks = f.blocks
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if changed("step") {
		cfg.StepMS = int(f.step / time.Millisecond)
	}
	if changed("slack") {
		cfg.SlackMS = int(f.slack / time.Millisecond)
	}
	if changed("strict") {
		cfg.Strict = f.strict
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Config Command
// =============================================================================

func (c *CLI) configCommand() *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration pegtower runs with: built-in defaults overlaid by
the config file. Redirect the output to create a starting config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := c.configPath
				if path == "" {
					p, err := defaultConfigPath()
					if err != nil {
						return err
					}
					path = p
				}
				printFile(path)
				return nil
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.cfg)
		},
	}

	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file location instead")
	return cmd
}
