package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/codegangsta/cli"
	"github.com/kevin-cantwell/dotplay"
	"github.com/lmittmann/tint"
	"golang.org/x/sys/unix"
)

func main() {
	// Replaced in app.Before once the log level is known.
	logger := newLogger(slog.LevelInfo)
	cfg := dotplay.DefaultConfig()

	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "dotplay"
	app.Usage = "Draws images and plays videos in the terminal as unicode braille symbols."
	app.Author = "Kevin Cantwell"
	app.Email = "kevin.cantwell@gmail.com"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Read settings from the YAML `FILE`. Flags override it.",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "`LEVEL` is one of debug, info, warn or error.",
		},
	}
	app.Before = func(c *cli.Context) error {
		if path := c.GlobalString("config"); path != "" {
			loaded, err := dotplay.LoadConfig(path)
			if err != nil {
				return err
			}
			*cfg = *loaded
		}
		if c.GlobalIsSet("log-level") {
			cfg.LogLevel = c.GlobalString("log-level")
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return fmt.Errorf("log level %q: %w", cfg.LogLevel, dotplay.ErrInvalidConfig)
		}
		logger = newLogger(level)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:         "show",
			Usage:        "Draws a still image.",
			ArgsUsage:    "[file|url|-]",
			Flags:        showFlags,
			OnUsageError: usageError,
			Action: func(c *cli.Context) error {
				return show(c, &cfg.Show, logger)
			},
		},
		{
			Name:         "play",
			Usage:        "Plays a video, an animated gif or an mjpeg stream. CTRL-C to quit.",
			ArgsUsage:    "[file|url|-]",
			Flags:        playFlags,
			OnUsageError: usageError,
			Action: func(c *cli.Context) error {
				return play(c, &cfg.Play, logger)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("dotplay failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
}

// usageError prints help for bad flags and exits cleanly.
func usageError(c *cli.Context, err error, isSubcommand bool) error {
	fmt.Fprintf(c.App.Writer, "Incorrect Usage: %v\n\n", err)
	cli.ShowAppHelp(c)
	return nil
}

var showFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "fit,f",
		Usage: "`FIT` = 80,25 scales the image to 80 columns and 25 lines.",
	},
	cli.Float64Flag{
		Name:  "gamma,g",
		Usage: "`GAMMA` = 1.0 gives the original image. GAMMA greater than 1.0 darkens the image and GAMMA less than 1.0 lightens it.",
	},
	cli.IntFlag{
		Name:  "threshold,t",
		Usage: "`LEVEL` above which samples become dots. Negative picks one from the image histogram.",
	},
	cli.StringFlag{
		Name:  "mode,m",
		Usage: "`MODE` is threshold, dither or ordered.",
	},
	cli.BoolFlag{
		Name:  "invert,i",
		Usage: "Inverts the image.",
	},
	cli.BoolFlag{
		Name:  "keep-aspect,k",
		Usage: "Scales the image down to fit without stretching it.",
	},
	cli.BoolTFlag{
		Name:  "blank-dot",
		Usage: "Draws empty cells as a single dot so they keep their width.",
	},
	cli.Float64Flag{
		Name:  "brightness,b",
		Usage: "`BRIGHTNESS` = 0 gives the original image. BRIGHTNESS = -100 gives solid black image. BRIGHTNESS = 100 gives solid white image.",
	},
	cli.Float64Flag{
		Name:  "contrast,c",
		Usage: "`CONTRAST` = 0 gives the original image. CONTRAST = -100 gives solid grey image. CONTRAST = 100 gives maximum contrast.",
	},
	cli.Float64Flag{
		Name:  "sharpen,s",
		Usage: "`SHARPEN` = 0 gives the original image. SHARPEN greater than 0 sharpens the image.",
	},
	cli.Float64Flag{
		Name:  "sigmoid-midpoint",
		Usage: "`MIDPOINT` of contrast that must be between 0 and 1.",
		Value: 0.5,
	},
	cli.Float64Flag{
		Name:  "sigmoid-factor",
		Usage: "`FACTOR` = 0 gives the original image. FACTOR greater than 0 increases contrast. FACTOR less than 0 decreases contrast.",
	},
	cli.BoolFlag{
		Name:  "shrink",
		Usage: "Shrinks images too large to process instead of failing.",
	},
}

var playFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "size,f",
		Usage: "`SIZE` = 96,30 draws frames 96 columns wide and 30 lines high.",
	},
	cli.Float64Flag{
		Name:  "gamma,g",
		Usage: "`GAMMA` applied to every frame.",
	},
	cli.IntFlag{
		Name:  "pool",
		Usage: "`N` frame buffers. Up to N-1 frames are decoded ahead.",
	},
	cli.BoolFlag{
		Name:  "color",
		Usage: "Tints each cell with its average gray level.",
	},
	cli.BoolFlag{
		Name:  "blank-dot",
		Usage: "Draws empty cells as a single dot.",
	},
	cli.BoolTFlag{
		Name:  "osd",
		Usage: "Shows frame timing on the first line.",
	},
	cli.DurationFlag{
		Name:  "min-sleep",
		Usage: "Shortest `PAUSE` between frames.",
	},
	cli.BoolFlag{
		Name:  "inline",
		Usage: "Draws frames at the cursor instead of clearing the screen.",
	},
	cli.BoolFlag{
		Name:  "gif",
		Usage: "Input is an animated gif.",
	},
	cli.IntFlag{
		Name:  "loops",
		Usage: "Plays a gif `N` times. 0 uses the file's loop count.",
		Value: 1,
	},
	cli.Float64Flag{
		Name:  "mjpeg",
		Usage: "Input is a stream of jpegs played at `FPS` frames per second.",
	},
	cli.BoolFlag{
		Name:  "demo",
		Usage: "Plays a generated test pattern. No input is needed.",
	},
	cli.IntFlag{
		Name:  "frames",
		Usage: "Number of `N` test pattern frames.",
		Value: 250,
	},
}

func show(c *cli.Context, cfg *dotplay.ShowConfig, logger *slog.Logger) error {
	if c.IsSet("fit") {
		cols, rows, err := dotplay.ParseCells(c.String("fit"))
		if err != nil {
			return err
		}
		cfg.Cols, cfg.Rows = cols, rows
	}
	if c.IsSet("gamma") {
		cfg.Gamma = c.Float64("gamma")
	}
	if c.IsSet("threshold") {
		cfg.Threshold = c.Int("threshold")
	}
	if c.IsSet("mode") {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("invert") {
		cfg.Invert = c.Bool("invert")
	}
	if c.IsSet("keep-aspect") {
		cfg.KeepAspect = c.Bool("keep-aspect")
	}
	if c.IsSet("blank-dot") {
		cfg.BlankDot = c.BoolT("blank-dot")
	}
	if c.IsSet("brightness") {
		cfg.Brightness = c.Float64("brightness")
	}
	if c.IsSet("contrast") {
		cfg.Contrast = c.Float64("contrast")
	}
	if c.IsSet("sharpen") {
		cfg.Sharpen = c.Float64("sharpen")
	}
	if c.IsSet("shrink") {
		cfg.Shrink = c.Bool("shrink")
	}
	mode, err := dotplay.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	input := c.Args().First()
	r, err := open(input)
	if err != nil {
		return err
	}
	defer r.Close()

	img, err := dotplay.Decode(r, dotplay.LoadOptions{
		Brightness:      cfg.Brightness,
		Contrast:        cfg.Contrast,
		Sharpen:         cfg.Sharpen,
		SigmoidMidpoint: c.Float64("sigmoid-midpoint"),
		SigmoidFactor:   c.Float64("sigmoid-factor"),
		ShrinkOversize:  cfg.Shrink,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", inputName(input), err)
	}
	logger.Debug("image loaded", "input", inputName(input), "width", img.Width, "height", img.Height)

	stats, err := dotplay.RenderImage(os.Stdout, img, dotplay.StaticOptions{
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		Gamma:      cfg.Gamma,
		Threshold:  cfg.Threshold,
		Mode:       mode,
		Invert:     cfg.Invert,
		BlankDot:   cfg.BlankDot,
		KeepAspect: cfg.KeepAspect,
	})
	if err != nil {
		return err
	}
	logger.Debug("image drawn",
		"width", stats.Width, "height", stats.Height, "threshold", stats.Threshold,
		"cols", stats.Cols, "rows", stats.Rows, "bytes", stats.Bytes)
	return nil
}

func play(c *cli.Context, cfg *dotplay.PlayConfig, logger *slog.Logger) error {
	if c.IsSet("size") {
		cols, rows, err := dotplay.ParseCells(c.String("size"))
		if err != nil {
			return err
		}
		cfg.Cols, cfg.Rows = cols, rows
	}
	if c.IsSet("gamma") {
		cfg.Gamma = c.Float64("gamma")
	}
	if c.IsSet("pool") {
		cfg.Pool = c.Int("pool")
	}
	if c.IsSet("color") {
		cfg.Color = c.Bool("color")
	}
	if c.IsSet("blank-dot") {
		cfg.BlankDot = c.Bool("blank-dot")
	}
	if c.IsSet("osd") {
		cfg.OSD = c.BoolT("osd")
	}
	if c.IsSet("inline") {
		cfg.Inline = c.Bool("inline")
	}
	if c.IsSet("min-sleep") {
		cfg.MinSleep = c.Duration("min-sleep")
	}

	input := c.Args().First()
	if input == "" && !c.Bool("demo") && !c.IsSet("mjpeg") {
		cli.ShowCommandHelp(c, "play")
		return nil
	}

	// Ctrl-C cancels playback; the player restores the cursor on its way out.
	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	dec, err := openSource(ctx, c, input)
	if err != nil {
		return err
	}
	defer dec.Close()

	renderOpts := []dotplay.RenderOpt{dotplay.WithBlankDot(cfg.BlankDot)}
	if cfg.Color {
		renderOpts = append(renderOpts, dotplay.WithColor(cfg.ColorStep))
	}
	playerOpts := []dotplay.PlayerOpt{
		dotplay.WithSize(cfg.Cols, cfg.Rows),
		dotplay.WithGamma(cfg.Gamma),
		dotplay.WithPoolSize(cfg.Pool),
		dotplay.WithMinSleep(cfg.MinSleep),
		dotplay.WithOSD(cfg.OSD),
		dotplay.WithRenderOpts(renderOpts...),
		dotplay.WithLogger(logger),
	}
	if cfg.Inline {
		playerOpts = append(playerOpts, dotplay.WithInline())
	}
	player := dotplay.NewPlayer(dec, os.Stdout, playerOpts...)
	err = player.Play(ctx)
	if interrupted(ctx, err) {
		logger.Info("playback interrupted", "frames", player.Stats().Frames, "err", err)
		return nil
	}
	return err
}

// interrupted reports whether playback stopped because of a signal. A source
// killed by the same signal may fail before the player sees the cancellation.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled))
}

func openSource(ctx context.Context, c *cli.Context, input string) (dotplay.Decoder, error) {
	switch {
	case c.Bool("demo"):
		return dotplay.NewTestPattern(320, 180, c.Int("frames"), 25)
	case c.Bool("gif"):
		r, err := open(input)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		dec, err := dotplay.DecodeGIF(r, dotplay.WithLoops(c.Int("loops")))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", inputName(input), err)
		}
		return dec, nil
	case c.IsSet("mjpeg"):
		r, err := open(input)
		if err != nil {
			return nil, err
		}
		return dotplay.NewMJPEGDecoder(r, c.Float64("mjpeg")), nil
	default:
		return dotplay.OpenFFmpeg(ctx, input)
	}
}

// open returns a reader for a file, an http(s) url, or stdin when input is
// empty or "-".
func open(input string) (io.ReadCloser, error) {
	if input == "" || input == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		resp, err := http.Get(input)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%s: %s", input, resp.Status)
		}
		return resp.Body, nil
	}
	return os.Open(input)
}

func inputName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}
