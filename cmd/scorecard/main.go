// cmd/scorecard is a terminal front end for the scoring engine.
//
//	scorecard replay --bowler Ann --bowler Bob 10 7 3 9 0 ...
//	scorecard play --bowler Ann
//
// replay deals the throws out in turn order and prints the card. play reads
// one pin count per line and reprints the card after every accepted throw.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/robalobadob/bowling/internal/frame"
	"github.com/robalobadob/bowling/internal/game"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("scorecard")
	}
}

func newApp() *cli.App {
	gameFlags := []cli.Flag{
		&cli.StringSliceFlag{Name: "bowler", Aliases: []string{"b"}, Usage: "bowler name, repeat in throwing order", Required: true},
		&cli.StringFlag{Name: "spare-rule", Value: string(frame.SpareStandard), Usage: "standard or nonzero-second", EnvVars: []string{"SPARE_RULE"}},
		&cli.BoolFlag{Name: "json", Usage: "print the card as JSON"},
	}
	return &cli.App{
		Name:  "scorecard",
		Usage: "score ten-pin bowling games",
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "score a list of throws dealt out in turn order",
				ArgsUsage: "PINS...",
				Flags:     gameFlags,
				Action:    replay,
			},
			{
				Name:   "play",
				Usage:  "read throws from stdin, one per line",
				Flags:  gameFlags,
				Action: play,
			},
		},
	}
}

func newGame(c *cli.Context) (*game.Game, error) {
	rule, err := frame.ParseSpareRule(c.String("spare-rule"))
	if err != nil {
		return nil, err
	}
	return game.New(c.StringSlice("bowler"), game.WithSpareRule(rule))
}

func replay(c *cli.Context) error {
	g, err := newGame(c)
	if err != nil {
		return err
	}
	for i, arg := range c.Args().Slice() {
		pins, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("throw %d: %q is not a pin count", i+1, arg)
		}
		if _, err := g.Bowl(pins); err != nil {
			return fmt.Errorf("throw %d (%d pins): %w", i+1, pins, err)
		}
	}
	return printCard(c.App.Writer, g.Card(), c.Bool("json"))
}

func play(c *cli.Context) error {
	g, err := newGame(c)
	if err != nil {
		return err
	}
	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	out, errOut := c.App.Writer, c.App.ErrWriter

	sc := bufio.NewScanner(in)
	prompt(out, g)
	for !g.Finished() && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		pins, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(errOut, "%q is not a pin count\n", line)
			prompt(out, g)
			continue
		}
		if _, err := g.Bowl(pins); err != nil {
			fmt.Fprintf(errOut, "rejected: %v\n", err)
			prompt(out, g)
			continue
		}
		if err := printCard(out, g.Card(), c.Bool("json")); err != nil {
			return err
		}
		prompt(out, g)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read throws: %w", err)
	}
	if !g.Finished() {
		return errors.New("input ended before the game finished")
	}
	return nil
}

func prompt(w io.Writer, g *game.Game) {
	if g.Finished() {
		fmt.Fprintln(w, "game over")
		return
	}
	b := g.Current()
	fmt.Fprintf(w, "%s, frame %d> ", b.Name, b.CurrentFrame()+1)
}

func printCard(w io.Writer, card game.Card, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(card)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "\n")
	for i := 1; i <= frame.Frames; i++ {
		fmt.Fprintf(tw, "\t%d", i)
	}
	fmt.Fprint(tw, "\ttotal\n")
	for _, row := range card.Bowlers {
		fmt.Fprint(tw, row.Name)
		for _, fc := range row.Frames {
			fmt.Fprintf(tw, "\t%s", marks(fc))
		}
		fmt.Fprintf(tw, "\t%d\n", row.Total)
		for _, fc := range row.Frames {
			if fc.Running != nil {
				fmt.Fprintf(tw, "\t%d", *fc.Running)
			} else {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprint(tw, "\t\n")
	}
	return tw.Flush()
}

// marks renders a frame the way a scoring monitor does: X for a strike,
// / for a spare, - for a miss.
func marks(fc game.FrameCard) string {
	var sb strings.Builder
	standing, fresh := frame.Rack, true
	for i, pins := range fc.Throws {
		switch {
		case pins == frame.Rack && fresh:
			sb.WriteByte('X')
		case pins == standing && pins > 0 && (i == 1 && fc.Spare || i > 1):
			sb.WriteByte('/')
		case pins == 0:
			sb.WriteByte('-')
		default:
			sb.WriteString(strconv.Itoa(pins))
		}
		standing -= pins
		fresh = standing == 0
		if fresh {
			standing = frame.Rack
		}
	}
	return sb.String()
}
