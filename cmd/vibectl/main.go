// Command vibectl drives the vibed proxy from a terminal.
//
//	vibectl [-url URL] [-selector S] lights
//	vibectl set [-power on|off] [-brightness 0-100] [-color C]
//	vibectl toggle
//	vibectl breathe [-color C] [-from-color C] [-period S] [-cycles N] [-persist] [-power-on] [-peak F]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/vibed/internal/client"
)

var errUsage = errors.New("usage: vibectl [-url URL] [-selector S] lights|set|toggle|breathe [flags]")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("vibectl failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("vibectl", flag.ContinueOnError)
	baseURL := global.String("url", "http://localhost:7071", "Base URL of the vibed server")
	path := global.String("path", client.DefaultPath, "Proxy endpoint path")
	selector := global.String("selector", client.DefaultSelector, "Light selector")
	timeout := global.Duration("timeout", 15*time.Second, "Request timeout")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	c := client.NewWithPath(*baseURL, *path, &http.Client{Timeout: *timeout})
	cmd, rest := global.Arg(0), global.Args()[1:]

	var result any
	var err error
	switch cmd {
	case "lights":
		result, err = c.GetLights(ctx, *selector)
	case "set":
		var update client.StateUpdate
		if update, err = parseStateUpdate(rest); err == nil {
			result, err = c.SetState(ctx, update, *selector)
		}
	case "toggle":
		result, err = c.TogglePower(ctx, *selector)
	case "breathe":
		var effect client.BreatheEffect
		if effect, err = parseBreatheEffect(rest); err == nil {
			result, err = c.Breathe(ctx, effect, *selector)
		}
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// setFlags returns the names of flags given on the command line
func setFlags(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func parseStateUpdate(args []string) (client.StateUpdate, error) {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	power := fs.String("power", "", "on or off")
	brightness := fs.Int("brightness", 0, "Brightness percent, 0-100")
	color := fs.String("color", "", "Color string, e.g. red or #ff0000")
	if err := fs.Parse(args); err != nil {
		return client.StateUpdate{}, err
	}

	var update client.StateUpdate
	seen := setFlags(fs)
	if seen["power"] {
		if *power != client.PowerOn && *power != client.PowerOff {
			return update, fmt.Errorf("power must be %q or %q", client.PowerOn, client.PowerOff)
		}
		update.Power = client.String(*power)
	}
	if seen["brightness"] {
		if *brightness < 0 || *brightness > 100 {
			return update, errors.New("brightness must be between 0 and 100")
		}
		update.Brightness = client.Int(*brightness)
	}
	if seen["color"] {
		update.Color = client.String(*color)
	}
	return update, nil
}

func parseBreatheEffect(args []string) (client.BreatheEffect, error) {
	fs := flag.NewFlagSet("breathe", flag.ContinueOnError)
	color := fs.String("color", "", "Target color")
	fromColor := fs.String("from-color", "", "Start color")
	period := fs.Float64("period", 2, "Seconds per cycle")
	cycles := fs.Int("cycles", 3, "Number of cycles")
	persist := fs.Bool("persist", false, "Keep the last effect color")
	powerOn := fs.Bool("power-on", true, "Turn the light on first")
	peak := fs.Float64("peak", 0.5, "Where in a period the color peaks, 0-1")
	if err := fs.Parse(args); err != nil {
		return client.BreatheEffect{}, err
	}

	var effect client.BreatheEffect
	seen := setFlags(fs)
	if seen["color"] {
		effect.Color = client.String(*color)
	}
	if seen["from-color"] {
		effect.FromColor = client.String(*fromColor)
	}
	if seen["period"] {
		effect.Period = client.Float(*period)
	}
	if seen["cycles"] {
		effect.Cycles = client.Int(*cycles)
	}
	if seen["persist"] {
		effect.Persist = client.Bool(*persist)
	}
	if seen["power-on"] {
		effect.PowerOn = client.Bool(*powerOn)
	}
	if seen["peak"] {
		effect.Peak = client.Float(*peak)
	}
	return effect, effect.Validate()
}
