/*
Package main implements settingsctl, a command-line client of the user settings service.

It keeps one settings store for the lifetime of the command and drives it the way
a profile screen would: load on start, edit locally, save, upload an avatar, or
follow changes pushed by the service.

Usage:

	settingsctl [-v] <command> [arguments]

Commands:

	register <email> <password>   create an account and print its token
	login <email> <password>      sign in and print the token
	show                          print the current settings as JSON
	set field=value...            edit fields locally, then save the whole draft
	avatar <file>                 upload an avatar image
	watch                         print settings pushed by the service until interrupted

The service URL and token come from SETTINGS_API_URL and SETTINGS_API_TOKEN.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"usersettings/internal/app/remote"
	"usersettings/internal/configs"
	"usersettings/internal/pkg/logx"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "settingsctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("settingsctl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "log requests and store transitions to stderr")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: settingsctl [-v] <register|login|show|set|avatar|watch> [arguments]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errUsage
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logx.InitWithWriter(zerolog.ConsoleWriter{Out: stderr, NoColor: true}, level)

	cfg, err := configs.LoadClientConfig()
	if err != nil {
		return err
	}

	client, err := remote.New(remote.Config{
		BaseURL:    cfg.APIURL,
		Token:      cfg.APIToken,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RateLimit:  cfg.RateLimit,
	})
	if err != nil {
		return err
	}

	cmd := &command{
		client:  client,
		timeout: cfg.RequestTimeout,
		out:     stdout,
	}

	name, rest := flags.Arg(0), flags.Args()[1:]
	switch name {
	case "register":
		return cmd.authenticate(ctx, rest, client.Register)
	case "login":
		return cmd.authenticate(ctx, rest, client.Login)
	case "show":
		return cmd.show(ctx)
	case "set":
		return cmd.set(ctx, rest)
	case "avatar":
		return cmd.avatar(ctx, rest)
	case "watch":
		return cmd.watch(ctx)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
}
