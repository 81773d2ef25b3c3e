package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/deepnoodle-ai/wonton/cli"
)

func main() {
	root := cli.New("todo").
		Description("A task list that lives in your terminal").
		Version("0.1.0").
		GlobalFlags(
			cli.String("dir", "d").
				Env("TODO_DIR").
				Help("Storage directory (defaults to ~/.local/share/todo)"),
			cli.String("config", "c").
				Env("TODO_CONFIG").
				Help("Path to a YAML or JSON config file"),
			cli.String("log-level", "").
				Env("TODO_LOG_LEVEL").
				Help("Log level to use (debug, info, warn, error)"),
			cli.Bool("no-color", "").
				Help("Disable colored output"),
			cli.Bool("ephemeral", "").
				Help("Keep tasks in memory only"),
		)

	root.Main().
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.interactive(a.withLogger(context.Background()), os.Stdin)
		})

	registerCommands(root)

	if err := root.Execute(); err != nil {
		if cli.IsHelpRequested(err) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func optionsFromFlags(ctx *cli.Context) appOptions {
	return appOptions{
		dir:        ctx.String("dir"),
		configPath: ctx.String("config"),
		logLevel:   ctx.String("log-level"),
		noColor:    ctx.Bool("no-color"),
		ephemeral:  ctx.Bool("ephemeral"),
		out:        os.Stdout,
	}
}

func registerCommands(root *cli.App) {
	root.Command("list").
		Description("Show the task list").
		Flags(
			cli.String("match", "m").Help("Only show tasks whose text matches a glob pattern"),
		).
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.list(ctx.String("match"))
		})

	root.Command("add").
		Description("Add a task").
		Args("text").
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.add(a.withLogger(context.Background()), ctx.Arg(0))
		})

	root.Command("done").
		Description("Mark a task done, or not done if it already is").
		Args("number").
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.toggle(a.withLogger(context.Background()), ctx.Arg(0))
		})

	root.Command("rm").
		Description("Delete a task").
		Args("number").
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.remove(a.withLogger(context.Background()), ctx.Arg(0))
		})

	root.Command("watch").
		Description("Re-render the list whenever it changes on disk").
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			goCtx, stop := signal.NotifyContext(a.withLogger(context.Background()), os.Interrupt)
			defer stop()
			return a.watch(goCtx)
		})

	root.Command("config").
		Description("Show the effective configuration").
		Flags(
			cli.Bool("init", "").Help("Also write it to the config file"),
		).
		Run(func(ctx *cli.Context) error {
			a, err := openApp(optionsFromFlags(ctx))
			if err != nil {
				return cli.Errorf("%v", err)
			}
			return a.showConfig(a.withLogger(context.Background()), ctx.Bool("init"))
		})
}
