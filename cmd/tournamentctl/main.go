package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	app := newApp(logger, level, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newApp(logger *slog.Logger, level *slog.LevelVar, out io.Writer) *cli.App {
	c := &commands{logger: logger, level: level, out: out}
	return &cli.App{
		Name:  "tournamentctl",
		Usage: "run Swiss, round-robin and elimination tournaments from a snapshot file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "tournament snapshot (JSON)",
				Value:   "tournament.json",
			},
			&cli.StringFlag{
				Name:  "metrics",
				Usage: "write counters to this Prometheus textfile after the command",
			},
		},
		Before: c.configure,
		After:  c.flushMetrics,
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "create a tournament from a YAML definition",
				ArgsUsage: "<definition.yaml>",
				Action:    c.create,
			},
			{
				Name:  "add",
				Usage: "register a player (Swiss also takes late entries)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id"},
					&cli.StringFlag{Name: "alias"},
					&cli.Float64Flag{Name: "seed"},
					&cli.IntFlag{Name: "initial-byes"},
					&cli.StringFlag{Name: "missing", Usage: "losses or byes, for late Swiss entries"},
				},
				Action: c.mutate(c.addPlayer),
			},
			{
				Name:      "drop",
				Usage:     "remove a player",
				ArgsUsage: "<player>",
				Action:    c.mutate(c.dropPlayer),
			},
			{
				Name:   "start",
				Usage:  "close registration and pair the first round",
				Action: c.mutate(c.start),
			},
			{
				Name:      "report",
				Usage:     "enter a match result",
				ArgsUsage: "<match> <p1 wins> <p2 wins> [draws]",
				Action:    c.mutate(c.report),
			},
			{
				Name:      "erase",
				Usage:     "erase a match result",
				ArgsUsage: "<match>",
				Action:    c.mutate(c.erase),
			},
			{
				Name:   "next",
				Usage:  "advance to the next round, the playoffs, or the end",
				Action: c.mutate(c.next),
			},
			{
				Name:   "abort",
				Usage:  "end the tournament early",
				Action: c.mutate(c.abort),
			},
			{
				Name:  "standings",
				Usage: "print the standings table as JSON",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "active", Usage: "leave out removed and eliminated players"},
				},
				Action: c.read(c.standings),
			},
			{
				Name:      "export",
				Usage:     "write standings and matches to an XLSX workbook",
				ArgsUsage: "<out.xlsx>",
				Action:    c.read(c.export),
			},
			{
				Name:  "db",
				Usage: "Postgres snapshot storage",
				Subcommands: []*cli.Command{
					{Name: "save", Usage: "store the snapshot and its standings", Action: c.read(c.dbSave)},
					{Name: "load", Usage: "fetch a stored snapshot into the file", ArgsUsage: "<tournament>", Action: c.dbLoad},
					{Name: "list", Usage: "list stored snapshots", Action: c.dbList},
				},
			},
			{
				Name:  "archive",
				Usage: "object store snapshot archive",
				Subcommands: []*cli.Command{
					{Name: "put", Usage: "archive the snapshot", Action: c.read(c.archivePut)},
					{Name: "get", Usage: "restore an archived snapshot into the file", ArgsUsage: "<key>", Action: c.archiveGet},
					{Name: "rm", Usage: "delete an archived snapshot", ArgsUsage: "<key>", Action: c.archiveRemove},
				},
			},
		},
	}
}
