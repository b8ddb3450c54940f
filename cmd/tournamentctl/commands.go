package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/export"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
)

const archivePrefix = "snapshots"

type commands struct {
	logger *slog.Logger
	level  *slog.LevelVar
	out    io.Writer
	cfg    *config.Config
}

type eventAction func(c *cli.Context, e *services.Event) error

func (cmd *commands) configure(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	cmd.level.Set(level)
	cmd.cfg = cfg
	return nil
}

func (cmd *commands) flushMetrics(c *cli.Context) error {
	path := c.String("metrics")
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func (cmd *commands) manager() *services.Manager {
	return services.NewManager(services.ManagerOptions{Logger: cmd.logger})
}

func (cmd *commands) open(c *cli.Context) (*services.Manager, *services.Event, error) {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	m := cmd.manager()
	e, err := m.LoadJSON(data)
	if err != nil {
		return nil, nil, err
	}
	return m, e, nil
}

func (cmd *commands) write(c *cli.Context, t *models.Tournament) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(c.String("file"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// mutate runs fn against the snapshot file and writes the file back when fn
// succeeds.
func (cmd *commands) mutate(fn eventAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, e, err := cmd.open(c)
		if err != nil {
			return err
		}
		if err := fn(c, e); err != nil {
			return err
		}
		return cmd.write(c, e.Tournament())
	}
}

func (cmd *commands) read(fn eventAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, e, err := cmd.open(c)
		if err != nil {
			return err
		}
		return fn(c, e)
	}
}

func (cmd *commands) printJSON(v any) error {
	enc := json.NewEncoder(cmd.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cmd *commands) create(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected a definition file")
	}
	def, err := config.LoadDefinition(c.Args().First())
	if err != nil {
		return err
	}
	e, err := cmd.manager().NewTournament(def.Tournament)
	if err != nil {
		return err
	}
	for _, p := range def.Players {
		if _, err := e.AddPlayer(p); err != nil {
			return fmt.Errorf("failed to add player %q: %w", p.ID, err)
		}
	}
	if err := cmd.write(c, e.Tournament()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, e.ID())
	return nil
}

func (cmd *commands) addPlayer(c *cli.Context, e *services.Event) error {
	p, err := e.AddPlayer(services.PlayerOptions{
		ID:             c.String("id"),
		Alias:          c.String("alias"),
		Seed:           c.Float64("seed"),
		InitialByes:    c.Int("initial-byes"),
		MissingResults: models.MissingResults(c.String("missing")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, p.ID)
	return nil
}

func (cmd *commands) dropPlayer(c *cli.Context, e *services.Event) error {
	if c.NArg() != 1 {
		return errors.New("expected a player id")
	}
	return e.RemovePlayer(c.Args().First())
}

func (cmd *commands) start(c *cli.Context, e *services.Event) error {
	return e.StartEvent(c.Context)
}

func (cmd *commands) report(c *cli.Context, e *services.Event) error {
	if c.NArg() < 3 || c.NArg() > 4 {
		return errors.New("expected <match> <p1 wins> <p2 wins> [draws]")
	}
	args := c.Args().Slice()
	games := make([]int, 3)
	for i, raw := range args[1:] {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid game count %q: %w", raw, err)
		}
		games[i] = n
	}
	return e.EnterResult(args[0], games[0], games[1], games[2])
}

func (cmd *commands) erase(c *cli.Context, e *services.Event) error {
	if c.NArg() != 1 {
		return errors.New("expected a match id")
	}
	return e.EraseResult(c.Args().First())
}

func (cmd *commands) next(c *cli.Context, e *services.Event) error {
	return e.NextRound(c.Context)
}

func (cmd *commands) abort(c *cli.Context, e *services.Event) error {
	return e.Abort()
}

func (cmd *commands) standings(c *cli.Context, e *services.Event) error {
	return cmd.printJSON(models.StandingsTable(e.ID(), e.Standings(c.Bool("active"))))
}

func (cmd *commands) export(c *cli.Context, e *services.Event) error {
	if c.NArg() != 1 {
		return errors.New("expected an output file")
	}
	f, err := os.Create(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	rows := models.StandingsTable(e.ID(), e.Standings(false))
	if err := export.WriteStandings(f, e.Tournament(), rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (cmd *commands) openRepositories(c *cli.Context) (repositories.SnapshotRepository, repositories.TournamentStandingRepository, func(), error) {
	conn, err := db.Connect(c.Context, cmd.cfg.DatabaseURL, cmd.cfg.DBConnectTimeout, cmd.logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeFn := func() {
		if err := conn.Close(); err != nil {
			cmd.logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}
	snapshots := repositories.NewPostgresSnapshotRepository(conn)
	if err := snapshots.EnsureSchema(c.Context); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return snapshots, repositories.NewPostgresTournamentStandingRepository(conn), closeFn, nil
}

func (cmd *commands) dbSave(c *cli.Context, e *services.Event) error {
	snapshots, standings, closeFn, err := cmd.openRepositories(c)
	if err != nil {
		return err
	}
	defer closeFn()

	m := cmd.manager()
	if _, err := m.Load(e.Tournament()); err != nil {
		return err
	}
	if err := m.SaveAll(c.Context, snapshots); err != nil {
		return err
	}
	rows := models.StandingsTable(e.ID(), e.Standings(false))
	if err := standings.ReplaceForTournament(c.Context, e.ID(), rows); err != nil {
		return err
	}
	cmd.logger.Info("tournament stored", slog.String("tournament_id", e.ID()), slog.Int("standings", len(rows)))
	return nil
}

func (cmd *commands) dbLoad(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected a tournament id")
	}
	snapshots, _, closeFn, err := cmd.openRepositories(c)
	if err != nil {
		return err
	}
	defer closeFn()

	t, err := snapshots.GetByID(c.Context, nil, c.Args().First())
	if err != nil {
		return err
	}
	e, err := cmd.manager().Load(t)
	if err != nil {
		return err
	}
	return cmd.write(c, e.Tournament())
}

func (cmd *commands) dbList(c *cli.Context) error {
	snapshots, _, closeFn, err := cmd.openRepositories(c)
	if err != nil {
		return err
	}
	defer closeFn()

	list, err := snapshots.List(c.Context, nil)
	if err != nil {
		return err
	}
	return cmd.printJSON(list)
}

func (cmd *commands) archiver(c *cli.Context) (*storage.SnapshotArchiver, error) {
	if !cmd.cfg.HasObjectStore() {
		return nil, errors.New("object store is not configured: set the R2_* variables")
	}
	store, err := storage.NewCloudflareR2Store(c.Context, storage.CloudflareR2Config{
		AccountID:       cmd.cfg.R2AccountID,
		AccessKeyID:     cmd.cfg.R2AccessKeyID,
		SecretAccessKey: cmd.cfg.R2SecretAccessKey,
		BucketName:      cmd.cfg.R2BucketName,
		PublicBaseURL:   cmd.cfg.R2PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewSnapshotArchiver(store, archivePrefix), nil
}

func (cmd *commands) archivePut(c *cli.Context, e *services.Event) error {
	archiver, err := cmd.archiver(c)
	if err != nil {
		return err
	}
	m := cmd.manager()
	if _, err := m.Load(e.Tournament()); err != nil {
		return err
	}
	locations, err := m.ArchiveAll(c.Context, archiver)
	if err != nil {
		return err
	}
	return cmd.printJSON(locations)
}

func (cmd *commands) archiveGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected an archive key")
	}
	archiver, err := cmd.archiver(c)
	if err != nil {
		return err
	}
	t, err := archiver.Fetch(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	e, err := cmd.manager().Load(t)
	if err != nil {
		return err
	}
	return cmd.write(c, e.Tournament())
}

func (cmd *commands) archiveRemove(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected an archive key")
	}
	archiver, err := cmd.archiver(c)
	if err != nil {
		return err
	}
	if err := archiver.Remove(c.Context, c.Args().First()); err != nil {
		return err
	}
	cmd.logger.Info("archived snapshot removed", slog.String("key", c.Args().First()))
	return nil
}
