package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Dosada05/prediction-pool/cache"
	"github.com/Dosada05/prediction-pool/db"
	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var (
	databaseURLFlag = &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Postgres connection string",
		EnvVars:  []string{"DATABASE_URL"},
		Required: true,
	}
	rulesFileFlag = &cli.StringFlag{
		Name:    "rules-file",
		Usage:   "YAML file overriding the stage point table",
		EnvVars: []string{"STAGE_RULES_FILE"},
	}
	redisURLFlag = &cli.StringFlag{
		Name:    "redis-url",
		Usage:   "Redis holding the cached leaderboard; invalidated after recalculation",
		EnvVars: []string{"REDIS_URL"},
	}
)

func main() {
	_ = godotenv.Load()

	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "poolctl",
		Usage:  "prediction pool maintenance",
		Writer: out,
		Commands: []*cli.Command{
			migrateCommand(),
			recalculateCommand(),
			standingsCommand(),
			rulesCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Flags: []cli.Flag{databaseURLFlag},
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					version, err := db.MigrateUp(c.String("database-url"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Database at version %d\n", version)
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps <= 0 {
						return fmt.Errorf("steps must be positive, got %d", steps)
					}
					if err := db.MigrateDown(c.String("database-url"), steps); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Rolled back %d migration(s)\n", steps)
					return nil
				},
			},
		},
	}
}

func recalculateCommand() *cli.Command {
	return &cli.Command{
		Name:  "recalculate",
		Usage: "rescore completed matches",
		Flags: []cli.Flag{
			databaseURLFlag,
			rulesFileFlag,
			redisURLFlag,
			&cli.IntFlag{Name: "match", Usage: "rescore a single match by id"},
		},
		Action: func(c *cli.Context) error {
			rules, err := loadRules(c.String("rules-file"))
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			return withDB(c, func(conn *sqlx.DB) error {
				var leaderboardCache services.LeaderboardCache
				if url := c.String("redis-url"); url != "" {
					redisCache, err := cache.New(c.Context, url, cache.DefaultTTL, logger)
					if err != nil {
						return err
					}
					defer redisCache.Close()
					leaderboardCache = redisCache
				}

				// WriteLane действует только внутри процесса. С сервером
				// пересчёт упорядочивают блокировки строк матчей.
				scoringService := services.NewScoringService(
					repositories.NewTxRunner(conn),
					services.NewWriteLane(),
					repositories.NewPostgresMatchRepository(conn),
					repositories.NewPostgresPredictionRepository(conn),
					rules,
					leaderboardCache,
					nil,
					nil,
					logger,
				)

				if matchID := c.Int("match"); matchID > 0 {
					summary, err := scoringService.RecalculateOne(c.Context, matchID)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Match %d (%s): %d prediction(s) scored\n",
						summary.MatchID, summary.Stage, summary.PredictionsUpdated)
					return nil
				}

				report, err := scoringService.RecalculateAll(c.Context)
				if err != nil {
					return err
				}
				printReport(c.App.Writer, report)
				return nil
			})
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the current leaderboard",
		Flags: []cli.Flag{databaseURLFlag},
		Action: func(c *cli.Context) error {
			return withDB(c, func(conn *sqlx.DB) error {
				repo := repositories.NewPostgresLeaderboardRepository(conn)
				totals, err := repo.ListParticipantTotals(c.Context)
				if err != nil {
					return err
				}
				printStanding(c.App.Writer, scoring.BuildStanding(totals))
				return nil
			})
		},
	}
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "print the stage point table",
		Flags: []cli.Flag{rulesFileFlag},
		Action: func(c *cli.Context) error {
			rules, err := loadRules(c.String("rules-file"))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STAGE\tCORRECT\tEXACT")
			for _, r := range rules.List() {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", r.Stage, r.CorrectOutcome, r.ExactScore)
			}
			return tw.Flush()
		},
	}
}

func withDB(c *cli.Context, fn func(conn *sqlx.DB) error) error {
	conn, err := db.Connect(c.String("database-url"), 5*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

func loadRules(path string) (*scoring.Rules, error) {
	if path == "" {
		return scoring.DefaultRules(), nil
	}
	return scoring.LoadRules(path)
}

func printReport(w io.Writer, report *models.RecalculationReport) {
	fmt.Fprintf(w, "Rescored %d match(es), %d prediction(s)\n", report.MatchesScored, report.PredictionsUpdated)
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  match %d failed: %s\n", f.MatchID, f.Error)
	}
}

func printStanding(w io.Writer, standing []models.LeaderboardEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPARTICIPANT\tPOINTS\tEXACT\tCORRECT")
	for _, e := range standing {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", e.Rank, e.DisplayName, e.TotalPoints, e.ExactCount, e.CorrectCount)
	}
	_ = tw.Flush()
}
