package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fadedpez/tucoleague/internal/config"
	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/pkg/db"
	"github.com/fadedpez/tucoleague/pkg/db/migrations"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/services/league"
	"github.com/fadedpez/tucoleague/pkg/services/wallet"
	"github.com/fadedpez/tucoleague/pkg/storage"
	"github.com/urfave/cli/v2"
)

// app holds what every command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	stores  *storage.Stores
	league  *league.Service
	wallets *wallet.Service
}

var sessionFlag = &cli.StringFlag{
	Name:  "session",
	Usage: "session ID, defaults to the active session",
}

func main() {
	a := &app{}

	cliApp := &cli.App{
		Name:  "leagueadmin",
		Usage: "administer league sessions and the Victory Point offer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "as",
				Value: "cli",
				Usage: "operator ID recorded in logs",
			},
		},
		Before: a.open,
		After:  a.close,
		Commands: []*cli.Command{
			{
				Name:   "standings",
				Usage:  "show standings",
				Flags:  []cli.Flag{sessionFlag},
				Action: a.standings,
			},
			{
				Name:   "finalize",
				Usage:  "freeze the top six standings of the active session",
				Flags:  []cli.Flag{sessionFlag},
				Action: a.finalize,
			},
			{
				Name:  "vp",
				Usage: "run the Victory Point offer",
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "show who is being offered the Victory Point",
						Flags:  []cli.Flag{sessionFlag},
						Action: a.offerStatus,
					},
					{
						Name:  "accept",
						Usage: "accept the offer for a player",
						Flags: []cli.Flag{
							sessionFlag,
							&cli.StringFlag{Name: "player", Required: true, Usage: "player accepting"},
						},
						Action: a.accept,
					},
					{
						Name:  "pass",
						Usage: "pass the offer to the next ranked player",
						Flags: []cli.Flag{
							sessionFlag,
							&cli.IntFlag{Name: "rank", Required: true, Usage: "rank currently being offered"},
						},
						Action: a.pass,
					},
				},
			},
			{
				Name:  "session",
				Usage: "manage sessions",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a session",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "number", Required: true, Usage: "session number"},
							&cli.BoolFlag{Name: "activate", Usage: "make it the active session"},
						},
						Action: a.createSession,
					},
					{
						Name:      "activate",
						Usage:     "make a session the active one",
						ArgsUsage: "SESSION_ID",
						Action:    a.activateSession,
					},
				},
			},
			{
				Name:  "match",
				Usage: "record a match result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Required: true},
					&cli.StringFlag{Name: "id", Usage: "replace the result with this ID"},
					&cli.IntFlag{Name: "round", Value: 1},
					&cli.StringFlag{Name: "p1", Required: true},
					&cli.StringFlag{Name: "p2", Required: true},
					&cli.IntFlag{Name: "w1", Usage: "games won by p1"},
					&cli.IntFlag{Name: "w2", Usage: "games won by p2"},
				},
				Action: a.recordMatch,
			},
			{
				Name:      "breakdown",
				Usage:     "set the wallet point breakdown, first place through sixth",
				ArgsUsage: "AMOUNT...",
				Action:    a.setBreakdown,
			},
			{
				Name:      "wallet",
				Usage:     "show a wallet balance and history",
				ArgsUsage: "USER_ID",
				Action:    a.showWallet,
			},
			{
				Name:  "migrate",
				Usage: "SQLite schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "list pending migrations",
						Action: migrationStatus,
					},
					{
						Name:   "up",
						Usage:  "apply pending migrations",
						Action: migrateUp,
					},
					{
						Name:      "create",
						Usage:     "create a new migration file",
						ArgsUsage: "DESCRIPTION",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "dir", Value: "pkg/db/migrations/sql"},
						},
						Action: createMigration,
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func (a *app) open(c *cli.Context) error {
	// migrate commands manage the schema themselves
	if c.Args().First() == "migrate" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	stores, err := storage.Open(cfg, a.logger)
	if err != nil {
		return err
	}
	a.stores = stores
	a.league = league.NewService(stores.League, nil, league.WithLogger(a.logger))
	a.wallets = wallet.NewService(stores.Wallets, a.logger)
	return nil
}

func (a *app) close(c *cli.Context) error {
	if a.stores == nil {
		return nil
	}
	return a.stores.Close()
}

// operator is the privileged actor every CLI command runs as
func operator(c *cli.Context) entities.Actor {
	return entities.Actor{ID: c.String("as"), Admin: true}
}

func (a *app) standings(c *cli.Context) error {
	standings, err := a.league.GetStandings(c.Context, c.String("session"))
	if err != nil {
		return err
	}
	fmt.Printf("Session #%d standings\n", standings.Session.Number)
	fmt.Println(league.FormatStandings(standings.Players, nil))
	if standings.UnplayedPairings > 0 {
		fmt.Printf("%d pairing(s) still to play\n", standings.UnplayedPairings)
	}
	return nil
}

func (a *app) finalize(c *cli.Context) error {
	result, err := a.league.FinalizeStandings(c.Context, operator(c), c.String("session"))
	if err != nil {
		return err
	}
	fmt.Printf("Session #%d finalized\n", result.Session.Number)
	for i, id := range result.Session.PlacementIDs() {
		fmt.Printf("%s %s\n", league.Ordinal(i+1), id)
	}
	return nil
}

func (a *app) offerStatus(c *cli.Context) error {
	status, err := a.league.GetVictoryPointOfferStatus(c.Context, c.String("session"))
	if err != nil {
		return err
	}
	switch {
	case status.State.IsAccepted():
		fmt.Printf("Session #%d Victory Point went to %s\n", status.SessionNumber, status.State.PlayerID)
	case status.CanOffer:
		fmt.Printf("Session #%d Victory Point offered to %s (rank %d of %d)\n",
			status.SessionNumber, status.CurrentPlayerID, status.State.Rank, len(status.RankedPlayers))
	default:
		fmt.Printf("Cannot offer: %s\n", status.Reason)
	}
	fmt.Println(league.FormatStandings(status.RankedPlayers, nil))
	return nil
}

func printAccept(result *league.AcceptResult) {
	fmt.Printf("Session #%d Victory Point granted to %s (rank %d)\n", result.SessionNumber, result.GrantedTo, result.Rank)
	for _, award := range result.WalletAwards {
		fmt.Printf("  %s +%d (%s place)\n", award.PlayerID, award.Amount, league.Ordinal(award.Place))
	}
}

func (a *app) accept(c *cli.Context) error {
	result, err := a.league.AcceptVictoryPoint(c.Context, operator(c), c.String("session"), c.String("player"))
	if err != nil {
		return err
	}
	printAccept(result)
	return nil
}

func (a *app) pass(c *cli.Context) error {
	result, err := a.league.PassVictoryPoint(c.Context, operator(c), c.String("session"), c.Int("rank"))
	if err != nil {
		return err
	}
	if result.AutoAssigned {
		fmt.Println("Last rank passed, assigning automatically")
		printAccept(result.Accept)
		return nil
	}
	fmt.Printf("Offer moved to %s (rank %d)\n", result.NextPlayerID, result.NextRank)
	return nil
}

func (a *app) createSession(c *cli.Context) error {
	session, err := a.league.CreateSession(c.Context, operator(c), c.Int("number"), c.Bool("activate"))
	if err != nil {
		return err
	}
	fmt.Printf("Created session #%d: %s\n", session.Number, session.ID)
	return nil
}

func (a *app) activateSession(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: leagueadmin session activate SESSION_ID", 1)
	}
	if err := a.league.ActivateSession(c.Context, operator(c), c.Args().First()); err != nil {
		return err
	}
	fmt.Printf("Session %s is now active\n", c.Args().First())
	return nil
}

func (a *app) recordMatch(c *cli.Context) error {
	match := &entities.MatchResult{
		ID:          c.String("id"),
		SessionID:   c.String("session"),
		Round:       c.Int("round"),
		Player1ID:   c.String("p1"),
		Player2ID:   c.String("p2"),
		Player1Wins: c.Int("w1"),
		Player2Wins: c.Int("w2"),
	}
	if err := a.league.RecordMatchResult(c.Context, operator(c), match); err != nil {
		return err
	}
	fmt.Printf("Recorded %s: %s %d-%d %s (%s)\n", match.ID, match.Player1ID, match.Player1Wins, match.Player2Wins, match.Player2ID, match.Outcome())
	return nil
}

func (a *app) setBreakdown(c *cli.Context) error {
	if c.NArg() == 0 || c.NArg() > entities.PlacementCount {
		return cli.Exit(fmt.Sprintf("expected 1 to %d amounts", entities.PlacementCount), 1)
	}

	var amounts [entities.PlacementCount]int64
	for i, arg := range c.Args().Slice() {
		amount, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", arg, err)
		}
		amounts[i] = amount
	}

	breakdown, err := a.league.SetBreakdown(c.Context, operator(c), amounts)
	if err != nil {
		return err
	}
	fmt.Printf("Active breakdown %s: %v\n", breakdown.ID, breakdown.Amounts)
	return nil
}

func (a *app) showWallet(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: leagueadmin wallet USER_ID", 1)
	}
	userID := c.Args().First()

	balance, err := a.wallets.GetBalance(c.Context, userID)
	if err != nil {
		return err
	}
	txs, err := a.wallets.GetRecentTransactions(c.Context, userID, wallet.DefaultHistoryLimit)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d wallet points\n", userID, balance)
	for _, tx := range txs {
		fmt.Printf("  %s  +%d  %s\n", db.FormatTimestamp(tx.Timestamp), tx.Amount, tx.Description)
	}
	return nil
}

func migrationTarget() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageType != config.StorageSQLite {
		return nil, cli.Exit("migrations apply to SQLite storage only; Postgres tables are migrated by gorm on start", 1)
	}
	return cfg, nil
}

func migrationStatus(c *cli.Context) error {
	cfg, err := migrationTarget()
	if err != nil {
		return err
	}
	conn, err := db.ConnectSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	pending, err := migrations.NewMigrator(conn, migrations.Embedded()).Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	for _, m := range pending {
		fmt.Printf("pending: %s %s\n", m.Version, m.Description)
	}
	return nil
}

func migrateUp(c *cli.Context) error {
	cfg, err := migrationTarget()
	if err != nil {
		return err
	}
	conn, err := db.ConnectSQLite(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := migrations.NewMigrator(conn, migrations.Embedded()).MigrateUp(); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}
	fmt.Println("Migrations applied successfully!")
	return nil
}

func createMigration(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: leagueadmin migrate create DESCRIPTION", 1)
	}
	path, err := migrations.CreateMigration(c.String("dir"), c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("Created migration file: %s\n", path)
	return nil
}
