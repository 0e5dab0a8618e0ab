package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/omnifarius/blackjack/internal/game"
	"github.com/omnifarius/blackjack/internal/ledger"
	"github.com/omnifarius/blackjack/internal/session"
)

// PlayCmd runs tables interactively: commands are read line by line from
// stdin and table chatter is written to stdout.
type PlayCmd struct {
	Config string `kong:"default='blackjack.hcl',help='Path to the table config file'"`
	DB     string `kong:"help='SQLite ledger path. Empty runs an in-memory ledger'"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	cfg, err := session.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	bank, closeBank, err := openBank(c.DB, logger)
	if err != nil {
		return err
	}
	defer closeBank()

	announcer := session.NewWriterAnnouncer(os.Stdout)
	manager := session.NewManager(cfg, bank, announcer, logger)

	logger.Info("table engine ready",
		"min_bet", cfg.MinBet,
		"max_bet", cfg.MaxBet,
		"decks", cfg.DeckCount,
	)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := runCommand(manager, bank, line); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("reading stdin", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.StopAll(ctx); err != nil {
		return fmt.Errorf("stopping sessions: %w", err)
	}
	return nil
}

func openBank(path string, logger *log.Logger) (ledger.Bank, func(), error) {
	if path == "" {
		logger.Info("using in-memory ledger")
		return ledger.NewMemory(nil), func() {}, nil
	}
	store, err := ledger.Open(path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	logger.Info("using sqlite ledger", "path", path)
	return store, func() { store.Close() }, nil
}

// runCommand parses and applies one line of player input.
//
//	register <player>            payday <player>
//	balance <player>             transfer <from> <to> <amount>
//	join <table> <player> [seat] leave <table> <player>
//	bet <table> <player> <amt>   rebet <table> <player>
//	hit|stand|double|split|surrender <table> <player>
//	stop <table>                 tables
//	leaders
func runCommand(manager *session.Manager, bank ledger.Bank, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "register":
		if len(args) != 1 {
			return fmt.Errorf("usage: register <player>")
		}
		balance, err := bank.Register(game.PlayerID(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s registered with %d credits\n", args[0], balance)
		return nil

	case "payday":
		if len(args) != 1 {
			return fmt.Errorf("usage: payday <player>")
		}
		balance, err := bank.Payday(game.PlayerID(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s's balance is now %d\n", args[0], balance)
		return nil

	case "balance":
		if len(args) != 1 {
			return fmt.Errorf("usage: balance <player>")
		}
		balance, err := bank.Balance(game.PlayerID(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s has %d credits\n", args[0], balance)
		return nil

	case "transfer":
		if len(args) != 3 {
			return fmt.Errorf("usage: transfer <from> <to> <amount>")
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad amount %q", args[2])
		}
		return bank.Transfer(game.PlayerID(args[0]), game.PlayerID(args[1]), amount)

	case "join":
		if len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("usage: join <table> <player> [seat]")
		}
		seat := 0
		if len(args) == 3 {
			var err error
			if seat, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("bad seat %q", args[2])
			}
		}
		taken, err := manager.Join(game.TableID(args[0]), game.PlayerID(args[1]), seat)
		if err != nil {
			return err
		}
		fmt.Printf("%s seated at %s, seat %d\n", args[1], args[0], taken)
		return nil

	case "leave":
		if len(args) != 2 {
			return fmt.Errorf("usage: leave <table> <player>")
		}
		return manager.Leave(game.TableID(args[0]), game.PlayerID(args[1]))

	case "bet":
		if len(args) != 3 {
			return fmt.Errorf("usage: bet <table> <player> <amount>")
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad amount %q", args[2])
		}
		return manager.SubmitBet(game.TableID(args[0]), game.PlayerID(args[1]), amount)

	case "rebet":
		if len(args) != 2 {
			return fmt.Errorf("usage: rebet <table> <player>")
		}
		return manager.RepeatBet(game.TableID(args[0]), game.PlayerID(args[1]))

	case "stop":
		if len(args) != 1 {
			return fmt.Errorf("usage: stop <table>")
		}
		return manager.Stop(game.TableID(args[0]))

	case "tables":
		for _, table := range manager.List() {
			fmt.Println(table)
		}
		return nil

	case "leaders":
		return printLeaders(bank, 10)

	default:
		action, ok := game.ParseAction(cmd)
		if !ok {
			return fmt.Errorf("unknown command %q", cmd)
		}
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <table> <player>", cmd)
		}
		return manager.SubmitTurnAction(game.TableID(args[0]), game.PlayerID(args[1]), action)
	}
}

func printLeaders(bank ledger.Bank, top int) error {
	entries, err := bank.Leaders(top)
	if err != nil {
		return err
	}
	for i, e := range entries {
		fmt.Printf("%2d. %-20s %d\n", i+1, e.Player, e.Balance)
	}
	return nil
}
