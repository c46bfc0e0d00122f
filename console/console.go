// Package console provides the operator REPL: a stdin command source that
// runs the same moderation and game-mode operations the in-game /commands
// expose, for an operator sitting at the server's own terminal rather than
// connected as a client. Grounded on the teacher's go-prompt driven REPL,
// adapted from dragonfly's generic cmd.Command registry to this project's
// small fixed command table.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/dm-vev/cogar/bot"
	"github.com/dm-vev/cogar/config"
	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/session"
	"github.com/dm-vev/cogar/sim"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries   = 128
)

// Registry looks a connected player up by name, satisfied by net.Hub.
type Registry interface {
	FindByName(name string) *session.Session
	Count() int
}

// Console reads operator commands from an io.Reader (os.Stdin by default)
// and runs them against the shared game.
type Console struct {
	game *sim.Game
	reg  Registry
	bans *config.BanList
	bots *bot.Manager
	log  *slog.Logger
	stop context.CancelFunc

	reader  io.Reader
	history []string
}

// New returns a Console bound to game. reg resolves player names for
// /kick and /ban; bots lets /bots add AI players at runtime; stop
// is called by /stop to begin a graceful shutdown.
func New(game *sim.Game, reg Registry, bans *config.BanList, bots *bot.Manager, log *slog.Logger, stop context.CancelFunc) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{game: game, reg: reg, bans: bans, bots: bots, log: log, stop: stop, reader: os.Stdin}
}

// WithReader sets a custom reader for the console input, used by tests to
// avoid depending on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the reader hits EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", slog.Any("err", err))
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("cogar console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	if line == "" {
		return
	}
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "help":
		c.printHelp()
	case "kick":
		c.cmdKick(args)
	case "ban":
		c.cmdBan(args)
	case "unban":
		c.cmdUnban(args)
	case "mode":
		c.cmdMode(args)
	case "bots":
		c.cmdBots(args)
	case "players":
		c.log.Info("players online", slog.Int("count", c.reg.Count()))
	case "stop":
		c.log.Info("shutting down from console")
		c.stop()
	default:
		c.log.Warn("unknown command", slog.String("name", name))
	}
}

func (c *Console) cmdKick(args []string) {
	if len(args) != 1 {
		c.log.Warn("usage: kick <name>")
		return
	}
	target := c.reg.FindByName(args[0])
	if target == nil {
		c.log.Warn("no such player", slog.String("name", args[0]))
		return
	}
	target.Close()
	c.log.Info("kicked", slog.String("name", args[0]))
}

func (c *Console) cmdBan(args []string) {
	if len(args) != 1 {
		c.log.Warn("usage: ban <name>")
		return
	}
	target := c.reg.FindByName(args[0])
	if target == nil {
		c.log.Warn("no such player", slog.String("name", args[0]))
		return
	}
	c.bans.Ban(target.RemoteIP())
	target.Close()
	c.log.Info("banned", slog.String("name", args[0]))
}

func (c *Console) cmdUnban(args []string) {
	if len(args) != 1 {
		c.log.Warn("usage: unban <ip>")
		return
	}
	c.bans.Unban(args[0])
	c.log.Info("unbanned", slog.String("ip", args[0]))
}

func (c *Console) cmdMode(args []string) {
	if len(args) != 1 {
		c.log.Warn("usage: mode <name>")
		return
	}
	m := gamemode.ByName(args[0])
	if m == nil {
		c.log.Warn("unknown mode", slog.String("name", args[0]))
		return
	}
	c.game.SetMode(m)
	c.log.Info("mode set", slog.String("name", m.Name()))
}

func (c *Console) cmdBots(args []string) {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err == nil {
			n = v
		}
	}
	c.game.Lock()
	defer c.game.Unlock()
	if n < 0 {
		for i := 0; i > n && c.bots.Count() > 0; i-- {
			for id := range c.game.Owners() {
				if o := c.game.Owner(id); o != nil && o.IsBot {
					c.bots.Remove(id)
					c.game.RemoveOwner(id)
					break
				}
			}
		}
		return
	}
	for i := 0; i < n; i++ {
		c.bots.Spawn(c.game)
	}
	c.log.Info("spawned bots", slog.Int("count", n))
}

func (c *Console) printHelp() {
	names := []string{"help", "kick <name>", "ban <name>", "unban <ip>", "mode <name>", "bots <n>", "players", "stop"}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(os.Stdout, n)
	}
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	commands := []prompt.Suggest{
		{Text: "kick", Description: "kick <name>"},
		{Text: "ban", Description: "ban <name>"},
		{Text: "unban", Description: "unban <ip>"},
		{Text: "mode", Description: "mode <name>"},
		{Text: "bots", Description: "bots <n>"},
		{Text: "players", Description: "players"},
		{Text: "stop", Description: "stop"},
		{Text: "help", Description: "help"},
	}
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	return prompt.FilterHasPrefix(commands, word, true)
}
