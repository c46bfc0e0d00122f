package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dm-vev/cogar/gamemode"
	"github.com/dm-vev/cogar/sim"
)

// dispatchCommand handles one `/`-prefixed chat line. Unauthenticated
// sessions may only run /login; everything else requires prior operator
// authentication via SetOperator.
func dispatchCommand(s *Session, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	if name == "login" {
		return cmdLogin(s, args)
	}

	s.mu.Lock()
	isOp := s.isOperator
	s.mu.Unlock()
	if !isOp {
		s.sendSystemMessage("unknown command")
		return nil
	}

	switch name {
	case "kick":
		return cmdKick(s, args)
	case "ban":
		return cmdBan(s, args)
	case "unban":
		return cmdUnban(s, args)
	case "mode":
		return cmdMode(s, args)
	case "xray":
		return cmdXray(s, args)
	case "freeze":
		return cmdFreeze(s, args)
	case "minion":
		return cmdMinion(s, args)
	default:
		s.sendSystemMessage("unknown command")
		return nil
	}
}

func cmdLogin(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /login <password>")
		return nil
	}
	want := s.cfg.Server.OperatorPassword
	if want == "" || args[0] != want {
		s.sendSystemMessage("incorrect password")
		return nil
	}
	s.SetOperator(true)
	s.sendSystemMessage("logged in as operator")
	return nil
}

func cmdKick(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /kick <name>")
		return nil
	}
	target := lookupTarget(s, args[0])
	if target == nil {
		s.sendSystemMessage("no such player")
		return nil
	}
	target.sendSystemMessage("kicked by an operator")
	target.Close()
	return nil
}

func cmdBan(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /ban <name>")
		return nil
	}
	target := lookupTarget(s, args[0])
	if target == nil {
		s.sendSystemMessage("no such player")
		return nil
	}
	if s.banList != nil {
		s.banList.Ban(target.conn.RemoteIP())
	}
	target.sendSystemMessage("banned by an operator")
	target.Close()
	return nil
}

func cmdUnban(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /unban <ip>")
		return nil
	}
	if s.banList != nil {
		s.banList.Unban(args[0])
	}
	s.sendSystemMessage("unbanned " + args[0])
	return nil
}

func cmdMode(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /mode <name>")
		return nil
	}
	m := lookupMode(args[0])
	if m == nil {
		s.sendSystemMessage("unknown mode: " + args[0])
		return nil
	}
	s.game.SetMode(m)
	s.sendSystemMessage("mode set to " + m.Name())
	return nil
}

func cmdXray(s *Session, _ []string) error {
	s.game.Lock()
	defer s.game.Unlock()
	o := s.game.Owner(s.ownerID)
	if o == nil {
		return nil
	}
	o.XrayEnabled = !o.XrayEnabled
	s.mu.Lock()
	s.xrayEnabled = o.XrayEnabled
	s.mu.Unlock()
	s.sendSystemMessage(fmt.Sprintf("x-ray: %v", o.XrayEnabled))
	return nil
}

func cmdFreeze(s *Session, args []string) error {
	if len(args) != 1 {
		s.sendSystemMessage("usage: /freeze <name>")
		return nil
	}
	target := lookupTarget(s, args[0])
	if target == nil {
		s.sendSystemMessage("no such player")
		return nil
	}
	s.game.SetFrozen(target.ownerID, true)
	s.sendSystemMessage("froze " + args[0])
	return nil
}

// cmdMinion spawns n server-controlled minion bots under this operator's
// control, n defaulting to 1.
func cmdMinion(s *Session, args []string) error {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err == nil && v > 0 {
			n = v
		}
	}
	s.game.Lock()
	owner := s.game.Owner(s.ownerID)
	if owner == nil {
		s.game.Unlock()
		return nil
	}
	for i := 0; i < n; i++ {
		minion := s.game.AddOwner(true)
		minion.IsMinion = true
		minion.MinionOf = owner.ID
		minion.Name = owner.Name
		minion.Color = owner.Color
		owner.Minions = append(owner.Minions, minion.ID)
		s.game.SpawnPlayerCellFor(minion)
	}
	s.game.Unlock()
	s.sendSystemMessage(fmt.Sprintf("spawned %d minion(s)", n))
	return nil
}

// lookupMode resolves a /mode argument to a concrete sim.Mode.
func lookupMode(name string) sim.Mode {
	return gamemode.ByName(name)
}

func lookupTarget(s *Session, name string) *Session {
	if s.registry == nil {
		return nil
	}
	return s.registry.FindByName(name)
}
