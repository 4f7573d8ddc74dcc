package crazyflie

import (
	"log"
	"strings"

	"github.com/mikehamer/crazypilot/crtp"
)

// ConsolePacket is a chunk of the firmware's console output.
type ConsolePacket struct {
	Text string
}

func (p *ConsolePacket) Port() crtp.Port {
	return crtp.PortConsole
}

func (p *ConsolePacket) Channel() crtp.Channel {
	return 0
}

func (p *ConsolePacket) LoadFromBytes(b []byte) error {
	if len(b) < 1 {
		return crtp.ErrorPacketIncorrectLength
	}
	if crtp.Header(b[0]).Port() != crtp.PortConsole {
		return crtp.ErrorPacketIncorrectType
	}
	p.Text = string(b[1:])
	return nil
}

func (cf *Crazyflie) consoleSystemInit() {
	cf.OnPort(crtp.PortConsole, cf.handleConsoleResponse)
}

// Console output arrives in arbitrary chunks; only whole lines are logged.
func (cf *Crazyflie) handleConsoleResponse(resp []byte) {
	var packet ConsolePacket
	if err := crtp.Decode(resp, &packet); err != nil {
		return
	}

	for _, line := range cf.consoleLines(packet.Text) {
		log.Printf("Crazyflie console: %s", line)
	}
}

func (cf *Crazyflie) consoleLines(text string) []string {
	cf.callbackLock.Lock()
	defer cf.callbackLock.Unlock()

	var lines []string
	for {
		i := strings.Index(text, "\n")
		if i == -1 {
			cf.consoleLine += text
			return lines
		}
		lines = append(lines, cf.consoleLine+text[:i])
		text = text[i+1:]
		cf.consoleLine = ""
	}
}
