package pingsweep

import (
	"context"
	"net"
	"os/exec"
	"time"
)

// execPinger shells out to the platform ping command, one process per probe.
type execPinger struct{}

// Ping runs a single-echo ping and reports whether it succeeded.
func (e *execPinger) Ping(ctx context.Context, ip net.IP, timeout time.Duration) bool {
	// the command's own timeout has one second granularity on some platforms
	ctx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	name, args := pingCommand(ip, timeout)
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return false
	}
	return replied(output)
}
