package prescan

import (
	"net"

	"github.com/projectdiscovery/lanscan/pkg/peerdiscovery/common"
)

const (
	ScoreGateway  = 100
	ScoreReserved = 90
	ScoreEarly    = 80
	ScorePoolPeak = 70
	ScorePool     = 50
	ScoreTail     = 20
	ScoreExcluded = 0
)

type octetRange struct {
	from, to int
	score    int
}

// checked in order, first match wins
var octetRanges = []octetRange{
	{1, 1, ScoreGateway},
	{254, 254, ScoreGateway},
	{2, 5, ScoreReserved},
	{250, 253, ScoreReserved},
	{6, 10, ScoreEarly},
	{50, 50, ScorePoolPeak},
	{100, 100, ScorePoolPeak},
	{150, 150, ScorePoolPeak},
	{51, 99, ScorePool},
	{101, 149, ScorePool},
	{151, 200, ScorePool},
}

// Score returns how likely ip is to be online within network.
func Score(ip net.IP, network *net.IPNet) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return ScoreTail
	}
	if common.IsNetworkOrBroadcast(ip4, network) {
		return ScoreExcluded
	}

	last := int(ip4[3])
	for _, r := range octetRanges {
		if last >= r.from && last <= r.to {
			return r.score
		}
	}
	return ScoreTail
}
