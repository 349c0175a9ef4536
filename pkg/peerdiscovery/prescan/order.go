package prescan

import (
	"bytes"
	"net"
	"sort"
)

// Order returns a copy of hosts sorted by descending Score, ties broken by
// address so the result is deterministic. Excluded addresses are dropped.
func Order(hosts []net.IP, network *net.IPNet) []net.IP {
	type scored struct {
		ip    net.IP
		score int
	}

	list := make([]scored, 0, len(hosts))
	for _, ip := range hosts {
		s := Score(ip, network)
		if s == ScoreExcluded {
			continue
		}
		list = append(list, scored{ip: ip, score: s})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return bytes.Compare(list[i].ip.To16(), list[j].ip.To16()) < 0
	})

	ordered := make([]net.IP, 0, len(list))
	for _, s := range list {
		ordered = append(ordered, s.ip)
	}
	return ordered
}
