package oui

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	// 00-00-00   (hex)		XEROX CORPORATION
	ieeeLine = regexp.MustCompile(`^([0-9A-Fa-f]{2}-[0-9A-Fa-f]{2}-[0-9A-Fa-f]{2})\s+\(hex\)\s+(.+)$`)
	// 000000 Xerox
	nmapLine = regexp.MustCompile(`^([0-9A-Fa-f]{6})\s+(.+)$`)
)

// Parse reads a vendor table in the IEEE oui.txt format or the nmap
// mac-prefixes format. Lines in neither format are ignored. Once an oui.txt
// entry has been seen only oui.txt entries are accepted, so its "(base 16)"
// rows and address blocks are never mistaken for nmap lines. When a prefix
// occurs twice the later entry wins.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{vendors: make(map[string]string)}
	ieee := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := ieeeLine.FindStringSubmatch(line); m != nil {
			ieee = true
			t.add(m[1], m[2])
			continue
		}
		if ieee {
			continue
		}
		if m := nmapLine.FindStringSubmatch(line); m != nil {
			t.add(m[1], m[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
