package runner

import "strings"

// Request is a command split into program and arguments.
type Request struct {
	Raw     string // command text as typed, echoed in the report header
	Program string
	Args    []string
}

// ParseRequest splits raw on whitespace. The first field is the program.
// An empty or blank raw yields a Request with an empty Program.
func ParseRequest(raw string) Request {
	raw = strings.TrimSpace(raw)
	req := Request{Raw: raw}
	fields := strings.Fields(raw)
	if len(fields) > 0 {
		req.Program = fields[0]
		req.Args = fields[1:]
	}
	return req
}
