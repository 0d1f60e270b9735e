package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
)

// ticketIDPattern matches a digit run optionally followed by ".digits".
// Only the leading run (group 1) is the ticket id, so "42.7" yields 42.
var ticketIDPattern = regexp.MustCompile(`(\d+)(?:\.\d+)?`)

// ExtractTicketID returns the ticket id encoded in a branch name. The boolean
// is false when the branch carries no digits. An error means the digit run
// could not be parsed as an int.
func ExtractTicketID(branch string) (int, bool, error) {
	matches := ticketIDPattern.FindStringSubmatch(branch)
	if len(matches) < 2 {
		return 0, false, nil
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, true, fmt.Errorf("invalid ticket id %q in branch %q: %w", matches[1], branch, err)
	}
	return id, true, nil
}
