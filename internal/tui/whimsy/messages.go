// Package whimsy provides animated spinners with themed messages.
package whimsy

// RepairMessages rotate while a crashed program is being repaired.
var RepairMessages = []string{
	"tracing the stack...",
	"rerouting the mainframe...",
	"patching neon circuits...",
	"recompiling the grid...",
	"debugging the matrix...",
	"splicing new subroutines...",
	"rewiring the datastream...",
	"defragmenting the payload...",
}

// WaitingMessages rotate before the first status update arrives.
var WaitingMessages = []string{
	"booting the deck...",
	"jacking in...",
	"handshaking with the oracle...",
}
