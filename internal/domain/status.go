package domain

// Status is the kitchen lifecycle state of an order. The rank order
// pending < cooking < ready < served is load-bearing: reconciliation
// never lets an order move to a lower rank.
type Status string

const (
	StatusPending Status = "pending" // submitted, kitchen has not accepted yet
	StatusCooking Status = "cooking" // ticket accepted by the kitchen
	StatusReady   Status = "ready"   // ticket completed by the kitchen
	StatusServed  Status = "served"  // terminal; only ever set upstream
)

var statusRank = map[Status]int{
	StatusPending: 0,
	StatusCooking: 1,
	StatusReady:   2,
	StatusServed:  3,
}

// Rank returns the position of s in the lifecycle. Unknown statuses
// rank as pending.
func (s Status) Rank() int { return statusRank[s] }

// Done reports whether the ticket is finished from the kitchen's point
// of view. ready and served render identically on the board.
func (s Status) Done() bool { return s == StatusReady || s == StatusServed }

// MaxStatus returns whichever of a, b is further along the lifecycle.
func MaxStatus(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseStatus normalizes a status string from the application vocabulary.
// Anything unrecognized collapses to pending, mirroring how a half-written
// remote row should be treated.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending, StatusCooking, StatusReady, StatusServed:
		return Status(s)
	}
	return StatusPending
}
