package order

import "fmt"

// Status is the lifecycle status of an order.
type Status string

const (
	StatusPending    Status = "pendente"
	StatusPreparing  Status = "preparando"
	StatusDelivering Status = "entrega"
	StatusCompleted  Status = "finalizado"
	StatusCancelled  Status = "cancelado"
)

// Statuses lists every status in counter order.
var Statuses = []Status{
	StatusPending,
	StatusPreparing,
	StatusDelivering,
	StatusCompleted,
	StatusCancelled,
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

// ParseStatus validates s against the closed set of statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}

	return st, nil
}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// StatusCounts maps every status to the number of orders in it.
type StatusCounts map[Status]int64

// NewStatusCounts returns counts with every status present and zeroed.
func NewStatusCounts() StatusCounts {
	counts := make(StatusCounts, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}

	return counts
}

// Total sums all counts.
func (c StatusCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}

	return total
}
