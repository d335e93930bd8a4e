package brokerage

// TransferState is the lifecycle of an internal-transfer group: both legs of
// a group resolve together, or the group waits.
type TransferState int

const (
	// TransferPending means one leg arrived and is held: it does not affect
	// position totals until its pair arrives or the group is voided.
	TransferPending TransferState = iota
	// TransferMatched means both legs resolved as one atomic lot transplant.
	TransferMatched
	// TransferVoided means the group was explicitly abandoned; its legs are
	// ignored for good.
	TransferVoided
)

func (s TransferState) String() string {
	switch s {
	case TransferPending:
		return "pending"
	case TransferMatched:
		return "matched"
	case TransferVoided:
		return "voided"
	default:
		return "unknown"
	}
}

// transferGroup tracks the legs seen for one transfer-group id.
type transferGroup struct {
	id    string
	out   *Entry // the transfer_out leg, nil until seen
	in    *Entry // the transfer_in leg, nil until seen
	state TransferState
	since Date // date the first leg arrived, for grace-window reporting
}

// legsMatch reports whether the two legs form a valid pair: opposite
// accounts, same instrument, equal magnitude.
func (g *transferGroup) legsMatch() bool {
	if g.out == nil || g.in == nil {
		return false
	}
	if g.out.Account == g.in.Account {
		return false
	}
	if g.out.Instrument != g.in.Instrument {
		return false
	}
	return g.out.Quantity.Abs().Equal(g.in.Quantity.Abs())
}

// transferMatcher correlates transfer legs by group id as the ledger replays.
type transferMatcher struct {
	groups map[string]*transferGroup
	order  []string // group ids in first-seen order, for deterministic reporting
	voided map[string]bool
}

func newTransferMatcher(voided []string) *transferMatcher {
	m := &transferMatcher{
		groups: make(map[string]*transferGroup),
		voided: make(map[string]bool, len(voided)),
	}
	for _, id := range voided {
		m.voided[id] = true
	}
	return m
}

// observe records a transfer leg. It returns the group when this leg
// completes a valid pair; the caller then performs the atomic transplant.
// Voided groups swallow their legs.
func (m *transferMatcher) observe(e Entry) (*transferGroup, bool) {
	g, ok := m.groups[e.TransferGroup]
	if !ok {
		g = &transferGroup{id: e.TransferGroup, state: TransferPending, since: e.Date}
		m.groups[e.TransferGroup] = g
		m.order = append(m.order, e.TransferGroup)
	}
	if m.voided[g.id] {
		g.state = TransferVoided
		return nil, false
	}

	leg := e
	switch e.Kind {
	case KindTransferOut:
		g.out = &leg
	case KindTransferIn:
		g.in = &leg
	}

	if g.legsMatch() {
		g.state = TransferMatched
		return g, true
	}
	return nil, false
}

// pending returns the groups still waiting for a valid pair, in first-seen order.
func (m *transferMatcher) pending() []*transferGroup {
	var out []*transferGroup
	for _, id := range m.order {
		if g := m.groups[id]; g.state == TransferPending {
			out = append(out, g)
		}
	}
	return out
}

// PendingTransfer describes a held transfer leg, surfaced by the book so a
// caller can decide to wait or void the group.
type PendingTransfer struct {
	Group      string
	Account    string
	Instrument string
	Quantity   Quantity
	Since      Date
	State      TransferState
}

// pendingLeg extracts the reportable side of a half-arrived group.
func (g *transferGroup) pendingLeg() PendingTransfer {
	p := PendingTransfer{Group: g.id, Since: g.since, State: g.state}
	switch {
	case g.out != nil:
		p.Account = g.out.Account
		p.Instrument = g.out.Instrument
		p.Quantity = g.out.Quantity.Abs()
	case g.in != nil:
		p.Account = g.in.Account
		p.Instrument = g.in.Instrument
		p.Quantity = g.in.Quantity.Abs()
	}
	return p
}
