package analytics

import (
	"math"
	"sort"
	"time"
)

// RegimeMemoryMaxEntries bounds the in-memory history kept per engine.
const RegimeMemoryMaxEntries = 500

// RegimeEntry is one recorded market-regime snapshot, with forward
// returns filled in later as they become observable.
type RegimeEntry struct {
	ShockState     string
	FundingRegime  string
	VolRegime      string
	TariffIndex    float64
	Price          float64
	Ts             time.Time
	Return4h       *float64
	Return24h      *float64
	Return3d       *float64
}

// RegimeAnalogue is a historical entry paired with how well it matches
// the queried regime.
type RegimeAnalogue struct {
	RegimeEntry
	MatchScore int
}

// OutcomeDistribution summarizes forward returns across all historical
// analogues to a queried regime.
type OutcomeDistribution struct {
	AvgReturn4h  float64
	AvgReturn24h float64
	AvgReturn3d  float64
	WinRate4h    float64
	WinRate24h   float64
	Count        int
	BestAnalog   *RegimeAnalogue
	Ts           time.Time
}

// RegimeSummary is a coarse census of recorded history.
type RegimeSummary struct {
	TotalRecords        int
	RecordsWithReturns  int
	RegimeDistribution  map[string]int
	Ts                  time.Time
}

// RegimeMemory is a bounded append-only log of observed market regimes,
// used to find historical analogues to the current one and estimate its
// likely forward outcome distribution.
type RegimeMemory struct {
	history []RegimeEntry
}

// NewRegimeMemory returns an empty memory.
func NewRegimeMemory() *RegimeMemory {
	return &RegimeMemory{}
}

// Record appends one regime snapshot, trimming the oldest entry once
// RegimeMemoryMaxEntries is exceeded.
func (m *RegimeMemory) Record(shockState, fundingRegime, volRegime string, tariffIndex, price float64) {
	m.history = append(m.history, RegimeEntry{
		ShockState: shockState, FundingRegime: fundingRegime, VolRegime: volRegime,
		TariffIndex: tariffIndex, Price: price, Ts: time.Now().UTC(),
	})
	if len(m.history) > RegimeMemoryMaxEntries {
		m.history = m.history[len(m.history)-RegimeMemoryMaxEntries:]
	}
}

// UpdateReturns fills in forward returns for a previously recorded entry
// once they become observable. A nil pointer leaves that field
// unchanged.
func (m *RegimeMemory) UpdateReturns(index int, return4h, return24h, return3d *float64) {
	if index < 0 || index >= len(m.history) {
		return
	}
	if return4h != nil {
		m.history[index].Return4h = return4h
	}
	if return24h != nil {
		m.history[index].Return24h = return24h
	}
	if return3d != nil {
		m.history[index].Return3d = return3d
	}
}

func (m *RegimeMemory) matchAnalogues(shockState, fundingRegime, volRegime string, requireReturn bool) []RegimeAnalogue {
	var matches []RegimeAnalogue
	for _, e := range m.history {
		score := 0
		if e.ShockState == shockState {
			score += 3
		}
		if e.FundingRegime == fundingRegime {
			score += 2
		}
		if e.VolRegime == volRegime {
			score += 1
		}
		if score < 3 {
			continue
		}
		if requireReturn && e.Return4h == nil {
			continue
		}
		matches = append(matches, RegimeAnalogue{RegimeEntry: e, MatchScore: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchScore > matches[j].MatchScore })
	return matches
}

// FindAnalogues returns up to maxResults historical entries matching the
// queried regime (score >= 3) that already have a 4h return recorded,
// ranked by match score.
func (m *RegimeMemory) FindAnalogues(shockState, fundingRegime, volRegime string, maxResults int) []RegimeAnalogue {
	matches := m.matchAnalogues(shockState, fundingRegime, volRegime, true)
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// GetOutcomeDistribution summarizes forward returns across all analogues
// to the queried regime, regardless of whether every return horizon has
// been observed yet.
func (m *RegimeMemory) GetOutcomeDistribution(shockState, fundingRegime, volRegime string) OutcomeDistribution {
	matches := m.matchAnalogues(shockState, fundingRegime, volRegime, false)
	if len(matches) == 0 {
		return OutcomeDistribution{Ts: time.Now().UTC()}
	}

	var r4h, r24h, r3d []float64
	for _, e := range matches {
		if e.Return4h != nil {
			r4h = append(r4h, *e.Return4h)
		}
		if e.Return24h != nil {
			r24h = append(r24h, *e.Return24h)
		}
		if e.Return3d != nil {
			r3d = append(r3d, *e.Return3d)
		}
	}

	best := matches[0]

	return OutcomeDistribution{
		AvgReturn4h:  round6(mean(r4h)),
		AvgReturn24h: round6(mean(r24h)),
		AvgReturn3d:  round6(mean(r3d)),
		WinRate4h:    round4(winRate(r4h)),
		WinRate24h:   round4(winRate(r24h)),
		Count:        len(matches),
		BestAnalog:   &best,
		Ts:           time.Now().UTC(),
	}
}

// GetSummary tallies total recorded entries and their regime-key
// distribution.
func (m *RegimeMemory) GetSummary() RegimeSummary {
	dist := make(map[string]int)
	withReturns := 0
	for _, e := range m.history {
		key := e.ShockState + "|" + e.FundingRegime + "|" + e.VolRegime
		dist[key]++
		if e.Return4h != nil {
			withReturns++
		}
	}
	return RegimeSummary{
		TotalRecords:       len(m.history),
		RecordsWithReturns: withReturns,
		RegimeDistribution: dist,
		Ts:                 time.Now().UTC(),
	}
}

// History returns the most recent limit entries, oldest first.
func (m *RegimeMemory) History(limit int) []RegimeEntry {
	if limit <= 0 || limit > len(m.history) {
		limit = len(m.history)
	}
	return m.history[len(m.history)-limit:]
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
