package rules

import (
	"sort"
	"time"

	"github.com/acadex/transferrules/internal/conflict"
)

// Contribution is one record's addition to a rule: a source member, a
// destination member, and the alias-derived discipline and subject names.
type Contribution struct {
	Source        SourceMember
	Destination   DestinationMember
	Disciplines   []string
	Subjects      []string
	Priority      int
	EffectiveDate time.Time
}

// builder accumulates the members and unions for one rule key.
type builder struct {
	key            RuleKey
	sources        map[SourceMember]struct{}
	destinations   map[DestinationMember]struct{}
	disciplines    map[string]struct{}
	subjects       map[string]struct{}
	srcCreditTags  map[string]struct{}
	destCreditTags map[string]struct{}
	priority       int
	priorityKnown  bool
	effectiveDate  time.Time
}

// Aggregator owns the map from rule key to in-progress rule. All mutation
// goes through Add and Discard so no partial rule can reach Finalize.
type Aggregator struct {
	log       *conflict.Log
	builders  map[RuleKey]*builder
	discarded map[RuleKey]bool
}

// NewAggregator creates an empty aggregator reporting conflicts to log.
func NewAggregator(log *conflict.Log) *Aggregator {
	return &Aggregator{
		log:       log,
		builders:  make(map[RuleKey]*builder),
		discarded: make(map[RuleKey]bool),
	}
}

// Add merges one contribution into the rule for key. Members are inserted
// with set semantics; scalar conflicts keep the first-seen value and are
// logged. Contributions to a discarded key are dropped.
func (a *Aggregator) Add(key RuleKey, c Contribution) {
	if a.discarded[key] {
		return
	}

	b, ok := a.builders[key]
	if !ok {
		b = &builder{
			key:            key,
			sources:        make(map[SourceMember]struct{}),
			destinations:   make(map[DestinationMember]struct{}),
			disciplines:    make(map[string]struct{}),
			subjects:       make(map[string]struct{}),
			srcCreditTags:  make(map[string]struct{}),
			destCreditTags: make(map[string]struct{}),
		}
		a.builders[key] = b
	}

	b.sources[c.Source] = struct{}{}
	b.destinations[c.Destination] = struct{}{}
	for _, d := range c.Disciplines {
		b.disciplines[d] = struct{}{}
	}
	for _, s := range c.Subjects {
		if s != "" {
			b.subjects[s] = struct{}{}
		}
	}
	if c.Source.CreditSource != "" {
		b.srcCreditTags[c.Source.CreditSource] = struct{}{}
	}
	if c.Destination.CreditSource != "" {
		b.destCreditTags[c.Destination.CreditSource] = struct{}{}
	}

	if !b.priorityKnown {
		b.priority = c.Priority
		b.priorityKnown = true
	} else if c.Priority != b.priority {
		a.log.Report("Conflicting transfer priority %d for rule %s. First value (%d) kept.",
			c.Priority, key, b.priority)
	}

	if c.EffectiveDate.After(b.effectiveDate) {
		b.effectiveDate = c.EffectiveDate
	}
}

// Discard removes a rule key and all accumulated members. Later
// contributions to the key are silently dropped. A rule that references a
// nonexistent course must never be persisted, even partially.
func (a *Aggregator) Discard(key RuleKey) {
	delete(a.builders, key)
	a.discarded[key] = true
}

// Discarded reports whether a key has been discarded.
func (a *Aggregator) Discarded(key RuleKey) bool {
	return a.discarded[key]
}

// Finalize returns the complete rules in ascending key order. Rules
// missing either member set are dropped with a log entry instead of being
// persisted incomplete.
func (a *Aggregator) Finalize() []Rule {
	rules := make([]Rule, 0, len(a.builders))
	for key, b := range a.builders {
		if len(b.sources) == 0 || len(b.destinations) == 0 {
			a.log.Report("Incomplete rule %s has no %s courses. Rule deleted.",
				key, missingSide(b))
			continue
		}
		rules = append(rules, b.finalize())
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Key.Less(rules[j].Key) })
	return rules
}

func missingSide(b *builder) string {
	if len(b.sources) == 0 {
		return "source"
	}
	return "destination"
}

func (b *builder) finalize() Rule {
	r := Rule{
		Key:              b.key,
		Disciplines:      joinSet(b.disciplines),
		Subjects:         joinSet(b.subjects),
		SourceCreditTags: joinSet(b.srcCreditTags),
		DestCreditTags:   joinSet(b.destCreditTags),
		Priority:         b.priority,
	}
	if !b.effectiveDate.IsZero() {
		r.EffectiveDate = b.effectiveDate.Format("2006-01-02")
	}

	r.SourceCourses = make([]SourceMember, 0, len(b.sources))
	for m := range b.sources {
		r.SourceCourses = append(r.SourceCourses, m)
	}
	sort.Slice(r.SourceCourses, func(i, j int) bool {
		return lessSource(r.SourceCourses[i], r.SourceCourses[j])
	})

	r.DestinationCourses = make([]DestinationMember, 0, len(b.destinations))
	for m := range b.destinations {
		r.DestinationCourses = append(r.DestinationCourses, m)
	}
	sort.Slice(r.DestinationCourses, func(i, j int) bool {
		return lessDestination(r.DestinationCourses[i], r.DestinationCourses[j])
	})

	return r
}

// Members sort by (discipline, numeric catalog portion, offer_nbr) so the
// persisted child rows come out in catalog order.
func lessSource(a, b SourceMember) bool {
	if a.Discipline != b.Discipline {
		return a.Discipline < b.Discipline
	}
	av, _ := catalogNumberValue(a.CatalogNumber)
	bv, _ := catalogNumberValue(b.CatalogNumber)
	if av != bv {
		return av < bv
	}
	return a.OfferNbr < b.OfferNbr
}

func lessDestination(a, b DestinationMember) bool {
	if a.Discipline != b.Discipline {
		return a.Discipline < b.Discipline
	}
	av, _ := catalogNumberValue(a.CatalogNumber)
	bv, _ := catalogNumberValue(b.CatalogNumber)
	if av != bv {
		return av < bv
	}
	return a.OfferNbr < b.OfferNbr
}
