package rules

import (
	"fmt"
	"strings"

	"github.com/acadex/transferrules/internal/catalog"
	"github.com/acadex/transferrules/internal/conflict"
	"github.com/acadex/transferrules/internal/feed"
)

// Reconciler drives one record at a time through key resolution, course
// resolution, and aggregation. Rejected records affect the result only by
// omission; every rejection is written to the conflict log.
type Reconciler struct {
	cache        *catalog.Index
	institutions map[string]bool
	agg          *Aggregator
	log          *conflict.Log
	consumed     int
}

// NewReconciler creates a reconciler over a loaded catalog index and the
// authoritative institution set.
func NewReconciler(cache *catalog.Index, institutions map[string]bool, log *conflict.Log) *Reconciler {
	return &Reconciler{
		cache:        cache,
		institutions: institutions,
		agg:          NewAggregator(log),
		log:          log,
	}
}

// Consume folds one feed record into the in-progress rule set. It never
// returns an error: every anomaly is recovered locally and logged.
func (r *Reconciler) Consume(rec *feed.Record) {
	key, ok := r.resolveKey(rec)
	if !ok {
		return
	}
	if r.agg.Discarded(key) {
		// A prior record already sank this rule; nothing to add.
		return
	}

	src, srcNames, ok := r.resolveSource(rec, key)
	if !ok {
		return
	}
	dest, destNames, ok := r.resolveDestination(rec, key)
	if !ok {
		return
	}

	r.consumed++
	r.agg.Add(key, Contribution{
		Source:        src,
		Destination:   dest,
		Disciplines:   append(srcNames.disciplines, destNames.disciplines...),
		Subjects:      append(srcNames.subjects, destNames.subjects...),
		Priority:      rec.TransferPriority,
		EffectiveDate: rec.EffectiveDate(),
	})
}

// Consumed returns the number of records that contributed to a rule.
func (r *Reconciler) Consumed() int {
	return r.consumed
}

// Finalize returns the reconciled, deduplicated rule set.
func (r *Reconciler) Finalize() []Rule {
	return r.agg.Finalize()
}

// resolveKey derives the composite rule key, validating both institution
// codes against the authoritative set rather than the feed itself.
func (r *Reconciler) resolveKey(rec *feed.Record) (RuleKey, bool) {
	if !r.institutions[rec.SourceInstitution] {
		r.log.Report("Unknown institution: %s. Record skipped.", rec.SourceInstitution)
		return RuleKey{}, false
	}
	if !r.institutions[rec.DestinationInstitution] {
		r.log.Report("Unknown institution: %s. Record skipped.", rec.DestinationInstitution)
		return RuleKey{}, false
	}
	return RuleKey{
		SourceInstitution:      rec.SourceInstitution,
		DestinationInstitution: rec.DestinationInstitution,
		SubjectArea:            rec.ComponentSubjectArea,
		GroupNumber:            rec.GroupNumber,
	}, true
}

// aliasNames carries the discipline and subject names collected from every
// offering of a course, canonical and cross-listed alike.
type aliasNames struct {
	disciplines []string
	subjects    []string
}

func collectNames(offerings []catalog.Course) aliasNames {
	var n aliasNames
	for _, c := range offerings {
		n.disciplines = append(n.disciplines, c.Discipline)
		if c.SubjectTag != "" {
			n.subjects = append(n.subjects, c.SubjectTag)
		}
	}
	return n
}

// selectOffering picks the offering matching the declared offer number as
// canonical. When none matches, the first offering stands in and a
// mismatch notice is logged.
func (r *Reconciler) selectOffering(offerings []catalog.Course, declared int, courseID int, side string, key RuleKey) catalog.Course {
	for _, c := range offerings {
		if c.OfferNbr == declared {
			return c
		}
	}
	r.log.Report("No offer_nbr %d among %d offerings of %s course %06d in rule %s. First offering used.",
		declared, len(offerings), side, courseID, key)
	return offerings[0]
}

// aliasList renders the cross-listed siblings of the canonical offering as
// a colon-joined list of course_id.offer_nbr identifiers.
func aliasList(offerings []catalog.Course, canonical catalog.Course) string {
	var ids []string
	for _, c := range offerings {
		if c.OfferNbr == canonical.OfferNbr {
			continue
		}
		ids = append(ids, fmt.Sprintf("%d.%d", c.CourseID, c.OfferNbr))
	}
	return strings.Join(ids, ":")
}

// resolveSource resolves the record's source course. A missing course_id
// sinks the whole rule key; quality failures drop only this record's
// contribution.
func (r *Reconciler) resolveSource(rec *feed.Record, key RuleKey) (SourceMember, aliasNames, bool) {
	offerings := r.cache.Lookup(rec.SourceCourseID)
	if len(offerings) == 0 {
		r.log.Report("Source course lookup failed for %06d in rule %s. Rule deleted.",
			rec.SourceCourseID, key)
		r.agg.Discard(key)
		return SourceMember{}, aliasNames{}, false
	}

	canonical := r.selectOffering(offerings, rec.SourceOfferNbr, rec.SourceCourseID, "source", key)

	// A course that cannot carry transfer credit is not a meaningful
	// source: no numeric catalog number, a generic-credit designation,
	// or zero maximum credits.
	if _, ok := catalogNumberValue(canonical.CatalogNumber); !ok {
		r.log.Report("Source course %06d (%s %s) in rule %s has a non-numeric catalog number. Contribution skipped.",
			rec.SourceCourseID, canonical.Discipline, canonical.CatalogNumber, key)
		return SourceMember{}, aliasNames{}, false
	}
	if canonical.Designation == DesignationMessage || canonical.Designation == DesignationBlanket {
		r.log.Report("Source course %06d in rule %s carries designation %s. Contribution skipped.",
			rec.SourceCourseID, key, canonical.Designation)
		return SourceMember{}, aliasNames{}, false
	}
	if canonical.MaxCredits == 0 {
		r.log.Report("Zero-credit source course %06d in rule %s. Contribution skipped.",
			rec.SourceCourseID, key)
		return SourceMember{}, aliasNames{}, false
	}

	member := SourceMember{
		CourseID:      canonical.CourseID,
		OfferNbr:      canonical.OfferNbr,
		OfferCount:    len(offerings),
		Discipline:    canonical.Discipline,
		CatalogNumber: canonical.CatalogNumber,
		SubjectTag:    canonical.SubjectTag,
		MinCredits:    canonical.MinCredits,
		MaxCredits:    canonical.MaxCredits,
		CreditSource:  rec.SubjectCreditSource,
		MinGPA:        rec.MinGradePts,
		MaxGPA:        rec.MaxGradePts,
		Aliases:       aliasList(offerings, canonical),
	}
	return member, collectNames(offerings), true
}

// resolveDestination resolves the record's destination course. Inactive
// and cross-listed destinations are flagged but kept.
func (r *Reconciler) resolveDestination(rec *feed.Record, key RuleKey) (DestinationMember, aliasNames, bool) {
	offerings := r.cache.Lookup(rec.DestinationCourseID)
	if len(offerings) == 0 {
		r.log.Report("Destination course lookup failed for %06d in rule %s. Rule deleted.",
			rec.DestinationCourseID, key)
		r.agg.Discard(key)
		return DestinationMember{}, aliasNames{}, false
	}

	canonical := r.selectOffering(offerings, rec.DestinationOfferNbr, rec.DestinationCourseID, "destination", key)

	if !canonical.Active() {
		r.log.Report("Inactive destination course_id (%06d) in rule %s. Rule retained.",
			rec.DestinationCourseID, key)
	}
	if len(offerings) > 1 {
		r.log.Report("Cross-listed destination course_id (%06d) has %d offerings in rule %s. Rule retained.",
			rec.DestinationCourseID, len(offerings), key)
	}

	member := DestinationMember{
		CourseID:        canonical.CourseID,
		OfferNbr:        canonical.OfferNbr,
		OfferCount:      len(offerings),
		Discipline:      canonical.Discipline,
		CatalogNumber:   canonical.CatalogNumber,
		SubjectTag:      canonical.SubjectTag,
		TransferCredits: rec.UnitsTaken,
		CreditSource:    rec.ComponentCreditSource,
		IsMessage:       canonical.Designation == DesignationMessage,
		IsBlanket:       canonical.Designation == DesignationBlanket,
	}
	return member, collectNames(offerings), true
}
