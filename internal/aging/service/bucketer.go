package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	agingdomain "github.com/smallbiznis/hotelpms/internal/aging/domain"
	"github.com/smallbiznis/hotelpms/internal/config"
)

const day = 24 * time.Hour

// Bucketer classifies days overdue into the configured aging buckets.
type Bucketer struct {
	buckets []config.AgingBucket
}

func NewBucketer(buckets []config.AgingBucket) (*Bucketer, error) {
	if err := config.ValidateAgingBuckets(buckets); err != nil {
		return nil, fmt.Errorf("%w: %v", agingdomain.ErrInvalidBuckets, err)
	}
	return &Bucketer{buckets: append([]config.AgingBucket(nil), buckets...)}, nil
}

// Labels returns the bucket labels in order.
func (b *Bucketer) Labels() []string {
	labels := make([]string, 0, len(b.buckets))
	for _, bucket := range b.buckets {
		labels = append(labels, bucket.Label)
	}
	return labels
}

// Bucket returns the label for days overdue. Amounts not yet due fall in
// the first bucket.
func (b *Bucketer) Bucket(daysOverdue int) string {
	if daysOverdue < 0 {
		daysOverdue = 0
	}
	for _, bucket := range b.buckets {
		if daysOverdue < bucket.MinDays {
			continue
		}
		if bucket.MaxDays == nil || daysOverdue <= *bucket.MaxDays {
			return bucket.Label
		}
	}
	return b.buckets[len(b.buckets)-1].Label
}

// DaysOverdue counts whole calendar days from due to asOf.
func DaysOverdue(due, asOf time.Time) int {
	return int(dayStart(asOf).Sub(dayStart(due)) / day)
}

// BuildReport ages entries as of asOf.
func (b *Bucketer) BuildReport(entries []agingdomain.Entry, asOf time.Time) agingdomain.Report {
	report := agingdomain.Report{
		AsOf:    dayStart(asOf),
		Buckets: b.emptySummaries(),
		Parties: []agingdomain.PartySummary{},
		Entries: make([]agingdomain.AgedEntry, 0, len(entries)),
		Total:   decimal.Zero,
	}

	position := make(map[string]int, len(b.buckets))
	for i, bucket := range b.buckets {
		position[bucket.Label] = i
	}
	parties := make(map[string]*agingdomain.PartySummary)

	for _, entry := range entries {
		days := DaysOverdue(entry.DueDate, asOf)
		label := b.Bucket(days)
		if days < 0 {
			days = 0
		}
		report.Entries = append(report.Entries, agingdomain.AgedEntry{Entry: entry, DaysOverdue: days, Bucket: label})

		i := position[label]
		report.Buckets[i].Count++
		report.Buckets[i].Amount = report.Buckets[i].Amount.Add(entry.Amount)
		report.Total = report.Total.Add(entry.Amount)

		name := strings.TrimSpace(entry.Party)
		party, ok := parties[name]
		if !ok {
			party = &agingdomain.PartySummary{Party: name, Buckets: b.emptySummaries(), Total: decimal.Zero}
			parties[name] = party
		}
		party.Buckets[i].Count++
		party.Buckets[i].Amount = party.Buckets[i].Amount.Add(entry.Amount)
		party.Total = party.Total.Add(entry.Amount)
	}

	for _, party := range parties {
		report.Parties = append(report.Parties, *party)
	}
	sort.Slice(report.Parties, func(i, j int) bool {
		if c := report.Parties[i].Total.Cmp(report.Parties[j].Total); c != 0 {
			return c > 0
		}
		return report.Parties[i].Party < report.Parties[j].Party
	})
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].DaysOverdue > report.Entries[j].DaysOverdue
	})
	return report
}

func (b *Bucketer) emptySummaries() []agingdomain.BucketSummary {
	out := make([]agingdomain.BucketSummary, 0, len(b.buckets))
	for _, bucket := range b.buckets {
		out = append(out, agingdomain.BucketSummary{Label: bucket.Label, Amount: decimal.Zero})
	}
	return out
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
