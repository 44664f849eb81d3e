package scanner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/medtrack/internal/medicine"
	"github.com/fkhayef/medtrack/internal/notification"
)

// MedicineStore is the expiry-range query surface the scanner reads from
type MedicineStore interface {
	FindExpiringOnOrBefore(ctx context.Context, date time.Time) ([]*medicine.Medicine, error)
	FindExpiringBetween(ctx context.Context, startExclusive, endInclusive time.Time) ([]*medicine.Medicine, error)
}

// AlertChecker reports whether an alert of a kind was already created for a
// medicine. The scanner consults it live on every candidate so a dispatch
// earlier in the same cycle is visible to later threshold passes.
type AlertChecker interface {
	ExistsForMedicineAndType(ctx context.Context, medicineID int64, t notification.Type) (bool, error)
}

// Dispatcher records and distributes one alert
type Dispatcher interface {
	DispatchAlert(ctx context.Context, m *medicine.Medicine, kind notification.Type, message string) error
}

// Scanner periodically detects medicines crossing expiry thresholds and
// triggers exactly one alert per newly-crossed threshold kind.
type Scanner struct {
	medicines  MedicineStore
	alerts     AlertChecker
	dispatcher Dispatcher

	// rawWarningDays is kept in its raw comma-separated form and parsed on
	// every cycle, so externally changed configuration takes effect without
	// a restart.
	rawWarningDays string
	interval       time.Duration
	log            *logrus.Logger

	stop chan struct{}
	done chan struct{}
}

// New creates an expiry scanner. rawWarningDays is a comma-separated list of
// positive day counts, e.g. "3,7,14"; interval is the fixed delay between
// the end of one cycle and the start of the next.
func New(medicines MedicineStore, alerts AlertChecker, dispatcher Dispatcher, rawWarningDays string, interval time.Duration, log *logrus.Logger) *Scanner {
	return &Scanner{
		medicines:      medicines,
		alerts:         alerts,
		dispatcher:     dispatcher,
		rawWarningDays: rawWarningDays,
		interval:       interval,
		log:            log,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start launches the scan loop in its own goroutine. The first cycle runs
// immediately; each following cycle is scheduled interval after the previous
// one finishes, so cycles never overlap.
func (s *Scanner) Start() {
	s.log.WithField("interval", s.interval).Info("starting expiry scanner")
	go s.run()
}

// Stop signals the loop to exit and waits for any in-flight cycle to finish
func (s *Scanner) Stop() {
	close(s.stop)
	<-s.done
	s.log.Info("expiry scanner stopped")
}

func (s *Scanner) run() {
	defer close(s.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
			s.RunCycle(context.Background(), time.Now())
			timer.Reset(s.interval)
		}
	}
}

// RunCycle executes one expiry-detection pass. Today is captured once from
// now so every comparison within the cycle is consistent. Exported so tests
// can drive single cycles deterministically.
func (s *Scanner) RunCycle(ctx context.Context, now time.Time) {
	today := medicine.DateOnly(now)
	s.log.WithField("date", today.Format(medicine.DateLayout)).Debug("starting expiry check")

	expiredCount := s.expiredPass(ctx, today)
	soonCount := s.expiringSoonPass(ctx, today)

	s.log.WithFields(logrus.Fields{
		"expired":       expiredCount,
		"expiring_soon": soonCount,
	}).Info("expiry check completed")
}

// expiredPass alerts on every medicine whose expiry date is today or earlier
func (s *Scanner) expiredPass(ctx context.Context, today time.Time) int {
	medicines, err := s.medicines.FindExpiringOnOrBefore(ctx, today)
	if err != nil {
		s.log.WithError(err).Error("failed to query expired medicines")
		return 0
	}

	count := 0
	for _, m := range medicines {
		exists, err := s.alerts.ExistsForMedicineAndType(ctx, m.ID, notification.TypeExpired)
		if err != nil {
			s.log.WithError(err).WithField("medicine_id", m.ID).Error("failed to check for existing alert")
			continue
		}
		if exists {
			continue
		}

		message := fmt.Sprintf("%s expired on %s. Please dispose of it safely.",
			m.Name, m.ExpiryDate.Format(medicine.DateLayout))
		if s.dispatch(ctx, m, notification.TypeExpired, message) {
			count++
		}
	}

	return count
}

// expiringSoonPass walks the warning thresholds ascending, so when a medicine
// qualifies under several thresholds the smallest one's message is recorded.
// The existence check runs against live store state per threshold iteration,
// never a cached per-cycle set.
func (s *Scanner) expiringSoonPass(ctx context.Context, today time.Time) int {
	count := 0
	for _, days := range parseWarningDays(s.rawWarningDays) {
		medicines, err := s.medicines.FindExpiringBetween(ctx, today, today.AddDate(0, 0, days))
		if err != nil {
			s.log.WithError(err).WithField("threshold_days", days).Error("failed to query expiring medicines")
			continue
		}

		for _, m := range medicines {
			exists, err := s.alerts.ExistsForMedicineAndType(ctx, m.ID, notification.TypeExpiringSoon)
			if err != nil {
				s.log.WithError(err).WithField("medicine_id", m.ID).Error("failed to check for existing alert")
				continue
			}
			if exists {
				continue
			}

			daysUntil := int(medicine.DateOnly(m.ExpiryDate).Sub(today).Hours() / 24)
			message := fmt.Sprintf("%s will expire in %d days (on %s). Please check and replace if needed.",
				m.Name, daysUntil, m.ExpiryDate.Format(medicine.DateLayout))
			if s.dispatch(ctx, m, notification.TypeExpiringSoon, message) {
				count++
			}
		}
	}

	return count
}

// dispatch invokes the dispatcher for one medicine, isolating the rest of
// the cycle from its failure. Errors and panics are logged and skipped; the
// next scheduled run retries.
func (s *Scanner) dispatch(ctx context.Context, m *medicine.Medicine, kind notification.Type, message string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"medicine_id": m.ID,
				"type":        kind,
				"panic":       r,
			}).Error("dispatch panicked")
			ok = false
		}
	}()

	if err := s.dispatcher.DispatchAlert(ctx, m, kind, message); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"medicine_id": m.ID,
			"type":        kind,
		}).Error("failed to dispatch alert")
		return false
	}
	return true
}

// parseWarningDays splits, trims, parses, deduplicates and sorts the raw
// threshold list. Non-numeric and non-positive entries are dropped.
func parseWarningDays(raw string) []int {
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	sort.Ints(days)
	return days
}
