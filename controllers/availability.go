package controllers

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/campingchile/camping-server/models"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// nightsBetween counts whole days between check-in and check-out.
func nightsBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// datesOverlap applies the symmetric half-open interval test: two stays
// collide iff each one starts before the other ends. Comparing only end
// dates undercounts conflicts.
func datesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func atoiPositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %q", s)
	}
	return n, nil
}

// busySiteIDs returns the sites among siteIDs that already hold a
// reservation overlapping [start, end).
func busySiteIDs(db *gorm.DB, siteIDs []uint, start, end time.Time) (map[uint]bool, error) {
	busy := make(map[uint]bool)
	if len(siteIDs) == 0 {
		return busy, nil
	}
	var ids []uint
	err := db.Model(&models.Reservation{}).
		Where("site_id IN ? AND start_date < ? AND end_date > ?", siteIDs, end, start).
		Distinct().
		Pluck("site_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		busy[id] = true
	}
	return busy, nil
}

// siteMatches applies the capacity and status filters shared by the
// camping and site searches. Absent filters pass through.
func siteMatches(site models.Site, numPeople int, busy map[uint]bool) bool {
	if site.Status != models.SiteAvailable {
		return false
	}
	if numPeople > 0 && site.MaxOfPeople < numPeople {
		return false
	}
	return !busy[site.ID]
}

type unknownServiceError struct {
	Name string
}

func (e unknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q for this camping", e.Name)
}

// resolveServices maps the requested add-on names onto the camping's
// price list. All-or-nothing: a single unknown name rejects the whole
// set. Returned names use the price list's canonical spelling.
func resolveServices(camping *models.Camping, names []string) (float64, []string, error) {
	if len(names) == 0 {
		return 0, nil, nil
	}
	var total float64
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		canonical, price, ok := camping.ServicePrice(name)
		if !ok {
			return 0, nil, unknownServiceError{Name: name}
		}
		total += price
		resolved = append(resolved, canonical)
	}
	return total, resolved, nil
}
