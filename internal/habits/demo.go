package habits

import (
	"time"

	"github.com/julianstephens/habitgrid/internal/datekit"
	"github.com/julianstephens/habitgrid/internal/models"
)

var demoHabits = []string{
	"Morning run",
	"Read 20 pages",
	"No sugar",
	"Meditate",
}

// DemoDocument builds a pre-filled document for browsing while signed
// out. Every month of the current year carries the same sample habits,
// and the current month has a plausible scatter of completions so the
// grid does not render empty.
func DemoDocument() models.Document {
	now := time.Now()
	doc := models.NewDocument()
	for m := 1; m <= 12; m++ {
		doc.HabitsByMonth[models.MonthOf(now.Year(), m)] = append([]string(nil), demoHabits...)
	}

	today := datekit.Today()
	for i, date := range datekit.MonthDates(today.Month()) {
		if datekit.Classify(date, today) == datekit.Future {
			break
		}
		// Deterministic but uneven pattern, no RNG to seed.
		for j, h := range demoHabits {
			if (i+j)%3 != 0 {
				doc.Completions[date] = append(doc.Completions[date], h)
			}
		}
		if i%2 == 0 {
			doc.ProductiveHours[date] = "6.30"
		}
	}
	doc.UpdatedAt = now.UTC()
	return doc
}
