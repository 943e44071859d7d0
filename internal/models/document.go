package models

import "time"

// Document is the aggregate persisted per user: habit names per month,
// completions per day, and self-reported productive hours per day.
// Habit order within a month is display order and must be preserved.
type Document struct {
	HabitsByMonth   map[Month][]string `json:"habitsByMonth"`
	Completions     map[Date][]string  `json:"completions"`
	ProductiveHours map[Date]string    `json:"productiveHours"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewDocument returns an empty document with all maps initialized.
func NewDocument() Document {
	return Document{
		HabitsByMonth:   make(map[Month][]string),
		Completions:     make(map[Date][]string),
		ProductiveHours: make(map[Date]string),
	}
}

// DefaultSeed builds the document a fresh user starts from: one
// placeholder habit per month of the given year, no completions, no hours.
func DefaultSeed(year int) Document {
	doc := NewDocument()
	for m := 1; m <= 12; m++ {
		doc.HabitsByMonth[MonthOf(year, m)] = []string{"Habit 1"}
	}
	return doc
}

// Clone returns a deep copy. The repository hands clones to storage so a
// later in-memory mutation can never alias a snapshot already written out.
func (d Document) Clone() Document {
	out := Document{
		HabitsByMonth:   make(map[Month][]string, len(d.HabitsByMonth)),
		Completions:     make(map[Date][]string, len(d.Completions)),
		ProductiveHours: make(map[Date]string, len(d.ProductiveHours)),
		UpdatedAt:       d.UpdatedAt,
	}
	for m, habits := range d.HabitsByMonth {
		out.HabitsByMonth[m] = append([]string(nil), habits...)
	}
	for day, done := range d.Completions {
		out.Completions[day] = append([]string(nil), done...)
	}
	for day, hours := range d.ProductiveHours {
		out.ProductiveHours[day] = hours
	}
	return out
}

// Normalize re-initializes any nil maps after deserialization.
func (d *Document) Normalize() {
	if d.HabitsByMonth == nil {
		d.HabitsByMonth = make(map[Month][]string)
	}
	if d.Completions == nil {
		d.Completions = make(map[Date][]string)
	}
	if d.ProductiveHours == nil {
		d.ProductiveHours = make(map[Date]string)
	}
}
