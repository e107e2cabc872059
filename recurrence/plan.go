package recurrence

import "fmt"

// Schedule holds the recurrence fields of one project, as written.
// A nil date means the field is absent.
type Schedule struct {
	Interval  string
	DueDate   *string
	StartDate *string
}

// Plan is the outcome of advancing a schedule by one occurrence.
type Plan struct {
	Interval  Interval
	DueDate   *string
	StartDate *string
}

// Next computes the following occurrence of s. It either advances every
// present date or returns an error; it never returns a partial plan.
func Next(s Schedule) (Plan, error) {
	interval, err := ParseInterval(s.Interval)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Interval: interval}
	if plan.DueDate, err = advance(interval, s.DueDate, "due date"); err != nil {
		return Plan{}, err
	}
	if plan.StartDate, err = advance(interval, s.StartDate, "start date"); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func advance(interval Interval, value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	date, err := ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	next := FormatDate(interval.AddTo(date))
	return &next, nil
}
