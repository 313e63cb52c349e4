package booking

import (
	"time"

	"github.com/salonkit/salon-scheduler/internal/httperr"
)

// ======================================================
// RECURRENCE
// ======================================================

const (
	FrequencyDaily  = "DAILY"
	FrequencyWeekly = "WEEKLY"

	MaxOccurrences = 20
)

type Recurrence struct {
	Frequency string
	Interval  int // dias (DAILY) ou semanas (WEEKLY)
	Count     int
}

type Occurrence struct {
	Index int
	Start time.Time
	End   time.Time
}

// Expand gera as ocorrências de uma série. A ocorrência 0 é o horário
// base; as seguintes deslocam início/fim por index × intervalo. A série
// é limitada a 31/12 do ano do início.
func Expand(start, end time.Time, rec *Recurrence) ([]Occurrence, error) {
	if rec == nil {
		return []Occurrence{{Index: 0, Start: start, End: end}}, nil
	}

	if rec.Count < 1 || rec.Count > MaxOccurrences {
		return nil, httperr.ErrBusiness("invalid_recurrence_count")
	}
	if rec.Interval < 1 {
		return nil, httperr.ErrBusiness("invalid_recurrence_interval")
	}

	var stepDays int
	switch rec.Frequency {
	case FrequencyDaily:
		stepDays = rec.Interval
	case FrequencyWeekly:
		stepDays = rec.Interval * 7
	default:
		return nil, httperr.ErrBusiness("invalid_recurrence_frequency")
	}

	endOfYear := time.Date(
		start.Year(), 12, 31, 23, 59, 59, 0,
		start.Location(),
	)

	occurrences := make([]Occurrence, 0, rec.Count)
	for i := 0; i < rec.Count; i++ {
		occStart := start.AddDate(0, 0, i*stepDays)
		if occStart.After(endOfYear) {
			break
		}
		occurrences = append(occurrences, Occurrence{
			Index: i,
			Start: occStart,
			End:   end.AddDate(0, 0, i*stepDays),
		})
	}

	return occurrences, nil
}

// Until devolve o limite da série já expandida (início da última ocorrência).
func Until(occurrences []Occurrence) time.Time {
	if len(occurrences) == 0 {
		return time.Time{}
	}
	return occurrences[len(occurrences)-1].Start
}
