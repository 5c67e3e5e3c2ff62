package inventory

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AddMonths suma meses conservando el día cuando existe; si no, usa el último día del mes destino.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// CyclePeriod periodo [Start, End] de un ciclo generado.
type CyclePeriod struct {
	Classification string
	Frequency      string
	Start          time.Time
	End            time.Time
}

// CycleFrequencyFor frecuencia asociada a cada clase: A mensual, B trimestral, C anual.
func CycleFrequencyFor(class string) string {
	switch class {
	case entity.ABCClassA:
		return entity.CycleFrequencyMonthly
	case entity.ABCClassB:
		return entity.CycleFrequencyQuarterly
	default:
		return entity.CycleFrequencyYearly
	}
}

// GenerateCyclePeriods periodos consecutivos por clase entre from y to (inclusive).
// Cada periodo termina el día anterior al inicio del siguiente, acotado a to.
func GenerateCyclePeriods(from, to time.Time, classes []string) []CyclePeriod {
	var out []CyclePeriod
	if to.Before(from) {
		return out
	}
	for _, class := range classes {
		freq := CycleFrequencyFor(class)
		months := entity.FrequencyMonths(freq)
		for i := 0; ; i++ {
			start := AddMonths(from, i*months)
			if start.After(to) {
				break
			}
			end := AddMonths(from, (i+1)*months).AddDate(0, 0, -1)
			if end.After(to) {
				end = to
			}
			out = append(out, CyclePeriod{Classification: class, Frequency: freq, Start: start, End: end})
		}
	}
	return out
}
