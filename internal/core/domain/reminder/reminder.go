package reminder

import "time"

// Kind selects which reminder template and facts are sent.
type Kind string

const (
	KindPayment Kind = "payment"
	KindFinal   Kind = "final"
)

func (k Kind) IsValid() bool {
	return k == KindPayment || k == KindFinal
}

// DateLayout renders due dates as "01 August 2025".
const DateLayout = "02 January 2006"

// DueDate returns the date quoted in a reminder of kind k sent at now:
// the first of next month for payment reminders, the tenth of this month for final ones.
func DueDate(k Kind, now time.Time) time.Time {
	y, m, _ := now.Date()
	if k == KindFinal {
		return time.Date(y, m, 10, 0, 0, 0, 0, now.Location())
	}
	return time.Date(y, m+1, 1, 0, 0, 0, 0, now.Location())
}

// Report summarizes one reminder batch.
type Report struct {
	Kind       Kind `json:"kind"`
	Considered int  `json:"considered"`
	Sent       int  `json:"sent"`
	Emailed    int  `json:"emailed"`
	Skipped    int  `json:"skipped"`
	Failed     int  `json:"failed"`
}
