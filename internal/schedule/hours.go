package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// hoursPattern matches "HH:MM-HH:MM" opening-hours text, tolerating spaces
// around the dash.
var hoursPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*$`)

// ParseOpenHours parses opening-hours text into open/close minutes from
// midnight. Unparseable or empty text reports ok=false, which the scheduler
// treats as unconstrained.
func ParseOpenHours(text string) (openMin, closeMin int, ok bool) {
	m := hoursPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, 0, false
	}
	oh, _ := strconv.Atoi(m[1])
	om, _ := strconv.Atoi(m[2])
	ch, _ := strconv.Atoi(m[3])
	cm, _ := strconv.Atoi(m[4])
	openMin = oh*60 + om
	closeMin = ch*60 + cm
	if oh > 23 || ch > 24 || om > 59 || cm > 59 || closeMin <= openMin {
		return 0, 0, false
	}
	return openMin, closeMin, true
}

// Clock renders minutes from midnight as "HH:MM".
func Clock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h := (minutes / 60) % 24
	m := minutes % 60
	return pad(h) + ":" + pad(m)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
