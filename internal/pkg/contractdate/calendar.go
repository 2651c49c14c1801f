package contractdate

import "time"

// BlackoutRange is a closed date interval with no classes, such as a vacation.
type BlackoutRange struct {
	Label string
	Start time.Time
	End   time.Time
}

// Holiday is a single date with no classes.
type Holiday struct {
	Label string
	Date  time.Time
}

func (h Holiday) Weekday() time.Weekday {
	return h.Date.Weekday()
}

// Calendar is versioned reference data. It is loaded once and never mutated.
type Calendar struct {
	Version   string
	Blackouts []BlackoutRange
	Holidays  []Holiday
}

// CalendarVersion identifies the built-in tables below. Bump it whenever a
// range or holiday changes so stored results can be traced to their inputs.
const CalendarVersion = "2025.2"

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var defaultCalendar = &Calendar{
	Version: CalendarVersion,
	Blackouts: []BlackoutRange{
		{Label: "Recesso de fim de ano 2024/2025", Start: day(2024, time.December, 20), End: day(2025, time.January, 5)},
		{Label: "Férias de julho 2025", Start: day(2025, time.July, 14), End: day(2025, time.July, 31)},
		{Label: "Recesso de fim de ano 2025/2026", Start: day(2025, time.December, 19), End: day(2026, time.January, 4)},
		{Label: "Férias de julho 2026", Start: day(2026, time.July, 13), End: day(2026, time.July, 31)},
		{Label: "Recesso de fim de ano 2026/2027", Start: day(2026, time.December, 18), End: day(2027, time.January, 3)},
		{Label: "Férias de julho 2027", Start: day(2027, time.July, 12), End: day(2027, time.July, 30)},
	},
	Holidays: []Holiday{
		{Label: "Confraternização Universal", Date: day(2025, time.January, 1)},
		{Label: "Carnaval", Date: day(2025, time.March, 3)},
		{Label: "Carnaval", Date: day(2025, time.March, 4)},
		{Label: "Sexta-feira Santa", Date: day(2025, time.April, 18)},
		{Label: "Tiradentes", Date: day(2025, time.April, 21)},
		{Label: "Dia do Trabalho", Date: day(2025, time.May, 1)},
		{Label: "Corpus Christi", Date: day(2025, time.June, 19)},
		{Label: "Independência do Brasil", Date: day(2025, time.September, 7)},
		{Label: "Nossa Senhora Aparecida", Date: day(2025, time.October, 12)},
		{Label: "Finados", Date: day(2025, time.November, 2)},
		{Label: "Proclamação da República", Date: day(2025, time.November, 15)},
		{Label: "Consciência Negra", Date: day(2025, time.November, 20)},
		{Label: "Natal", Date: day(2025, time.December, 25)},

		{Label: "Confraternização Universal", Date: day(2026, time.January, 1)},
		{Label: "Carnaval", Date: day(2026, time.February, 16)},
		{Label: "Carnaval", Date: day(2026, time.February, 17)},
		{Label: "Sexta-feira Santa", Date: day(2026, time.April, 3)},
		{Label: "Tiradentes", Date: day(2026, time.April, 21)},
		{Label: "Dia do Trabalho", Date: day(2026, time.May, 1)},
		{Label: "Corpus Christi", Date: day(2026, time.June, 4)},
		{Label: "Independência do Brasil", Date: day(2026, time.September, 7)},
		{Label: "Nossa Senhora Aparecida", Date: day(2026, time.October, 12)},
		{Label: "Finados", Date: day(2026, time.November, 2)},
		{Label: "Proclamação da República", Date: day(2026, time.November, 15)},
		{Label: "Consciência Negra", Date: day(2026, time.November, 20)},
		{Label: "Natal", Date: day(2026, time.December, 25)},

		{Label: "Confraternização Universal", Date: day(2027, time.January, 1)},
		{Label: "Carnaval", Date: day(2027, time.February, 8)},
		{Label: "Carnaval", Date: day(2027, time.February, 9)},
		{Label: "Sexta-feira Santa", Date: day(2027, time.March, 26)},
		{Label: "Tiradentes", Date: day(2027, time.April, 21)},
		{Label: "Dia do Trabalho", Date: day(2027, time.May, 1)},
		{Label: "Corpus Christi", Date: day(2027, time.May, 27)},
		{Label: "Independência do Brasil", Date: day(2027, time.September, 7)},
		{Label: "Nossa Senhora Aparecida", Date: day(2027, time.October, 12)},
		{Label: "Finados", Date: day(2027, time.November, 2)},
		{Label: "Proclamação da República", Date: day(2027, time.November, 15)},
		{Label: "Consciência Negra", Date: day(2027, time.November, 20)},
		{Label: "Natal", Date: day(2027, time.December, 25)},
	},
}

// Default returns the built-in calendar. Callers must not modify it.
func Default() *Calendar {
	return defaultCalendar
}
