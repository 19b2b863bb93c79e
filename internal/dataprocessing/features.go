package dataprocessing

import (
	"strconv"
	"time"

	"loteriadash/pkg/contracts/domain"
)

// MonthNames are indexed by time.Month
var MonthNames = [...]string{
	"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// DayNames are indexed Monday = 0
var DayNames = [...]string{
	"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
}

// Range bucket labels, lowest first
var (
	NumberRanges = []string{"0-2500", "2500-5000", "5000-7500", "7500-10000"}
	SeriesRanges = []string{"0-100", "100-200", "200-300", "300+"}
)

// DeriveFeatures computes the calendar and numeric attributes of a draw.
// It is a pure function of its arguments.
func DeriveFeatures(date time.Time, number, series int) domain.Features {
	_, week := date.ISOWeek()
	weekday := (int(date.Weekday()) + 6) % 7
	digits := strconv.Itoa(number)

	even := 0
	if number%2 == 0 {
		even = 1
	}

	return domain.Features{
		Year:        date.Year(),
		Month:       int(date.Month()),
		MonthName:   MonthNames[date.Month()],
		DayOfWeek:   weekday,
		DayName:     DayNames[weekday],
		Quarter:     (int(date.Month())-1)/3 + 1,
		ISOWeek:     week,
		DayOfYear:   date.YearDay(),
		FirstDigit:  int(digits[0] - '0'),
		LastDigit:   number % 10,
		DigitSum:    digitSum(number),
		Even:        even,
		NumberRange: numberRange(number),
		SeriesRange: seriesRange(series),
	}
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// bins are right-closed; the lowest edge belongs to the first bin
func numberRange(n int) string {
	switch {
	case n <= 2500:
		return NumberRanges[0]
	case n <= 5000:
		return NumberRanges[1]
	case n <= 7500:
		return NumberRanges[2]
	default:
		return NumberRanges[3]
	}
}

func seriesRange(s int) string {
	switch {
	case s <= 100:
		return SeriesRanges[0]
	case s <= 200:
		return SeriesRanges[1]
	case s <= 300:
		return SeriesRanges[2]
	default:
		return SeriesRanges[3]
	}
}
