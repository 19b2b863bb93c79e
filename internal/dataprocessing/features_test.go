package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loteriadash/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveFeatures(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		number int
		series int
		want   domain.Features
	}{
		{
			name:   "single digit on a sunday",
			date:   day(2020, time.January, 5),
			number: 7,
			series: 42,
			want: domain.Features{
				Year: 2020, Month: 1, MonthName: "Enero", DayOfWeek: 6, DayName: "Domingo",
				Quarter: 1, ISOWeek: 1, DayOfYear: 5,
				FirstDigit: 7, LastDigit: 7, DigitSum: 7, Even: 0,
				NumberRange: "0-2500", SeriesRange: "0-100",
			},
		},
		{
			name:   "upper edges",
			date:   day(2022, time.December, 30),
			number: 9999,
			series: 301,
			want: domain.Features{
				Year: 2022, Month: 12, MonthName: "Diciembre", DayOfWeek: 4, DayName: "Viernes",
				Quarter: 4, ISOWeek: 52, DayOfYear: 364,
				FirstDigit: 9, LastDigit: 9, DigitSum: 36, Even: 0,
				NumberRange: "7500-10000", SeriesRange: "300+",
			},
		},
		{
			name:   "zero is even and in the first bins",
			date:   day(2021, time.March, 1),
			number: 0,
			series: 0,
			want: domain.Features{
				Year: 2021, Month: 3, MonthName: "Marzo", DayOfWeek: 0, DayName: "Lunes",
				Quarter: 1, ISOWeek: 9, DayOfYear: 60,
				FirstDigit: 0, LastDigit: 0, DigitSum: 0, Even: 1,
				NumberRange: "0-2500", SeriesRange: "0-100",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveFeatures(tt.date, tt.number, tt.series))
		})
	}
}

func TestRangeBinsAreRightClosed(t *testing.T) {
	cases := map[int]string{
		0: "0-2500", 2500: "0-2500", 2501: "2500-5000", 5000: "2500-5000",
		5001: "5000-7500", 7500: "5000-7500", 7501: "7500-10000", 9999: "7500-10000",
	}
	for n, want := range cases {
		assert.Equal(t, want, numberRange(n), "number %d", n)
	}

	series := map[int]string{
		0: "0-100", 100: "0-100", 101: "100-200", 200: "100-200",
		201: "200-300", 300: "200-300", 301: "300+", 5000: "300+",
	}
	for s, want := range series {
		assert.Equal(t, want, seriesRange(s), "series %d", s)
	}
}

func TestDigitFeaturesProperty(t *testing.T) {
	for n := 0; n <= 9999; n += 37 {
		f := DeriveFeatures(day(2020, time.June, 1), n, 1)
		assert.Equal(t, n%10, f.LastDigit)
		sum := 0
		for m := n; m > 0; m /= 10 {
			sum += m % 10
		}
		assert.Equal(t, sum, f.DigitSum)
		assert.Equal(t, n%10%2 == 0, f.Even == 1)
	}
}
