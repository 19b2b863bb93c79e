// Package domain holds the data contracts shared by the loader, the
// statistics helpers, the services and the transport layer.
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Column names of the enriched table, in export order.
const (
	ColFecha           = "fecha"
	ColSorteo          = "sorteo"
	ColNumero          = "número"
	ColSerie           = "serie"
	ColAnio            = "año"
	ColMes             = "mes"
	ColMesNombre       = "mes_nombre"
	ColDiaSemana       = "dia_semana"
	ColDiaSemanaNombre = "dia_semana_nombre"
	ColTrimestre       = "trimestre"
	ColSemanaAnio      = "semana_año"
	ColDiaAnio         = "dia_año"
	ColPrimerDigito    = "primer_digito"
	ColUltimoDigito    = "ultimo_digito"
	ColSumaDigitos     = "suma_digitos"
	ColNumeroPar       = "numero_par"
	ColRangoNumero     = "rango_numero"
	ColRangoSerie      = "rango_serie"
)

// Columns lists every column of the enriched table in export order
var Columns = []string{
	ColFecha, ColSorteo, ColNumero, ColSerie,
	ColAnio, ColMes, ColMesNombre, ColDiaSemana, ColDiaSemanaNombre,
	ColTrimestre, ColSemanaAnio, ColDiaAnio,
	ColPrimerDigito, ColUltimoDigito, ColSumaDigitos, ColNumeroPar,
	ColRangoNumero, ColRangoSerie,
}

// NumericColumns can be aggregated
var NumericColumns = []string{
	ColNumero, ColSerie, ColSorteo, ColSumaDigitos,
	ColPrimerDigito, ColUltimoDigito, ColAnio, ColMes,
}

// CategoricalColumns can be grouped on
var CategoricalColumns = []string{
	ColAnio, ColMes, ColMesNombre, ColDiaSemanaNombre, ColTrimestre,
	ColRangoNumero, ColRangoSerie, ColNumeroPar, ColPrimerDigito, ColUltimoDigito,
}

// Value bounds for a winning number
const (
	MinWinningNumber = 0
	MaxWinningNumber = 9999
)

// Draw is one normalized draw record with its derived attributes
type Draw struct {
	Date          time.Time `json:"fecha"`
	DrawSequence  int       `json:"sorteo"`
	WinningNumber int       `json:"número"`
	Series        int       `json:"serie"`
	Features
}

// Features are pure functions of the base columns, computed once at load
type Features struct {
	Year        int    `json:"año"`
	Month       int    `json:"mes"`
	MonthName   string `json:"mes_nombre"`
	DayOfWeek   int    `json:"dia_semana"` // Monday = 0
	DayName     string `json:"dia_semana_nombre"`
	Quarter     int    `json:"trimestre"`
	ISOWeek     int    `json:"semana_año"`
	DayOfYear   int    `json:"dia_año"`
	FirstDigit  int    `json:"primer_digito"`
	LastDigit   int    `json:"ultimo_digito"`
	DigitSum    int    `json:"suma_digitos"`
	Even        int    `json:"numero_par"` // 1 when the winning number is even
	NumberRange string `json:"rango_numero"`
	SeriesRange string `json:"rango_serie"`
}

// DateLayout is the canonical date format used in exports and summaries
const DateLayout = "2006-01-02"

// Numeric returns the value of a numeric column
func (d Draw) Numeric(column string) (float64, bool) {
	switch column {
	case ColNumero:
		return float64(d.WinningNumber), true
	case ColSerie:
		return float64(d.Series), true
	case ColSorteo:
		return float64(d.DrawSequence), true
	case ColSumaDigitos:
		return float64(d.DigitSum), true
	case ColPrimerDigito:
		return float64(d.FirstDigit), true
	case ColUltimoDigito:
		return float64(d.LastDigit), true
	case ColAnio:
		return float64(d.Year), true
	case ColMes:
		return float64(d.Month), true
	case ColDiaSemana:
		return float64(d.DayOfWeek), true
	case ColTrimestre:
		return float64(d.Quarter), true
	case ColSemanaAnio:
		return float64(d.ISOWeek), true
	case ColDiaAnio:
		return float64(d.DayOfYear), true
	case ColNumeroPar:
		return float64(d.Even), true
	}
	return 0, false
}

// Cell renders a column as text, the way it is written to exports
func (d Draw) Cell(column string) (string, error) {
	switch column {
	case ColFecha:
		return d.Date.Format(DateLayout), nil
	case ColMesNombre:
		return d.MonthName, nil
	case ColDiaSemanaNombre:
		return d.DayName, nil
	case ColRangoNumero:
		return d.NumberRange, nil
	case ColRangoSerie:
		return d.SeriesRange, nil
	}
	if v, ok := d.Numeric(column); ok {
		return strconv.Itoa(int(v)), nil
	}
	return "", fmt.Errorf("unknown column %q", column)
}

// Record renders the draw as one export row in Columns order
func (d Draw) Record() []string {
	row := make([]string, len(Columns))
	for i, col := range Columns {
		row[i], _ = d.Cell(col)
	}
	return row
}
