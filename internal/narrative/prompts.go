package narrative

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names a prompt family. It tags logs and metrics.
type Kind string

const (
	KindAsk         Kind = "ask"
	KindInsights    Kind = "insights"
	KindReport      Kind = "report"
	KindSuggestions Kind = "suggestions"
	KindExplain     Kind = "explain"
)

const columnsHelp = `Columnas disponibles:
- fecha: fecha del sorteo
- sorteo: número consecutivo del sorteo
- número: número ganador (4 dígitos, 0000 a 9999)
- serie: serie del billete ganador
- columnas derivadas: año, mes, día de la semana, trimestre, dígitos, paridad y rangos`

// AskPrompt frames a user question with the dataset context
func AskPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString("Contexto del dataset - Lotería de Medellín (premio mayor):\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(columnsHelp)
	b.WriteString("\n\nPregunta del usuario: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nResponde de manera clara y concisa usando solo los datos proporcionados. ")
	b.WriteString("Si la pregunta pide predecir números futuros, explica que los sorteos son aleatorios y no se pueden predecir.")
	return b.String()
}

// InsightsPrompt asks for five actionable insights
func InsightsPrompt(context string) string {
	return fmt.Sprintf(`Analiza el siguiente resumen del histórico de la Lotería de Medellín y genera 5 insights clave.

Estadísticas:
%s

Genera insights relevantes en formato de lista numerada.`, context)
}

// ReportPrompt asks for an executive narrative report
func ReportPrompt(context string) string {
	return fmt.Sprintf(`Crea un reporte ejecutivo narrativo sobre el análisis del histórico de la Lotería de Medellín.

Datos clave:
%s

El reporte debe incluir:
1. Resumen ejecutivo
2. Hallazgos principales
3. Patrones identificados
4. Recomendaciones

Usa un tono profesional y conciso.`, context)
}

// SuggestionsPrompt asks for further analyses worth doing
func SuggestionsPrompt(context string) string {
	return fmt.Sprintf(`Basándote en este dataset de la Lotería de Medellín con las siguientes características:
%s

%s

Sugiere 5 análisis adicionales que podrían ser valiosos para entender mejor los datos.
Sé específico sobre qué analizar y por qué sería útil.`, context, columnsHelp)
}

// ExplainPrompt asks for a plain-language explanation of one metric
func ExplainPrompt(metric string, value float64, detail string) string {
	return fmt.Sprintf(`Explica en términos simples y claros qué significa la siguiente métrica:

Métrica: %s
Valor: %s
Contexto: %s

Proporciona:
1. Qué mide esta métrica
2. Cómo interpretar el valor
3. Qué implica para el análisis`, metric, strconv.FormatFloat(value, 'f', -1, 64), detail)
}
