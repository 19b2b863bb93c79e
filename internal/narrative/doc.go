// Package narrative talks to the generative language model that writes
// answers and reports about the draw history.
//
// Generator is the only seam the rest of the application sees. The Gemini
// implementation posts to the v1beta generateContent REST method and maps
// provider errors through googleapi.Error; Unconfigured
// stands in when no API key is set so callers get ErrNotConfigured instead of
// a nil generator. Prompt builders are Spanish and take the bounded context
// text produced by the dataset summarizer, never the full table.
package narrative
