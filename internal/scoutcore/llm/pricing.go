package llm

import "scout/internal/logging"

// MinBillableCost is the floor applied to any non-empty successful call so
// accounting never reports an exact zero.
const MinBillableCost = 1e-7

// Rate is a per-million-token USD price pair.
type Rate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// rates indexes hardcoded per-model pricing. Ids are the canonical model
// names used throughout scoutcore (flash/pro, plus the middle-manager's
// 70B-class model).
var rates = map[string]Rate{
	"gemini-2.5-flash": {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"llama-3.3-70b-versatile": {InputPerMillion: 0.59, OutputPerMillion: 0.79},
}

// aliases maps alternate/legacy model ids onto a canonical entry in rates.
var aliases = map[string]string{
	"flash":            "gemini-2.5-flash",
	"gemini-flash":     "gemini-2.5-flash",
	"pro":              "gemini-2.5-pro",
	"gemini-pro":       "gemini-2.5-pro",
	"middle-manager":   "llama-3.3-70b-versatile",
	"groq-llama-70b":   "llama-3.3-70b-versatile",
}

// cheapestFallback is used when a model id matches nothing, including its
// aliases: the entry with the lowest input rate. Its output rate is not the
// lowest in the table.
const cheapestFallback = "gemini-2.5-flash"

// resolve returns the canonical rate-table key for model, following the
// alias table and falling back to the cheapest known rate with a warning.
func resolve(model string) string {
	if _, ok := rates[model]; ok {
		return model
	}
	if canonical, ok := aliases[model]; ok {
		return canonical
	}
	logging.LLMWarn("llm: unknown model %q, falling back to cheapest rate %s", model, cheapestFallback)
	return cheapestFallback
}

// Price computes the USD cost of a call given its resolved model id and
// observed token counts. A non-empty successful call (inputTokens +
// outputTokens > 0) is never billed below MinBillableCost.
func Price(model string, inputTokens, outputTokens int) (costUSD float64, resolvedModel string) {
	resolvedModel = resolve(model)
	rate := rates[resolvedModel]
	cost := float64(inputTokens)/1_000_000*rate.InputPerMillion + float64(outputTokens)/1_000_000*rate.OutputPerMillion
	if cost < MinBillableCost && (inputTokens > 0 || outputTokens > 0) {
		cost = MinBillableCost
	}
	return cost, resolvedModel
}
