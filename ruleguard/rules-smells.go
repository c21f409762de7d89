package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// smells flags code that sidesteps the domain types' own invariants.
func smells(m dsl.Matcher) {
	m.Import("github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction")

	// Level values outside {1,2,4} must never reach a response.
	m.Match(`severity.Level($x)`).
		Where(!m["x"].Const && !m.File().Name.Matches(`_test\.go$`)).
		Report(`converting to severity.Level skips validation; use severity.Parse or check Valid()`)

	m.Match(`"LLM unavailable"`).
		Where(!m.File().PkgPath.Matches(`/internal/domain/completion$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`use completion.Unavailable`)

	// The recorder drops any other payload with a warning.
	m.Match(`$bus.Publish(eventbus.TopicPredictionServed, $p)`).
		Where(!m["p"].Type.Is(`prediction.Record`)).
		Report(`prediction.served payload must be a prediction.Record`)

	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)
}
