package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// logging flags output that bypasses the injected *zap.Logger.
func logging(m dsl.Matcher) {
	m.Match(`zap.L()`, `zap.S()`, `zap.ReplaceGlobals($_)`).
		Report(`use the injected *zap.Logger instead of the global one`)

	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `log.Fatalf($*_)`, `log.Fatal($*_)`).
		Report(`use the injected *zap.Logger; stdlib log bypasses level and format config`)

	m.Match(`fmt.Printf($*_)`, `fmt.Println($*_)`, `fmt.Print($*_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`library code must not write to stdout; log or return the value instead`)
}

// providers flags HTTP calls that escape the per-call timeout.
func providers(m dsl.Matcher) {
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/infra/llm`)).
		Report(`provider adapters must use their own *http.Client with a timeout`)

	m.Match(`http.NewRequest($*args)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report(`use http.NewRequestWithContext so caller cancellation reaches the provider`).
		Suggest(`http.NewRequestWithContext(ctx, $args)`)

	m.Match(`context.Background()`).
		Where(m.File().PkgPath.Matches(`/internal/api/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`request paths should propagate the caller's context`)
}
