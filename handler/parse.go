package handler

import (
	"context"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// ParseError reports a malformed handler definition.
type ParseError struct {
	Definition string
	Msg        string
}

func (e *ParseError) Error() string {
	return "handler: " + e.Msg + " in " + strconv.Quote(e.Definition)
}

// Parse constructs a Handler from a CLI-style textual definition of the
// form "kind[:definition]", e.g. "replace:REDACTED", "shorten:80:...",
// "regex:/foo/bar/0", "indenter:2", or bare "unstringify"/"analyser".
// Recognized kinds and their single-letter aliases mirror streamson-bin's
// own: buffer, file|f, replace|r, regex|x, shorten|s, unstringify|u,
// indenter|d, analyser|a, csv, tokencount, imagemeta, wasm, webhook.
func Parse(ctx context.Context, def string) (Handler, error) {
	kind, rest, hasDef := strings.Cut(def, ":")
	switch kind {
	case "buffer":
		if !hasDef {
			return NewBuffer(0), nil
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, &ParseError{def, "invalid buffer max size " + rest}
		}
		return NewBuffer(n), nil

	case "file", "f":
		if !hasDef {
			return nil, &ParseError{def, "file handler requires a path"}
		}
		f, err := os.OpenFile(rest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, Wrap("handler: open file handler sink", err)
		}
		return NewOutput(f, false, []byte("\n")), nil

	case "replace", "r":
		return NewReplace([]byte(rest)), nil

	case "regex", "x":
		parts := strings.SplitN(strings.TrimPrefix(rest, "/"), "/", 3)
		if len(parts) < 2 {
			return nil, &ParseError{def, "regex handler requires /pattern/replacement[/limit]"}
		}
		limit := 0
		if len(parts) == 3 && parts[2] != "" {
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, &ParseError{def, "invalid regex limit " + parts[2]}
			}
			limit = n
		}
		re := NewRegex()
		if err := re.AddRule(parts[0], parts[1], limit); err != nil {
			return nil, err
		}
		return re, nil

	case "shorten", "s":
		parts := strings.SplitN(rest, ":", 2)
		max, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, &ParseError{def, "invalid shorten max " + parts[0]}
		}
		terminator := "..."
		if len(parts) == 2 {
			terminator = parts[1]
		}
		return NewShorten(max, []byte(terminator)), nil

	case "unstringify", "u":
		return NewUnstringify(), nil

	case "indenter", "d":
		if !hasDef || rest == "" {
			return NewIndenter(nil), nil
		}
		spaces, err := strconv.Atoi(rest)
		if err != nil {
			return nil, &ParseError{def, "invalid indenter spacing " + rest}
		}
		return NewIndenter(&spaces), nil

	case "analyser", "a":
		groupKinds := hasDef && rest == "kinds"
		return NewAnalyser(groupKinds), nil

	case "csv":
		if !hasDef {
			return nil, &ParseError{def, "csv handler requires at least one MATCHERIDX[-NAME] column"}
		}
		var columns []CsvColumn
		for _, part := range strings.Split(rest, ",") {
			idxPart, name, hasName := strings.Cut(part, "-")
			idx, err := strconv.Atoi(idxPart)
			if err != nil {
				return nil, &ParseError{def, "invalid csv column index " + idxPart}
			}
			if !hasName {
				name = idxPart
			}
			columns = append(columns, CsvColumn{MatcherIdx: idx, Name: name})
		}
		return NewCsv(columns, true), nil

	case "tokencount":
		encoding := "cl100k_base"
		if hasDef && rest != "" {
			encoding = rest
		}
		return NewTokenCount(encoding)

	case "imagemeta":
		return NewImageMeta(), nil

	case "wasm":
		if !hasDef {
			return nil, &ParseError{def, "wasm handler requires a module path"}
		}
		wasmBytes, err := os.ReadFile(rest)
		if err != nil {
			return nil, Wrap("handler: read wasm module", err)
		}
		return NewWasm(ctx, wasmBytes)

	case "webhook":
		if !hasDef {
			return nil, &ParseError{def, "webhook handler requires a URL"}
		}
		token, _ := ctx.Value(webhookTokenKey{}).(string)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return NewOutput(NewWebhookSink(ctx, ts, rest), false, nil), nil

	default:
		return nil, &ParseError{def, "unknown handler kind " + kind}
	}
}

// webhookTokenKey is the context key the CLI layer uses to pass the
// webhook bearer token loaded from the environment into Parse, so the
// handler package itself never reads environment variables directly.
type webhookTokenKey struct{}

// WithWebhookToken returns a context carrying token for Parse's "webhook"
// handler kind to use as its oauth2 static token source.
func WithWebhookToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, webhookTokenKey{}, token)
}
