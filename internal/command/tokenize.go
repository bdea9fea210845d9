package command

import "strings"

const (
	keywordSet = "set"
	keywordTo  = "to"
	keywordAnd = "and"
)

// statement is a classified line. left holds the lower-cased grammar tokens
// (keyword, parameter, sub-targets); leftRaw keeps their original case.
type statement struct {
	query   QueryKind
	left    []string
	leftRaw []string
	value   string
}

func (s statement) parameterToken() string {
	return s.left[1]
}

func tokenize(line string) []string {
	parts := strings.Split(line, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lower(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}

func indexOf(tokens []string, want string) int {
	for i, t := range tokens {
		if t == want {
			return i
		}
	}
	return -1
}

// classify splits a line into a write ("set ... to ...") or a query
// ("check|read|get ...") statement.
func classify(line string) (statement, error) {
	raw := tokenize(line)
	if len(raw) == 0 {
		return statement{}, fail(ErrGrammar, "", "empty command")
	}
	low := lower(raw)

	to := indexOf(low, keywordTo)
	if to < 0 {
		kind, ok := queryKeywords[low[0]]
		if !ok {
			return statement{}, fail(ErrGrammar, raw[0], `expected "set ... to VALUE" or a check/read/get query`)
		}
		if len(low) < 2 {
			return statement{}, fail(ErrGrammar, raw[0], "missing parameter")
		}
		return statement{query: kind, left: low, leftRaw: raw}, nil
	}

	st := statement{
		left:    low[:to],
		leftRaw: raw[:to],
		value:   strings.Join(raw[to+1:], " "),
	}
	if len(st.left) == 0 || st.left[0] != keywordSet {
		token := keywordTo
		if len(st.leftRaw) > 0 {
			token = st.leftRaw[0]
		}
		return statement{}, fail(ErrGrammar, token, `expected "set"`)
	}
	if len(st.left) < 2 {
		return statement{}, fail(ErrGrammar, keywordSet, "missing parameter")
	}
	return st, nil
}
