package normalize

import "strings"

// Answer is one free-form question/answer pair from the signed form.
type Answer struct {
	Key   string
	Value string
}

type foldedAnswer struct {
	key   string
	value string
}

// Answers keeps the form answers in their original order with folded keys.
type Answers struct {
	items []foldedAnswer
}

func NewAnswers(in []Answer) Answers {
	items := make([]foldedAnswer, 0, len(in))
	for _, a := range in {
		items = append(items, foldedAnswer{
			key:   Fold(a.Key),
			value: strings.TrimSpace(a.Value),
		})
	}
	return Answers{items: items}
}

// Lookup returns the first non-empty value whose key contains one of the
// fragments. Fragments are tried in order, so list the specific ones first.
func (a Answers) Lookup(fragments ...string) (string, bool) {
	return a.LookupFunc(nil, fragments...)
}

// LookupFunc is Lookup restricted to values accepted by accept.
func (a Answers) LookupFunc(accept func(string) bool, fragments ...string) (string, bool) {
	for _, fragment := range fragments {
		for _, item := range a.items {
			if item.value == "" || !strings.Contains(item.key, fragment) {
				continue
			}
			if accept != nil && !accept(item.value) {
				continue
			}
			return item.value, true
		}
	}
	return "", false
}

// Matches reports whether a non-empty answer has a key containing one of
// the fragments.
func (a Answers) Matches(fragments ...string) bool {
	for _, item := range a.items {
		if item.value != "" && containsAny(item.key, fragments) {
			return true
		}
	}
	return false
}

// UnclaimedValues returns the non-empty values, in form order, whose keys
// match no known fragment.
func (a Answers) UnclaimedValues() []string {
	out := make([]string, 0, len(a.items))
	for _, item := range a.items {
		if item.value == "" || containsAny(item.key, knownFragments) {
			continue
		}
		out = append(out, item.value)
	}
	return out
}

func containsAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func (a Answers) Len() int {
	return len(a.items)
}

// Known key fragments, folded. Specific fragments come before generic ones.
var (
	planFragments         = []string{"tipo do pacote", "tipo de pacote", "pacote", "plano"}
	durationFragments     = []string{"tempo de contrato", "duracao do contrato", "duracao", "vigencia"}
	taxIDFragments        = []string{"cpf", "cnpj"}
	birthDateFragments    = []string{"data de nascimento", "nascimento"}
	addressFragments      = []string{"endereco completo", "endereco"}
	firstPaymentFragments = []string{"data do primeiro pagamento", "primeiro pagamento", "primeira parcela"}
	lastPaymentFragments  = []string{"data ultimo pagamento", "data do ultimo pagamento", "ultimo pagamento", "ultima parcela"}
	amountFragments       = []string{"valor das parcelas", "valor da parcela", "valor mensal", "valor"}
	startDateFragments    = []string{"inicio do contrato", "data de inicio", "inicio das aulas"}
	classDayFragments     = []string{"dia da aula", "dia das aulas", "dia de aula", "dia da semana"}
	billingFragments      = []string{"forma de pagamento", "meio de pagamento"}
)

var knownFragments = concatFragments(
	planFragments, durationFragments, taxIDFragments, birthDateFragments,
	addressFragments, firstPaymentFragments, lastPaymentFragments, amountFragments,
	startDateFragments, classDayFragments, billingFragments,
)

func concatFragments(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
