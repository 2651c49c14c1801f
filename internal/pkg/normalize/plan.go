package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Plan is the canonical package name written to the CRM.
type Plan string

const (
	PlanUnknown      Plan = "unknown"
	PlanVIP          Plan = "VIP"
	PlanDuo          Plan = "Dupla"
	PlanGroup        Plan = "Grupo"
	PlanConversation Plan = "Conversação"
	PlanBusiness     Plan = "Business"
	PlanKids         Plan = "Kids"
)

// First match wins; keep longer, more specific aliases ahead of short ones.
var planAliases = []struct {
	alias string
	plan  Plan
}{
	{"conversacao", PlanConversation},
	{"conversation", PlanConversation},
	{"business", PlanBusiness},
	{"negocios", PlanBusiness},
	{"kids", PlanKids},
	{"infantil", PlanKids},
	{"dupla", PlanDuo},
	{"duo", PlanDuo},
	{"vip", PlanVIP},
	{"individual", PlanVIP},
	{"particular", PlanVIP},
	{"grupo", PlanGroup},
	{"group", PlanGroup},
	{"turma", PlanGroup},
}

// ParsePlan resolves free text to a canonical plan, or PlanUnknown.
func ParsePlan(s string) Plan {
	f := Fold(s)
	if f == "" {
		return PlanUnknown
	}
	for _, a := range planAliases {
		if strings.Contains(f, a.alias) {
			return a.plan
		}
	}
	return PlanUnknown
}

func (p Plan) Known() bool {
	return p != "" && p != PlanUnknown
}

// Duration is a contract length in months; zero means absent.
type Duration int

const DurationNone Duration = 0

var validDurations = map[int]bool{1: true, 3: true, 6: true, 9: true, 12: true, 18: true, 24: true}

var durationAliases = []struct {
	alias    string
	duration Duration
}{
	{"mensal", 1},
	{"trimestral", 3},
	{"semestral", 6},
	{"anual", 12},
}

var (
	monthsPattern = regexp.MustCompile(`\b(\d{1,2})\s*(?:meses|mes|m)\b`)
	yearsPattern  = regexp.MustCompile(`\b(\d)\s*anos?\b`)
)

// ParseDuration resolves free text ("6 meses", "semestral", "1 ano") to a
// duration from the fixed enumeration.
func ParseDuration(s string) (Duration, bool) {
	f := Fold(s)
	if f == "" {
		return DurationNone, false
	}
	if m := monthsPattern.FindStringSubmatch(f); m != nil {
		n, _ := strconv.Atoi(m[1])
		if validDurations[n] {
			return Duration(n), true
		}
	}
	if m := yearsPattern.FindStringSubmatch(f); m != nil {
		n, _ := strconv.Atoi(m[1])
		if validDurations[n*12] {
			return Duration(n * 12), true
		}
	}
	for _, a := range durationAliases {
		if strings.Contains(f, a.alias) {
			return a.duration, true
		}
	}
	return DurationNone, false
}

func (d Duration) Months() int {
	return int(d)
}

// Label is the CRM select option for the duration.
func (d Duration) Label() string {
	switch {
	case d <= 0:
		return ""
	case d == 1:
		return "1 mês"
	default:
		return fmt.Sprintf("%d meses", int(d))
	}
}

// BillingMethod is the billing type requested on the form. The empty value
// means the student did not choose one.
type BillingMethod string

const (
	BillingMethodUndefined  BillingMethod = ""
	BillingMethodBoleto     BillingMethod = "BOLETO"
	BillingMethodPix        BillingMethod = "PIX"
	BillingMethodCreditCard BillingMethod = "CREDIT_CARD"
)

func ParseBillingMethod(s string) BillingMethod {
	f := Fold(s)
	switch {
	case strings.Contains(f, "boleto"):
		return BillingMethodBoleto
	case strings.Contains(f, "pix"):
		return BillingMethodPix
	case strings.Contains(f, "cartao"), strings.Contains(f, "credito"), strings.Contains(f, "card"):
		return BillingMethodCreditCard
	default:
		return BillingMethodUndefined
	}
}
